package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/homeguard-gateway/internal/alarm"
	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/backend"
	"github.com/nerrad567/homeguard-gateway/internal/device"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/config"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-gateway/internal/notify"
	"github.com/nerrad567/homeguard-gateway/internal/recording"
	"github.com/nerrad567/homeguard-gateway/internal/session"
	"github.com/nerrad567/homeguard-gateway/internal/user"
)

// upstream is a stub security backend serving the endpoints the gateway
// relays to.
type upstream struct {
	srv   *httptest.Server
	perms []string

	mu         sync.Mutex
	authStatus int // non-zero forces this status on token requests
	failPerms  bool
	failGroups bool
	startCalls int
	stopCalls  int
}

func (u *upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	authStatus := u.authStatus
	failPerms := u.failPerms
	failGroups := u.failGroups
	u.mu.Unlock()

	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/start-listening") {
		u.mu.Lock()
		u.startCalls++
		u.mu.Unlock()
		stubJSON(w, http.StatusOK, map[string]string{"status": "listening"})
		return
	}
	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/stop-listening") {
		u.mu.Lock()
		u.stopCalls++
		u.mu.Unlock()
		stubJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
		return
	}

	switch r.Method + " " + r.URL.Path {
	case "POST /auth-service/auth/token":
		if authStatus != 0 {
			w.WriteHeader(authStatus)
			return
		}
		stubJSON(w, http.StatusOK, map[string]string{"access_token": "test-token"})
	case "GET /auth-service/auth/permissions":
		if failPerms {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		stubJSON(w, http.StatusOK, u.perms)
	case "GET /auth-service/auth/user":
		stubJSON(w, http.StatusOK, map[string]any{
			"id": 7, "username": "resident", "email": "resident@example.com", "permissions": u.perms,
		})
	case "GET /auth-service/users/":
		stubJSON(w, http.StatusOK, []map[string]any{{"id": 7, "username": "resident"}})
	case "GET /auth-service/info/is-initialized":
		stubJSON(w, http.StatusOK, map[string]bool{"initialized": true})
	case "POST /auth-service/users/first":
		stubJSON(w, http.StatusCreated, map[string]string{"status": "created"})
	case "GET /devices-manager-service/device-group/":
		if failGroups {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		stubJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Perimeter", "devices": []any{}, "is_active": false},
			{"id": 2, "name": "Garage", "devices": []any{}, "is_active": true},
		})
	case "GET /devices-manager-service/rtsp-camera/":
		stubJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Porch", "ip": "10.0.0.8"}})
	case "GET /devices-manager-service/magnetic-reed/":
		stubJSON(w, http.StatusOK, []any{})
	case "GET /devices-manager-service/recording/":
		stubJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "filename": "b.mp4", "camera_ip": "10.0.0.8", "is_completed": true},
			{"id": 2, "filename": "a.mp4", "camera_ip": "10.0.0.8", "is_completed": true},
			{"id": 3, "filename": "c.mp4", "camera_ip": "10.0.0.8", "is_completed": false},
		})
	case "GET /devices-manager-service/recording/storage":
		stubJSON(w, http.StatusOK, map[string]any{"used_space": 10, "free_space": 90, "total_space": 100})
	default:
		// Singleton configs (email, audio) are absent unless a test
		// installs them.
		http.NotFound(w, r)
	}
}

// calls returns a stub counter under the lock.
func (u *upstream) calls(counter *int) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return *counter
}

func stubJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test stub
	json.NewEncoder(w).Encode(v)
}

// newTestStack wires the full gateway stack against a stub upstream and
// returns the router.
func newTestStack(t *testing.T, perms []string) (http.Handler, *upstream) {
	t.Helper()

	up := &upstream{perms: perms}
	up.srv = httptest.NewServer(http.HandlerFunc(up.handle))
	t.Cleanup(up.srv.Close)

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	client, err := backend.New(backend.Config{BaseURL: up.srv.URL})
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}

	sessions := session.NewManager(client, session.NewMemoryStore(), log)
	client.SetTokenSource(sessions)
	client.SetOnUnauthorized(sessions.HandleUnauthorized)

	gate := auth.NewGate(client)
	sessions.OnLogout(func(string) { gate.Clear() })

	alarms := alarm.NewService(alarm.NewHTTPRemote(client), gate, log)
	devices := device.NewService(device.NewHTTPCameraRemote(client), device.NewHTTPReedRemote(client), gate, log)
	recordings := recording.NewService(recording.NewHTTPRemote(client), devices, gate)
	users := user.NewService(user.NewHTTPRemote(client), gate, sessions, gate, log)
	notifier := notify.NewService(notify.NewHTTPEmailRemote(client), notify.NewHTTPAudioRemote(client), gate)

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:     log,
		Sessions:   sessions,
		Gate:       gate,
		Backend:    client,
		Alarms:     alarms,
		Devices:    devices,
		Recordings: recordings,
		Users:      users,
		Notify:     notifier,
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	srv.hub = NewHub(srv.wsCfg, log)
	srv.wireBroadcasts()

	return srv.buildRouter(), up
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doLogin(t *testing.T, router http.Handler) {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"username":"resident","password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body: %s", w.Code, w.Body.String())
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v; body: %s", err, w.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	w := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	resp := decodeBody(t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestRequestID_Generated(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	w := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
}

func TestProtectedRequiresSession(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	for _, path := range []string{
		"/api/v1/alarm-groups",
		"/api/v1/devices",
		"/api/v1/recordings",
		"/api/v1/users",
		"/api/v1/session",
	} {
		w := doRequest(t, router, http.MethodGet, path, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want %d", path, w.Code, http.StatusUnauthorized)
		}
		if msg, _ := decodeBody(t, w)["message"].(string); !strings.Contains(msg, "no active session") {
			t.Errorf("%s message = %q, want it to name the missing session", path, msg)
		}
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	w := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"username":"resident","password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body: %s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if resp["active"] != true {
		t.Errorf("active = %v, want true", resp["active"])
	}
	perms, _ := resp["permissions"].([]any)
	if len(perms) != 8 {
		t.Errorf("permissions len = %d, want 8", len(perms))
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get session status = %d", w.Code)
	}
}

func TestLoginRejectedUpstream(t *testing.T) {
	router, up := newTestStack(t, auth.AllNames())
	up.authStatus = http.StatusUnauthorized

	w := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"username":"resident","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	w := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"username":"resident"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	w := doRequest(t, router, http.MethodDelete, "/api/v1/session", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("session after logout status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestBackendUnauthorizedEndsSession(t *testing.T) {
	router, up := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	up.mu.Lock()
	up.failGroups = true
	up.mu.Unlock()

	w := doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("groups status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// A backend 401 is authoritative: the gateway session is gone.
	w = doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("session status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestForcedLogoutClearsPermissions(t *testing.T) {
	router, up := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	w := doRequest(t, router, http.MethodGet, "/api/v1/permissions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("permissions status = %d", w.Code)
	}
	if resp := decodeBody(t, w); int(resp["count"].(float64)) != 8 {
		t.Fatalf("count = %v, want 8", resp["count"])
	}

	up.mu.Lock()
	up.failGroups = true
	up.mu.Unlock()

	if w := doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("groups status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// Log in again with the permission fetch broken. The prior grants
	// were dropped with the forced logout, so the new session holds
	// none rather than inheriting them.
	up.mu.Lock()
	up.failGroups = false
	up.failPerms = true
	up.mu.Unlock()
	doLogin(t, router)

	w = doRequest(t, router, http.MethodGet, "/api/v1/permissions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("permissions status = %d", w.Code)
	}
	if resp := decodeBody(t, w); int(resp["count"].(float64)) != 0 {
		t.Errorf("count = %v, want 0 after a forced logout", resp["count"])
	}
}

func TestFailedReloginKeepsSession(t *testing.T) {
	router, up := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	up.mu.Lock()
	up.authStatus = http.StatusUnauthorized
	up.mu.Unlock()

	w := doRequest(t, router, http.MethodPost, "/api/v1/session/login", `{"username":"resident","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// A rejected credential exchange is not a forced logout; the
	// existing session stays up.
	w = doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("session status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestListGroups(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	w := doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", "")
	if w.Code != http.StatusOK {
		t.Fatalf("groups status = %d, body: %s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if int(resp["count"].(float64)) != 2 {
		t.Errorf("count = %v, want 2", resp["count"])
	}
}

func TestActivateGroup(t *testing.T) {
	router, up := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	// Populate the cache first; activation works on known groups.
	doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", "")

	w := doRequest(t, router, http.MethodPost, "/api/v1/alarm-groups/1/activate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("activate status = %d, body: %s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if resp["is_active"] != true {
		t.Errorf("is_active = %v, want true", resp["is_active"])
	}
	if got := up.calls(&up.startCalls); got != 1 {
		t.Errorf("start calls = %d, want 1", got)
	}
}

func TestActivateAlreadyActiveGroup(t *testing.T) {
	router, up := newTestStack(t, auth.AllNames())
	doLogin(t, router)
	doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", "")

	// Group 2 is already armed; no backend call should happen.
	w := doRequest(t, router, http.MethodPost, "/api/v1/alarm-groups/2/activate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("activate status = %d, body: %s", w.Code, w.Body.String())
	}
	if got := up.calls(&up.startCalls); got != 0 {
		t.Errorf("start calls = %d, want 0", got)
	}
}

func TestActivateGroupForbidden(t *testing.T) {
	// Permission set without START_ALARM.
	router, up := newTestStack(t, []string{"STOP_ALARM", "ACCESS_RECORDINGS"})
	doLogin(t, router)
	doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", "")

	w := doRequest(t, router, http.MethodPost, "/api/v1/alarm-groups/1/activate", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("activate status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if got := up.calls(&up.startCalls); got != 0 {
		t.Errorf("start calls = %d, want 0", got)
	}

	// Disarming is gated independently and stays allowed.
	w = doRequest(t, router, http.MethodPost, "/api/v1/alarm-groups/2/deactivate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("deactivate status = %d, body: %s", w.Code, w.Body.String())
	}
	if got := up.calls(&up.stopCalls); got != 1 {
		t.Errorf("stop calls = %d, want 1", got)
	}
}

func TestActivateUnknownGroup(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)
	doRequest(t, router, http.MethodGet, "/api/v1/alarm-groups", "")

	w := doRequest(t, router, http.MethodPost, "/api/v1/alarm-groups/99/activate", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("activate status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListRecordings(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	// Load cameras so the recording list can carry camera names.
	doRequest(t, router, http.MethodGet, "/api/v1/devices/cameras", "")

	w := doRequest(t, router, http.MethodGet, "/api/v1/recordings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("recordings status = %d, body: %s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if int(resp["count"].(float64)) != 2 {
		t.Fatalf("count = %v, want 2 (incomplete recordings filtered)", resp["count"])
	}

	recs := resp["recordings"].([]any)
	first := recs[0].(map[string]any)
	if first["filename"] != "a.mp4" {
		t.Errorf("first filename = %v, want a.mp4 (sorted)", first["filename"])
	}
	if first["camera_name"] != "Porch" {
		t.Errorf("camera_name = %v, want Porch", first["camera_name"])
	}
}

func TestRecordingsForbidden(t *testing.T) {
	router, _ := newTestStack(t, []string{"START_ALARM"})
	doLogin(t, router)

	w := doRequest(t, router, http.MethodGet, "/api/v1/recordings", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("recordings status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestStorage(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	w := doRequest(t, router, http.MethodGet, "/api/v1/recordings/storage", "")
	if w.Code != http.StatusOK {
		t.Fatalf("storage status = %d, body: %s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if int(resp["total_space"].(float64)) != 100 {
		t.Errorf("total_space = %v, want 100", resp["total_space"])
	}
}

func TestIsInitialized(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	w := doRequest(t, router, http.MethodGet, "/api/v1/system/is-initialized", "")
	if w.Code != http.StatusOK {
		t.Fatalf("is-initialized status = %d", w.Code)
	}

	resp := decodeBody(t, w)
	if resp["initialized"] != true {
		t.Errorf("initialized = %v, want true", resp["initialized"])
	}
}

func TestEmailConfigNotSet(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	w := doRequest(t, router, http.MethodGet, "/api/v1/config/email", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("email config status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCurrentUser(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())
	doLogin(t, router)

	w := doRequest(t, router, http.MethodGet, "/api/v1/users/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body: %s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if resp["username"] != "resident" {
		t.Errorf("username = %v, want resident", resp["username"])
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestStack(t, auth.AllNames())

	w := doRequest(t, router, http.MethodGet, "/api/v1/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
