// Package api provides the HTTP REST API and WebSocket server for HomeGuard
// Gateway.
//
// It fronts the gateway's single backend session: clients on the local
// network talk to this API, and the gateway relays to the remote security
// backend with the session token it manages. Real-time alarm and reed state
// changes reach clients over the WebSocket hub.
//
// The server follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

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

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Sessions   *session.Manager
	Gate       *auth.Gate
	Backend    *backend.Client
	Alarms     *alarm.Service
	Devices    *device.Service
	Recordings *recording.Service
	Users      *user.Service
	Notify     *notify.Service
	Version    string
}

// Server is the HTTP API server for HomeGuard Gateway.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	sessions   *session.Manager
	gate       *auth.Gate
	backend    *backend.Client
	alarms     *alarm.Service
	devices    *device.Service
	recordings *recording.Service
	users      *user.Service
	notify     *notify.Service
	version    string
	server     *http.Server
	hub        *Hub
	cancel     context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("permission gate is required")
	}
	if deps.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if deps.Alarms == nil || deps.Devices == nil || deps.Recordings == nil || deps.Users == nil || deps.Notify == nil {
		return nil, fmt.Errorf("all domain services are required")
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		sessions:   deps.Sessions,
		gate:       deps.Gate,
		backend:    deps.Backend,
		alarms:     deps.Alarms,
		devices:    deps.Devices,
		recordings: deps.Recordings,
		users:      deps.Users,
		notify:     deps.Notify,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, registers change observers on the domain
// services so state changes reach connected WebSocket clients, and launches
// the HTTP listener in a background goroutine. The server can be stopped
// with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	s.wireBroadcasts()

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// wireBroadcasts registers observers on the domain services that relay
// state changes to WebSocket subscribers. Observers fire for both API-driven
// changes and ones observed on the MQTT feed.
func (s *Server) wireBroadcasts() {
	s.alarms.OnChange(func(group alarm.Group) {
		s.hub.Broadcast(ChannelAlarmState, group)
	})
	s.devices.OnReedChange(func(state device.ReedState) {
		s.hub.Broadcast(ChannelReedState, state)
	})
	s.sessions.OnLogout(func(reason string) {
		s.hub.Broadcast(ChannelSession, map[string]string{"reason": reason})
	})
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
