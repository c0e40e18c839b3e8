// HomeGuard Gateway - resident daemon for the HomeGuard security system.
//
// The gateway owns a single authenticated session with the remote security
// backend and exposes it to devices on the local network over HTTP and
// WebSocket. It caches alarm groups, devices, recordings, and users with
// confirm-then-apply semantics, gates every mutating call on the session
// user's permissions, and optionally follows the live MQTT event feed and
// records history to InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/homeguard-gateway/migrations"

	"github.com/nerrad567/homeguard-gateway/internal/alarm"
	"github.com/nerrad567/homeguard-gateway/internal/api"
	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/backend"
	"github.com/nerrad567/homeguard-gateway/internal/device"
	"github.com/nerrad567/homeguard-gateway/internal/events"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/config"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/database"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/influxdb"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/mqtt"
	"github.com/nerrad567/homeguard-gateway/internal/notify"
	"github.com/nerrad567/homeguard-gateway/internal/recording"
	"github.com/nerrad567/homeguard-gateway/internal/session"
	"github.com/nerrad567/homeguard-gateway/internal/user"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// storageSampleInterval is how often recorder disk usage is written to
// history while a session is active.
const storageSampleInterval = 15 * time.Minute

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting HomeGuard Gateway",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Backend client and session manager
	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: time.Duration(cfg.Backend.Timeout) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}
	client.SetLogger(log)

	sessions := session.NewManager(client, session.NewSQLiteStore(db.DB), log)
	client.SetTokenSource(sessions)
	client.SetOnUnauthorized(sessions.HandleUnauthorized)

	gate := auth.NewGate(client)

	// A session end from any path (explicit logout, expiry timer,
	// backend 401) drops the cached grants with it.
	sessions.OnLogout(func(string) { gate.Clear() })

	// Resume a persisted session if one survives
	if restored, restoreErr := sessions.Restore(); restoreErr != nil {
		log.Warn("session restore failed", "error", restoreErr)
	} else if restored {
		log.Info("session restored from previous run")
		if loadErr := gate.Load(ctx); loadErr != nil {
			log.Warn("permission load after restore failed", "error", loadErr)
		}
	}

	// Domain services
	alarms := alarm.NewService(alarm.NewHTTPRemote(client), gate, log)
	devices := device.NewService(device.NewHTTPCameraRemote(client), device.NewHTTPReedRemote(client), gate, log)
	recordings := recording.NewService(recording.NewHTTPRemote(client), devices, gate)
	users := user.NewService(user.NewHTTPRemote(client), gate, sessions, gate, log)
	notifier := notify.NewService(notify.NewHTTPEmailRemote(client), notify.NewHTTPAudioRemote(client), gate)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT and follow the live event feed (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		var history events.History
		if influxClient != nil {
			history = influxClient
		}
		feed := events.NewFeed(devices, alarms, history)
		if feedErr := feed.Start(mqttClient, byte(cfg.MQTT.QoS)); feedErr != nil {
			return fmt.Errorf("starting event feed: %w", feedErr)
		}
		log.Info("event feed subscribed")
	} else {
		log.Info("MQTT disabled, live event feed unavailable")
	}

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Sessions:   sessions,
		Gate:       gate,
		Backend:    client,
		Alarms:     alarms,
		Devices:    devices,
		Recordings: recordings,
		Users:      users,
		Notify:     notifier,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Periodic recorder storage history (needs both history sink and a session)
	if influxClient != nil {
		go storageSampleLoop(ctx, recordings, sessions, influxClient, log)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("HomeGuard Gateway stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOMEGUARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMEGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// storageSampleLoop periodically records recorder disk usage to history.
// Samples are skipped while no session is active or the session user lacks
// recording access.
func storageSampleLoop(ctx context.Context, recordings *recording.Service, sessions *session.Manager, history *influxdb.Client, log *logging.Logger) {
	ticker := time.NewTicker(storageSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !sessions.Current().Active {
				continue
			}
			info, err := recordings.Storage(ctx)
			if err != nil {
				log.Debug("storage sample skipped", "error", err)
				continue
			}
			history.WriteStorageSnapshot(info.UsedSpace, info.FreeSpace, info.TotalSpace)
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// MQTT and InfluxDB are optional and may be nil.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
