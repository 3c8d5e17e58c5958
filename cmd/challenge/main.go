// Challenge Tracker - live progress board for a six-task API exercise.
//
// This is the main entry point. It loads configuration, builds the tracker
// and broadcast hub, wires the optional audit trail, MQTT mirror and
// InfluxDB telemetry as hub sinks, and serves the HTTP API until a shutdown
// signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/challenge-tracker/internal/api"
	"github.com/nerrad567/challenge-tracker/internal/audit"
	"github.com/nerrad567/challenge-tracker/internal/broadcast"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/config"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/database"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/influxdb"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/logging"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/mqtt"
	"github.com/nerrad567/challenge-tracker/internal/task"
	"github.com/nerrad567/challenge-tracker/internal/tracker"
	"github.com/nerrad567/challenge-tracker/migrations"
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

func main() {
	// Cancel on Ctrl+C or SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting challenge tracker",
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

	tr, err := tracker.New(tracker.Options{
		Catalog: task.NewCatalog(cfg.Challenge.Username, cfg.Challenge.Password),
		Credentials: tracker.Credentials{
			Username: cfg.Challenge.Username,
			Password: cfg.Challenge.Password,
		},
		Logger: log.With("component", "tracker"),
	})
	if err != nil {
		return fmt.Errorf("creating tracker: %w", err)
	}

	hub := broadcast.NewHub(broadcast.Options{
		QueueSize: cfg.Events.SinkQueueSize,
		Logger:    log.With("component", "broadcast"),
	})
	tr.AddObserver(hub)

	deps := api.Deps{
		Config:    cfg.API,
		Events:    cfg.Events,
		Admin:     cfg.Admin,
		Dashboard: cfg.Dashboard,
		Logger:    log,
		Tracker:   tr,
		Hub:       hub,
		Version:   version,
	}

	// Audit trail (optional)
	if cfg.Database.Enabled {
		db, openErr := database.Open(ctx, database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if openErr != nil {
			return fmt.Errorf("opening database: %w", openErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete")

		repo := audit.NewSQLiteRepository(db.DB)
		hub.AddSink("audit", newAuditSink(repo))
		deps.Audit = repo
		deps.DB = db
	} else {
		log.Info("audit trail disabled")
	}

	// MQTT mirror (optional)
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		mqttClient.SetLogger(log.With("component", "mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"state_topic", mqttClient.Topics().State(),
		)

		hub.AddSink("mqtt", newMQTTSink(mqttClient))
		deps.MQTT = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		hub.AddSink("influxdb", newInfluxSink(influxClient))
		deps.InfluxDB = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, deps.DB, deps.MQTT, deps.InfluxDB); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if err := server.Start(gctx); err != nil {
		// Nothing else has failed, so the group is only waiting on ctx.
		stopErr := fmt.Errorf("starting API server: %w", err)
		g.Go(func() error { return stopErr })
		return g.Wait()
	}

	g.Go(func() error {
		<-gctx.Done()
		return server.Close()
	})

	log.Info("initialisation complete, waiting for shutdown signal")

	// Returns once ctx is cancelled: the hub closes every live feed and
	// the server drains in-flight requests.
	if err := g.Wait(); err != nil {
		return err
	}

	// Deferred Close() calls run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT (if enabled)
	// 3. Database (if enabled)
	log.Info("challenge tracker stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CHALLENGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CHALLENGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies every configured connection is healthy.
// Nil components are disabled and skipped.
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
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
