package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/homecontrol-core/internal/aircon"
	"github.com/nerrad567/homecontrol-core/internal/api"
	"github.com/nerrad567/homecontrol-core/internal/auth"
	"github.com/nerrad567/homecontrol-core/internal/home"
	"github.com/nerrad567/homecontrol-core/internal/hue"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/database"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homecontrol-core/internal/mapping"
	"github.com/nerrad567/homecontrol-core/internal/roomstate"
	"github.com/nerrad567/homecontrol-core/migrations"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *configPath)
		},
	}
}

// run is the server lifecycle, separated from the command for testability.
// It returns nil on clean shutdown once ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting homecontrol core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

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

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)

	registry, err := newRegistry()
	if err != nil {
		return fmt.Errorf("registering schemas: %w", err)
	}
	log.Info("schema registry initialised", "schemas", registry.Len())

	hueManager, err := hue.NewManager(hueManagerConfig(cfg))
	if err != nil {
		return fmt.Errorf("configuring hue bridges: %w", err)
	}
	hueManager.SetLogger(log.Component("hue"))
	if checkErr := hueManager.HealthCheck(ctx); checkErr != nil {
		// Bridges come and go; requests to an unreachable one return 502.
		log.Warn("hue bridge unreachable at startup", "error", checkErr)
	}
	log.Info("hue bridges configured", "bridges", hueManager.Names())

	deps := api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log.Component("api"),
		Hue:        hueManager,
		Schemas:    registry,
		RoomStates: roomstate.NewRepository(db.DB),
		ACStates:   aircon.NewRepository(db.DB),
		Auth: auth.NewService(auth.NewUserRepository(db.DB),
			cfg.Security.JWT.Secret, cfg.GetAccessTokenTTL()),
		Decoder: mapping.Decoder{Strict: cfg.Mapping.StrictUnknownKeys},
		Version: version,
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
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
		deps.Bus = mqttClient
	} else {
		log.Info("MQTT disabled, state changes broadcast directly")
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		influxClient = nil
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
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
		deps.Telemetry = influxClient
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, InfluxDB (if enabled), MQTT (if enabled), database.
	log.Info("homecontrol core stopped")
	return nil
}

// openDatabase opens the SQLite database named in cfg.
func openDatabase(ctx context.Context, cfg *config.Config, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "path", cfg.Database.Path)
	return db, nil
}

// newRegistry registers every payload schema and freezes the registry.
func newRegistry() (*mapping.Registry, error) {
	reg := mapping.NewRegistry()
	if err := hue.RegisterSchemas(reg); err != nil {
		return nil, fmt.Errorf("hue: %w", err)
	}
	if err := roomstate.RegisterSchemas(reg); err != nil {
		return nil, fmt.Errorf("roomstate: %w", err)
	}
	if err := aircon.RegisterSchemas(reg); err != nil {
		return nil, fmt.Errorf("aircon: %w", err)
	}
	if err := home.RegisterSchemas(reg); err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	reg.Freeze()
	return reg, nil
}

// hueManagerConfig converts the hue config section.
func hueManagerConfig(cfg *config.Config) hue.ManagerConfig {
	bridges := make([]hue.BridgeConfig, 0, len(cfg.Hue.Bridges))
	for _, b := range cfg.Hue.Bridges {
		bridges = append(bridges, hue.BridgeConfig{
			Name:       b.Name,
			Identifier: b.Identifier,
			Address:    b.Address,
			Port:       b.Port,
			Username:   b.Username,
			ClientKey:  b.ClientKey,
		})
	}
	return hue.ManagerConfig{
		CACertPath: cfg.Hue.CACertPath,
		Timeout:    cfg.GetHueTimeout(),
		Bridges:    bridges,
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
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
