// Package api provides the HTTP REST API and WebSocket server for homecontrol.
//
// It exposes Hue bridge resources and stored room states through the typed
// mapping layer, with declarative filtering of collections.
//
// The server follows the same lifecycle pattern as other infrastructure components:
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

	"github.com/nerrad567/homecontrol-core/internal/aircon"
	"github.com/nerrad567/homecontrol-core/internal/auth"
	"github.com/nerrad567/homecontrol-core/internal/filter"
	"github.com/nerrad567/homecontrol-core/internal/hue"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homecontrol-core/internal/mapping"
	"github.com/nerrad567/homecontrol-core/internal/roomstate"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// StateBus publishes and relays state messages. *mqtt.Client satisfies it.
type StateBus interface {
	PublishHueState(bridge, rtype, id string, state any) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Telemetry records time-series points. *influxdb.Client satisfies it.
type Telemetry interface {
	WriteLightState(bridge, rtype, id string, fields map[string]any)
	WriteRequestMetric(method, route string, status int, latency time.Duration)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	Hue        *hue.Manager
	Schemas    *mapping.Registry
	RoomStates roomstate.Repository
	ACStates   aircon.Repository
	Auth       *auth.Service

	// Decoder converts request bodies. The zero value is lenient.
	Decoder mapping.Decoder

	// Filters parses ?filters= query values. Nil uses the default operators.
	Filters *filter.Parser

	// Bus is optional. Without it, state changes are broadcast to WebSocket
	// clients directly instead of being relayed from the bus.
	Bus StateBus

	// Telemetry is optional.
	Telemetry Telemetry

	Version string
}

// Server is the HTTP API server for homecontrol.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	hue        *hue.Manager
	schemas    *mapping.Registry
	roomStates roomstate.Repository
	acStates   aircon.Repository
	auth       *auth.Service
	decoder    mapping.Decoder
	filters    *filter.Parser
	bus        StateBus
	telemetry  Telemetry
	version    string
	server     *http.Server
	hub        *Hub
	tickets    *ticketStore
	cancel     context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Hue == nil {
		return nil, fmt.Errorf("hue manager is required")
	}
	if deps.Schemas == nil {
		return nil, fmt.Errorf("schema registry is required")
	}
	if deps.RoomStates == nil {
		return nil, fmt.Errorf("room state repository is required")
	}
	if deps.ACStates == nil {
		return nil, fmt.Errorf("aircon state repository is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}

	filters := deps.Filters
	if filters == nil {
		filters = filter.NewParser(filter.DefaultRegistry())
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		hue:        deps.Hue,
		schemas:    deps.Schemas,
		roomStates: deps.RoomStates,
		acStates:   deps.ACStates,
		auth:       deps.Auth,
		decoder:    deps.Decoder,
		filters:    filters,
		bus:        deps.Bus,
		telemetry:  deps.Telemetry,
		version:    deps.Version,
		hub:        NewHub(deps.Logger),
		tickets:    newTicketStore(),
	}, nil
}

// Handler returns the router without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, subscribes to bus state topics for WebSocket
// relay, and launches the HTTP listener in a background goroutine. The
// server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	go s.cleanTicketsLoop(srvCtx)

	if err := s.subscribeStateUpdates(); err != nil {
		s.logger.Warn("failed to subscribe to state updates for WebSocket", "error", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, ticket cleanup)
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
