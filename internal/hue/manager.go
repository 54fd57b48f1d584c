package hue

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"
)

// BridgeConfig describes how to reach and authenticate with one bridge.
type BridgeConfig struct {
	Name       string
	Identifier string
	Address    string
	Port       int
	Username   string
	ClientKey  string
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	CACertPath string
	Timeout    time.Duration
	Bridges    []BridgeConfig
}

// Manager holds one Client per configured bridge.
type Manager struct {
	clients map[string]*Client
	logger  Logger
	mu      sync.RWMutex
}

// NewManager creates clients for every configured bridge.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	m := &Manager{
		clients: make(map[string]*Client, len(cfg.Bridges)),
		logger:  noopLogger{},
	}

	for _, b := range cfg.Bridges {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: bridge name is required", ErrInvalidConfig)
		}
		if _, dup := m.clients[b.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate bridge %q", ErrInvalidConfig, b.Name)
		}

		httpClient, err := NewHTTPClient(b.Identifier, cfg.CACertPath, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("bridge %s: %w", b.Name, err)
		}

		port := b.Port
		if port == 0 {
			port = 443
		}
		// Responses decode leniently: bridge firmware adds keys over time.
		client, err := NewClient(ClientConfig{
			Name:       b.Name,
			BaseURL:    "https://" + net.JoinHostPort(b.Address, strconv.Itoa(port)),
			AppKey:     b.Username,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("bridge %s: %w", b.Name, err)
		}
		m.clients[b.Name] = client
	}

	return m, nil
}

// Add registers a prebuilt client under its name, replacing any existing one.
func (m *Manager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.SetLogger(m.logger)
	m.clients[c.Name()] = c
}

// SetLogger sets the logger for the manager and its clients.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
	for _, c := range m.clients {
		c.SetLogger(logger)
	}
}

// Bridge returns the client for the named bridge.
func (m *Manager) Bridge(name string) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBridgeNotFound, name)
	}
	return c, nil
}

// Names returns the configured bridge names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheck checks every bridge and returns the first failure.
func (m *Manager) HealthCheck(ctx context.Context) error {
	for _, name := range m.Names() {
		c, err := m.Bridge(name)
		if err != nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("bridge %s: %w", name, err)
		}
	}
	return nil
}
