package hue

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

const (
	// resourcePath is the CLIP v2 resource root.
	resourcePath = "/clip/v2/resource"

	// appKeyHeader carries the bridge application key (the "username").
	appKeyHeader = "hue-application-key"

	// maxResponseBytes bounds how much of a bridge response is read.
	maxResponseBytes = 8 << 20

	defaultTimeout = 10 * time.Second
)

// Logger defines the logging interface used by the client and manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ClientConfig configures a single bridge client.
type ClientConfig struct {
	// Name is the configured bridge name, used in logs.
	Name string

	// BaseURL is the bridge root, e.g. "https://192.168.1.10:443".
	BaseURL string

	// AppKey is sent as the hue-application-key header.
	AppKey string

	// HTTPClient performs requests. Nil uses a client with a default timeout.
	HTTPClient *http.Client

	// Decoder converts response data. The zero value is lenient.
	Decoder mapping.Decoder
}

// Client talks to one Hue bridge over the CLIP v2 API. It is safe for
// concurrent use.
type Client struct {
	name    string
	baseURL string
	appKey  string
	http    *http.Client
	decoder mapping.Decoder
	logger  Logger
}

// NewClient creates a client for one bridge.
func NewClient(cfg ClientConfig) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appKey:  cfg.AppKey,
		http:    httpClient,
		decoder: cfg.Decoder,
		logger:  noopLogger{},
	}, nil
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// Name returns the configured bridge name.
func (c *Client) Name() string { return c.name }

// envelope is the CLIP v2 response wrapper.
type envelope struct {
	Errors []struct {
		Description string `json:"description"`
	} `json:"errors"`
	Data []any `json:"data"`
}

// List returns every resource of rtype decoded against its read schema.
func (c *Client) List(ctx context.Context, rtype string) ([]*mapping.Object, error) {
	schema, err := GetSchema(rtype)
	if err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodGet, resourcePath+"/"+rtype, nil)
	if err != nil {
		return nil, err
	}

	objs, err := c.decoder.DecodeList(env.Data, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, rtype, err)
	}
	return objs, nil
}

// Get returns one resource decoded against its read schema.
func (c *Client) Get(ctx context.Context, rtype, id string) (*mapping.Object, error) {
	schema, err := GetSchema(rtype)
	if err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodGet, resourcePath+"/"+rtype+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrResourceNotFound, rtype, id)
	}

	objs, err := c.decoder.DecodeList(env.Data[:1], schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrInvalidResponse, rtype, id, err)
	}
	return objs[0], nil
}

// Put writes obj, which must use the write schema of rtype. Only the fields
// set on obj are sent.
func (c *Client) Put(ctx context.Context, rtype, id string, obj *mapping.Object) error {
	schema, err := PutSchema(rtype)
	if err != nil {
		return err
	}
	if obj == nil || obj.Schema() != schema {
		return fmt.Errorf("%w: %s requires %s", ErrSchemaMismatch, rtype, schema.Name())
	}

	body, err := json.Marshal(mapping.Encode(obj))
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", rtype, id, err)
	}

	if _, err := c.do(ctx, http.MethodPut, resourcePath+"/"+rtype+"/"+url.PathEscape(id), body); err != nil {
		return err
	}
	c.logger.Debug("hue resource updated",
		"bridge", c.name,
		"rtype", rtype,
		"id", id,
		"fields", obj.SetFields(),
	)
	return nil
}

// SceneRecall returns the ScenePut object that activates a scene.
func SceneRecall() *mapping.Object {
	recall := mapping.New(Recall).MustSet("action", "active")
	return mapping.New(ScenePut).MustSet("recall", recall)
}

// RecallScene activates a scene.
func (c *Client) RecallScene(ctx context.Context, id string) error {
	return c.Put(ctx, ResourceScene, id, SceneRecall())
}

// HealthCheck verifies the bridge answers an authenticated request.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, resourcePath+"/bridge", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.appKey != "" {
		req.Header.Set(appKeyHeader, c.appKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", ErrUnavailable, method, path, err)
	}

	c.logger.Debug("hue request",
		"bridge", c.name,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	env := &envelope{}
	decodeErr := decodeEnvelope(raw, env)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		if decodeErr == nil {
			for _, e := range env.Errors {
				apiErr.Descriptions = append(apiErr.Descriptions, e.Description)
			}
		}
		c.logger.Warn("hue request failed",
			"bridge", c.name,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrInvalidResponse, method, path, decodeErr)
	}
	return env, nil
}

// decodeEnvelope keeps numbers as json.Number so integer fields survive
// intact until schema coercion.
func decodeEnvelope(raw []byte, env *envelope) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(env)
}

// NewHTTPClient builds an HTTP client that verifies the bridge certificate
// against the CA bundle at caCertPath, using identifier as the expected
// server name. The bridge certificate names the bridge ID rather than its
// address. An empty caCertPath uses the system roots.
func NewHTTPClient(identifier, caCertPath string, timeout time.Duration) (*http.Client, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: identifier,
	}

	if caCertPath != "" {
		pem, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("reading hue CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates in %s", ErrInvalidConfig, caCertPath)
		}
		tlsCfg.RootCAs = pool
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
