package ayla

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"culligan/internal/endpoint"

	"github.com/carlmjohnson/versioninfo"
)

const defaultTimeout = 30 * time.Second

// Config contains provider API client settings
type Config struct {
	Resolver  *endpoint.Resolver // nil means the default field hosts
	Timeout   time.Duration      // per request; 0 means 30s
	UserAgent string             // empty means DefaultUserAgent()

	// InsecureSkipVerify disables TLS certificate verification for this client only.
	// Intended for inspecting traffic through a local proxy; never enable in production.
	InsecureSkipVerify bool

	HTTPClient *http.Client // optional; overrides Timeout and InsecureSkipVerify
	Logger     *slog.Logger
}

// DefaultUserAgent returns the client identification sent with every request
func DefaultUserAgent() string {
	return "culligan-go/" + versioninfo.Version
}

// Client talks to the provider's REST API. It holds no session state:
// tokens are passed in explicitly, see Session for a holder.
type Client struct {
	resolver   *endpoint.Resolver
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a new provider API client
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ayla-client")

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = endpoint.NewResolver()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}

		if cfg.InsecureSkipVerify {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit opt-in
			httpClient.Transport = transport
			logger.Warn("TLS certificate verification is disabled for this client")
		}
	}

	return &Client{
		resolver:   resolver,
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
		now:        time.Now,
	}
}

// rawResponse is an HTTP response that has been fully read
type rawResponse struct {
	endpoint   string
	statusCode int
	body       []byte
}

func (r *rawResponse) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// send performs a request against a segment and reads the whole response.
// Only transport failures are returned as errors; status handling is up to the caller.
func (c *Client) send(ctx context.Context, method string, segment endpoint.Segment, path string, authHeader string, body interface{}) (*rawResponse, error) {
	base, err := c.resolver.Resolve(segment)
	if err != nil {
		return nil, err
	}
	url := base + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	c.logger.Debug("API request",
		"method", method,
		"url", url,
	)

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("API response",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", c.now().Sub(start),
	)

	return &rawResponse{
		endpoint:   url,
		statusCode: resp.StatusCode,
		body:       respBody,
	}, nil
}

// getJSON performs an authenticated GET, decodes the body into result and
// returns the resolved endpoint so callers can report schema problems against it
func (c *Client) getJSON(ctx context.Context, token AccessToken, segment endpoint.Segment, path string, result interface{}) (string, error) {
	if token.Value == "" {
		return "", ErrNotAuthenticated
	}

	resp, err := c.send(ctx, http.MethodGet, segment, path, token.Header(), nil)
	if err != nil {
		return "", err
	}

	if resp.statusCode == http.StatusUnauthorized {
		return resp.endpoint, &AuthError{Endpoint: resp.endpoint, Body: snippet(resp.body)}
	}
	if !resp.ok() {
		return resp.endpoint, &APIError{Endpoint: resp.endpoint, StatusCode: resp.statusCode, Body: snippet(resp.body)}
	}

	if err := json.Unmarshal(resp.body, result); err != nil {
		return resp.endpoint, &DecodeError{Endpoint: resp.endpoint, Body: snippet(resp.body), Err: err}
	}

	return resp.endpoint, nil
}
