package ayla

import (
	"context"
	"log/slog"
	"sync"

	"culligan/internal/credentials"
	"culligan/internal/idgen"
)

// DeviceAPI is the read surface shared by Session and its decorators
type DeviceAPI interface {
	// ListDevices returns every device of the account, fresh from the provider
	ListDevices(ctx context.Context) ([]Device, error)

	// GetProperties returns the current properties of one device
	GetProperties(ctx context.Context, dsn string) ([]Property, error)
}

// State is the authentication state of a Session
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Session owns one set of credentials and the token obtained with them.
// It is safe for concurrent use; the token is swapped atomically on Authenticate.
type Session struct {
	id     string
	client *Client
	creds  credentials.Credentials
	logger *slog.Logger

	mu    sync.RWMutex
	token AccessToken
}

// NewSession creates an unauthenticated session
func NewSession(client *Client, creds credentials.Credentials, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := idgen.NewSession()
	return &Session{
		id:     id,
		client: client,
		creds:  creds,
		logger: logger.With("component", "ayla-session", "session_id", id),
	}
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// Authenticate signs in and replaces the held token.
// On failure the previous token, if any, is kept.
func (s *Session) Authenticate(ctx context.Context) error {
	token, err := s.client.Authenticate(ctx, s.creds)
	if err != nil {
		s.logger.Warn("authentication failed", "credentials", s.creds, "error", err)
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Info("session authenticated", "token", token)
	return nil
}

// SignOut drops the held token. The provider is not contacted.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.token = AccessToken{}
	s.mu.Unlock()

	s.logger.Info("session signed out")
}

// State reports whether a token is held
func (s *Session) State() State {
	if _, ok := s.Token(); ok {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

// Token returns the held token and whether one is held
func (s *Session) Token() (AccessToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, !s.token.IsZero()
}

// ListDevices lists devices with the held token
func (s *Session) ListDevices(ctx context.Context) ([]Device, error) {
	token, ok := s.Token()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s.client.ListDevices(ctx, token)
}

// GetProperties reads properties of one device with the held token
func (s *Session) GetProperties(ctx context.Context, dsn string) ([]Property, error) {
	token, ok := s.Token()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s.client.GetProperties(ctx, token, dsn)
}

// UserProfile reads the account profile with the held token
func (s *Session) UserProfile(ctx context.Context) (UserProfile, error) {
	token, ok := s.Token()
	if !ok {
		return UserProfile{}, ErrNotAuthenticated
	}
	return s.client.GetUserProfile(ctx, token)
}

// Refresh replaces device.Properties with a fresh read from the provider
func (s *Session) Refresh(ctx context.Context, device *Device) error {
	properties, err := s.GetProperties(ctx, device.DSN)
	if err != nil {
		return err
	}

	byName := make(map[string]Property, len(properties))
	for _, p := range properties {
		byName[p.Name] = p
	}
	device.Properties = byName

	return nil
}

// Ensure Session implements DeviceAPI
var _ DeviceAPI = (*Session)(nil)
