// Package credentials holds the account and application secrets used to sign in.
// Values live only in memory; secrets are redacted from every text, log and JSON rendering.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

const redacted = "[REDACTED]"

var (
	ErrMissingEmail     = errors.New("email is required")
	ErrMissingPassword  = errors.New("password is required")
	ErrMissingAppID     = errors.New("app_id is required")
	ErrMissingAppSecret = errors.New("app_secret is required")
)

// Credentials identifies the account owner and the client application
type Credentials struct {
	Email     string
	Password  string
	AppID     string
	AppSecret string
}

// New creates credentials from caller-supplied values
func New(email, password, appID, appSecret string) Credentials {
	return Credentials{
		Email:     email,
		Password:  password,
		AppID:     appID,
		AppSecret: appSecret,
	}
}

// Validate checks that every field is present
func (c Credentials) Validate() error {
	if c.Email == "" {
		return ErrMissingEmail
	}
	if c.Password == "" {
		return ErrMissingPassword
	}
	if c.AppID == "" {
		return ErrMissingAppID
	}
	if c.AppSecret == "" {
		return ErrMissingAppSecret
	}
	return nil
}

// String renders the credentials without secrets
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{email=%s, app_id=%s, password=%s, app_secret=%s}",
		c.Email, c.AppID, mask(c.Password), mask(c.AppSecret))
}

// GoString keeps %#v from printing secrets
func (c Credentials) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", c.Email),
		slog.String("app_id", c.AppID),
	)
}

// MarshalJSON emits the credentials with secrets redacted
func (c Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		AppID     string `json:"app_id"`
		AppSecret string `json:"app_secret"`
	}{
		Email:     c.Email,
		Password:  mask(c.Password),
		AppID:     c.AppID,
		AppSecret: mask(c.AppSecret),
	})
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}
