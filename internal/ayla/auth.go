package ayla

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"culligan/internal/credentials"
	"culligan/internal/endpoint"
)

const (
	pathSignIn = "/users/sign_in.json"

	// TokenTypeAuthToken is the authorization scheme the provider expects
	TokenTypeAuthToken = "auth_token"
)

// AccessToken is the opaque bearer credential returned at sign-in.
// No expiry is tracked; staleness shows up as an AuthError on a later call.
type AccessToken struct {
	Value      string
	TokenType  string
	ObtainedAt time.Time
}

// Header returns the Authorization header value for this token
func (t AccessToken) Header() string {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = TokenTypeAuthToken
	}
	return tokenType + " " + t.Value
}

// IsZero reports whether the token is empty
func (t AccessToken) IsZero() bool {
	return t.Value == ""
}

// String keeps the token value out of formatted output
func (t AccessToken) String() string {
	if t.IsZero() {
		return "AccessToken{}"
	}
	return fmt.Sprintf("AccessToken{type=%s, obtained_at=%s}", t.TokenType, t.ObtainedAt.Format(time.RFC3339))
}

// LogValue implements slog.LogValuer
func (t AccessToken) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", t.TokenType),
		slog.Time("obtained_at", t.ObtainedAt),
	)
}

type signInRequest struct {
	User signInUser `json:"user"`
}

type signInUser struct {
	Email       string            `json:"email"`
	Application signInApplication `json:"application"`
	Password    string            `json:"password"`
}

type signInApplication struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type signInResponse struct {
	AccessToken string `json:"access_token"`
}

// Authenticate exchanges credentials for an access token.
// It never retries; every failure is returned to the caller.
func (c *Client) Authenticate(ctx context.Context, creds credentials.Credentials) (AccessToken, error) {
	if err := creds.Validate(); err != nil {
		return AccessToken{}, fmt.Errorf("invalid credentials: %w", err)
	}

	reqBody := signInRequest{
		User: signInUser{
			Email: creds.Email,
			Application: signInApplication{
				AppID:     creds.AppID,
				AppSecret: creds.AppSecret,
			},
			Password: creds.Password,
		},
	}

	resp, err := c.send(ctx, http.MethodPost, endpoint.SegmentUser, pathSignIn, "", reqBody)
	if err != nil {
		return AccessToken{}, err
	}

	if !resp.ok() {
		return AccessToken{}, &AuthenticationError{
			Endpoint:   resp.endpoint,
			StatusCode: resp.statusCode,
			Body:       snippet(resp.body),
		}
	}

	var signIn signInResponse
	if err := json.Unmarshal(resp.body, &signIn); err != nil {
		return AccessToken{}, &AuthenticationError{
			Endpoint:   resp.endpoint,
			StatusCode: resp.statusCode,
			Err:        &DecodeError{Endpoint: resp.endpoint, Body: snippet(resp.body), Err: err},
		}
	}

	if signIn.AccessToken == "" {
		return AccessToken{}, &AuthenticationError{
			Endpoint:   resp.endpoint,
			StatusCode: resp.statusCode,
			Body:       snippet(resp.body),
		}
	}

	token := AccessToken{
		Value:      signIn.AccessToken,
		TokenType:  TokenTypeAuthToken,
		ObtainedAt: c.now(),
	}

	c.logger.Info("signed in", "email", creds.Email, "token", token)

	return token, nil
}
