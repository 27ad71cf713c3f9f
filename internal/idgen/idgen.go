package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes for different uses
const (
	PrefixSession = "sess_"
	PrefixRequest = "req_"
)

// NewSession generates a new client session ID with sess_ prefix
func NewSession() string {
	return PrefixSession + uuid.New().String()
}

// NewRequest generates a new request ID with req_ prefix
func NewRequest() string {
	return PrefixRequest + uuid.New().String()
}

// New generates a generic UUID without prefix
func New() string {
	return uuid.New().String()
}

// Valid reports whether id is a prefixed or bare UUID
func Valid(id string) bool {
	for _, prefix := range []string{PrefixSession, PrefixRequest} {
		id = strings.TrimPrefix(id, prefix)
	}
	_, err := uuid.Parse(id)
	return err == nil
}
