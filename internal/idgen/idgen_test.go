package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	id := NewSession()
	assert.True(t, strings.HasPrefix(id, PrefixSession))
	assert.True(t, Valid(id))
	assert.NotEqual(t, id, NewSession())
}

func TestNewRequest(t *testing.T) {
	id := NewRequest()
	assert.True(t, strings.HasPrefix(id, PrefixRequest))
	assert.True(t, Valid(id))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(New()))
	assert.False(t, Valid("sess_not-a-uuid"))
	assert.False(t, Valid(""))
}
