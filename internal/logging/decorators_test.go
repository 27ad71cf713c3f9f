package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"culligan/internal/ayla"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDeviceAPI struct {
	devices    []ayla.Device
	properties []ayla.Property
	err        error
	lastDSN    string
}

func (s *stubDeviceAPI) ListDevices(ctx context.Context) ([]ayla.Device, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.devices, nil
}

func (s *stubDeviceAPI) GetProperties(ctx context.Context, dsn string) ([]ayla.Property, error) {
	s.lastDSN = dsn
	if s.err != nil {
		return nil, s.err
	}
	return s.properties, nil
}

func TestDeviceAPILogger_PassesThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "text", Level: slog.LevelDebug, Writer: &buf})

	stub := &stubDeviceAPI{
		devices:    []ayla.Device{{DSN: "AC000W123"}},
		properties: []ayla.Property{{Name: "salt_level"}, {Name: "capacity_remaining"}},
	}
	api := NewDeviceAPILogger(stub, logger)

	devices, err := api.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stub.devices, devices)

	properties, err := api.GetProperties(context.Background(), "AC000W123")
	require.NoError(t, err)
	assert.Len(t, properties, 2)
	assert.Equal(t, "AC000W123", stub.lastDSN)

	out := buf.String()
	assert.Contains(t, out, "ListDevices completed")
	assert.Contains(t, out, "GetProperties completed")
	assert.Contains(t, out, "interface=DeviceAPI")
	assert.Contains(t, out, "count=2")
}

func TestDeviceAPILogger_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "text", Level: slog.LevelDebug, Writer: &buf})

	upstream := &ayla.AuthError{Endpoint: "https://ads-field.aylanetworks.com/apiv1/devices.json"}
	api := NewDeviceAPILogger(&stubDeviceAPI{err: upstream}, logger)

	devices, err := api.ListDevices(context.Background())
	assert.Nil(t, devices)

	var authErr *ayla.AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Contains(t, buf.String(), "ListDevices failed")
	assert.Contains(t, buf.String(), "level=ERROR")
}
