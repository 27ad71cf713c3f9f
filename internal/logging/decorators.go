package logging

import (
	"context"
	"log/slog"
	"time"

	"culligan/internal/ayla"
)

// DeviceAPILogger wraps a DeviceAPI and logs all method calls
type DeviceAPILogger struct {
	api    ayla.DeviceAPI
	logger *slog.Logger
}

// NewDeviceAPILogger creates a new logging decorator for DeviceAPI
func NewDeviceAPILogger(api ayla.DeviceAPI, logger *slog.Logger) ayla.DeviceAPI {
	return &DeviceAPILogger{
		api:    api,
		logger: logger.With("interface", "DeviceAPI"),
	}
}

func (l *DeviceAPILogger) ListDevices(ctx context.Context) ([]ayla.Device, error) {
	start := time.Now()
	l.logger.Debug("ListDevices called")

	devices, err := l.api.ListDevices(ctx)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("ListDevices failed",
			"duration", duration,
			"error", err)
		return nil, err
	}

	l.logger.Debug("ListDevices completed",
		"count", len(devices),
		"duration", duration)

	return devices, nil
}

func (l *DeviceAPILogger) GetProperties(ctx context.Context, dsn string) ([]ayla.Property, error) {
	start := time.Now()
	l.logger.Debug("GetProperties called",
		"dsn", dsn)

	properties, err := l.api.GetProperties(ctx, dsn)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("GetProperties failed",
			"dsn", dsn,
			"duration", duration,
			"error", err)
		return nil, err
	}

	l.logger.Debug("GetProperties completed",
		"dsn", dsn,
		"count", len(properties),
		"duration", duration)

	return properties, nil
}
