package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"culligan/internal/poller"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// statePayload is the retained JSON document on the device state topic
type statePayload struct {
	DSN              string                 `json:"dsn"`
	ProductName      string                 `json:"product_name,omitempty"`
	Model            string                 `json:"model,omitempty"`
	SWVersion        string                 `json:"sw_version,omitempty"`
	ConnectionStatus string                 `json:"connection_status,omitempty"`
	Online           bool                   `json:"online"`
	Properties       map[string]interface{} `json:"properties"`
	PolledAt         time.Time              `json:"polled_at"`
}

// Publish sends the device state as retained JSON, then every property value
// on its own retained topic. It stops at the first failure.
func (c *Client) Publish(ctx context.Context, snapshot poller.Snapshot) error {
	device := snapshot.Device
	if strings.TrimSpace(device.DSN) == "" {
		return ErrInvalidTopic
	}

	state := statePayload{
		DSN:              device.DSN,
		ProductName:      device.ProductName,
		Model:            device.Model,
		SWVersion:        device.SWVersion,
		ConnectionStatus: device.ConnectionStatus,
		Online:           device.IsOnline(),
		Properties:       make(map[string]interface{}, len(snapshot.Properties)),
		PolledAt:         snapshot.PolledAt.UTC(),
	}
	for _, p := range snapshot.Properties {
		state.Properties[p.Name] = p.Value
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal state: %w", ErrPublishFailed, err)
	}

	if err := c.publish(ctx, c.topics.DeviceState(device.DSN), payload, true); err != nil {
		return err
	}

	for _, p := range snapshot.Properties {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if err := c.publish(ctx, c.topics.DeviceProperty(device.DSN, p.Name), []byte(p.StringValue()), true); err != nil {
			return err
		}
	}

	c.logger.Debug("Published snapshot",
		"dsn", device.DSN,
		"properties", len(snapshot.Properties))

	return nil
}

// publish sends one message and waits for the acknowledgment, the context or the publish timeout.
func (c *Client) publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if c.cfg.QoS > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, c.cfg.QoS, retained, payload)

	timer := time.NewTimer(c.publishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, c.publishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// Ensure Client implements poller.Publisher
var _ poller.Publisher = (*Client)(nil)
