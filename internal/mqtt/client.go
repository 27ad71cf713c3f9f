package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Config contains broker settings
type Config struct {
	BrokerURL   string // e.g. tcp://localhost:1883 or ssl://broker:8883
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	TopicPrefix string
}

// publishClient is the part of pahomqtt.Client used here
type publishClient interface {
	Connect() pahomqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Client publishes device snapshots to an MQTT broker.
// Reconnection is handled by paho; the bridge status is re-announced on every connect.
type Client struct {
	client         publishClient
	cfg            Config
	topics         Topics
	logger         *slog.Logger
	publishTimeout time.Duration
}

// Connect connects to the broker and announces the bridge as online.
func Connect(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := newClient(cfg, logger)

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.logger.Info("MQTT reconnecting")
	})

	c.client = pahomqtt.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.logger.Info("Connected to MQTT broker", "broker", cfg.BrokerURL, "client_id", cfg.ClientID)
	return c, nil
}

func newClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:            cfg,
		topics:         Topics{Prefix: cfg.TopicPrefix},
		logger:         logger.With("component", "mqtt"),
		publishTimeout: defaultPublishTimeout,
	}
}

// handleConnect runs on paho's callback goroutine and must not block on the token
func (c *Client) handleConnect() {
	c.client.Publish(c.topics.BridgeStatus(), c.cfg.QoS, true, statusOnline)
}

// Topics returns the topic builder in use
func (c *Client) Topics() Topics {
	return c.topics
}

// IsConnected reports the current connection state
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Close publishes the offline status and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.client.IsConnected() {
		token := c.client.Publish(c.topics.BridgeStatus(), c.cfg.QoS, true, statusOffline)
		if !token.WaitTimeout(defaultPublishTimeout) {
			c.logger.Warn("Timed out publishing offline status")
		} else if err := token.Error(); err != nil {
			c.logger.Warn("Failed to publish offline status", "error", err)
		}
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.logger.Info("Disconnected from MQTT broker")
	return nil
}
