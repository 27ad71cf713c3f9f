package mqtt

import (
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	defaultKeepAlive = 60 * time.Second

	defaultMaxReconnectInterval = 2 * time.Minute

	maxQoS = 2

	statusOnline  = "online"
	statusOffline = "offline"
)

// validate checks cfg and fills defaults
func (cfg *Config) validate() error {
	if cfg.BrokerURL == "" {
		return ErrInvalidConfig
	}
	if _, err := url.Parse(cfg.BrokerURL); err != nil {
		return err
	}
	if cfg.QoS > maxQoS {
		return ErrInvalidQoS
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "culligan-bridge"
	}
	return nil
}

// buildClientOptions creates paho options with auto-reconnect and a Last Will
// that marks the bridge offline if the connection drops.
func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(defaultMaxReconnectInterval)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	topics := Topics{Prefix: cfg.TopicPrefix}
	opts.SetWill(topics.BridgeStatus(), statusOffline, cfg.QoS, true)

	return opts
}
