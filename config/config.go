package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"culligan/internal/ayla"
	"culligan/internal/credentials"
	"culligan/internal/endpoint"
	"culligan/internal/logging"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

const (
	defaultTimeoutSeconds      = 30
	defaultPollIntervalSeconds = 60
	minPollIntervalSeconds     = 10
	defaultBridgePort          = 8080
	defaultMQTTClientID        = "culligan-bridge"
	defaultTopicPrefix         = "culligan"
)

// Config represents the application configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	API     APIConfig     `json:"api" yaml:"api"`
	Bridge  BridgeConfig  `json:"bridge" yaml:"bridge"`
	MQTT    MQTTConfig    `json:"mqtt" yaml:"mqtt"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// AccountConfig contains the provider account and application credentials
type AccountConfig struct {
	Email     string `json:"email" yaml:"email"`
	Password  string `json:"password" yaml:"password"`
	AppID     string `json:"app_id" yaml:"app_id"`
	AppSecret string `json:"app_secret" yaml:"app_secret"`
}

// APIConfig contains provider API settings
type APIConfig struct {
	Domain             string `json:"domain" yaml:"domain"`
	HostSuffix         string `json:"host_suffix" yaml:"host_suffix"`
	TimeoutSeconds     int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	UserAgent          string `json:"user_agent" yaml:"user_agent"`

	// Endpoints overrides base URLs per segment ("user", "ads"/"device-data", "metrics")
	Endpoints map[string]string `json:"endpoints" yaml:"endpoints"`
}

// BridgeConfig contains local HTTP server and polling settings
type BridgeConfig struct {
	Host                string `json:"host" yaml:"host"`
	Port                int    `json:"port" yaml:"port"`
	APIKey              string `json:"api_key" yaml:"api_key"`
	PollIntervalSeconds int    `json:"poll_interval_seconds" yaml:"poll_interval_seconds"`
}

// MQTTConfig contains broker settings for state publishing
type MQTTConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	BrokerURL   string `json:"broker_url" yaml:"broker_url"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	QoS         int    `json:"qos" yaml:"qos"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	Output string `json:"output" yaml:"output"`
}

// Default returns a configuration with every optional field set
func Default() *Config {
	return &Config{
		API: APIConfig{
			Domain:         endpoint.DefaultDomain,
			HostSuffix:     endpoint.DefaultHostSuffix,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Bridge: BridgeConfig{
			Host:                "127.0.0.1",
			Port:                defaultBridgePort,
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		MQTT: MQTTConfig{
			ClientID:    defaultMQTTClientID,
			QoS:         1,
			TopicPrefix: defaultTopicPrefix,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Credentials().Validate(); err != nil {
		return fmt.Errorf("%w: account: %w", ErrInvalidConfig, err)
	}

	if c.API.Domain == "" {
		c.API.Domain = endpoint.DefaultDomain
	}

	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: api timeout must not be negative", ErrInvalidConfig)
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}

	for name := range c.API.Endpoints {
		if _, err := endpoint.ParseSegment(name); err != nil {
			return fmt.Errorf("%w: api endpoints: %w", ErrInvalidConfig, err)
		}
	}

	if c.Bridge.Port <= 0 || c.Bridge.Port > 65535 {
		return fmt.Errorf("%w: invalid bridge port", ErrInvalidConfig)
	}

	if c.Bridge.PollIntervalSeconds == 0 {
		c.Bridge.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Bridge.PollIntervalSeconds < minPollIntervalSeconds {
		return fmt.Errorf("%w: poll interval must be at least %d seconds", ErrInvalidConfig, minPollIntervalSeconds)
	}

	if c.MQTT.Enabled {
		if c.MQTT.BrokerURL == "" {
			return fmt.Errorf("%w: mqtt broker_url is required when mqtt is enabled", ErrInvalidConfig)
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("%w: mqtt qos must be 0, 1 or 2", ErrInvalidConfig)
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = defaultMQTTClientID
		}
		c.MQTT.TopicPrefix = strings.Trim(c.MQTT.TopicPrefix, "/")
		if c.MQTT.TopicPrefix == "" {
			c.MQTT.TopicPrefix = defaultTopicPrefix
		}
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("%w: log format must be json or text", ErrInvalidConfig)
	}

	return nil
}

// Credentials returns the account credentials
func (c *Config) Credentials() credentials.Credentials {
	return credentials.New(c.Account.Email, c.Account.Password, c.Account.AppID, c.Account.AppSecret)
}

// Resolver builds the endpoint resolver for the configured provider
func (c *Config) Resolver() (*endpoint.Resolver, error) {
	resolver := &endpoint.Resolver{
		Domain:     c.API.Domain,
		HostSuffix: c.API.HostSuffix,
	}

	if len(c.API.Endpoints) > 0 {
		resolver.Overrides = make(map[endpoint.Segment]string, len(c.API.Endpoints))
		for name, url := range c.API.Endpoints {
			segment, err := endpoint.ParseSegment(name)
			if err != nil {
				return nil, err
			}
			resolver.Overrides[segment] = url
		}
	}

	return resolver, nil
}

// ClientConfig builds the provider client settings
func (c *Config) ClientConfig(logger *slog.Logger) (ayla.Config, error) {
	resolver, err := c.Resolver()
	if err != nil {
		return ayla.Config{}, err
	}

	return ayla.Config{
		Resolver:           resolver,
		Timeout:            time.Duration(c.API.TimeoutSeconds) * time.Second,
		UserAgent:          c.API.UserAgent,
		InsecureSkipVerify: c.API.InsecureSkipVerify,
		Logger:             logger,
	}, nil
}

// PollInterval returns the bridge polling interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bridge.PollIntervalSeconds) * time.Second
}

// Addr returns the local HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Host, c.Bridge.Port)
}

// LoggerConfig returns the logger settings
func (c *Config) LoggerConfig() logging.LoggerConfig {
	return logging.LoggerConfig{
		Format: c.Logging.Format,
		Level:  logging.ParseLevel(c.Logging.Level),
		Output: c.Logging.Output,
	}
}

// Load loads configuration from a JSON file, or YAML for .yaml/.yml paths
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	defaults := Default()

	config := &Config{
		Account: AccountConfig{
			Email:     getEnv("SOFTENER_EMAIL", ""),
			Password:  getEnv("SOFTENER_PASSWORD", ""),
			AppID:     getEnv("SOFTENER_APP_ID", ""),
			AppSecret: getEnv("SOFTENER_APP_SECRET", ""),
		},
		API: APIConfig{
			Domain:             getEnv("SOFTENER_DOMAIN", defaults.API.Domain),
			HostSuffix:         lookupEnv("SOFTENER_HOST_SUFFIX", defaults.API.HostSuffix),
			TimeoutSeconds:     getEnvInt("SOFTENER_TIMEOUT_SECONDS", defaults.API.TimeoutSeconds),
			InsecureSkipVerify: getEnvBool("SOFTENER_INSECURE_SKIP_VERIFY", false),
			UserAgent:          getEnv("SOFTENER_USER_AGENT", ""),
		},
		Bridge: BridgeConfig{
			Host:                getEnv("SOFTENER_HOST", defaults.Bridge.Host),
			Port:                getEnvInt("SOFTENER_PORT", defaults.Bridge.Port),
			APIKey:              getEnv("SOFTENER_API_KEY", ""),
			PollIntervalSeconds: getEnvInt("SOFTENER_POLL_INTERVAL_SECONDS", defaults.Bridge.PollIntervalSeconds),
		},
		MQTT: MQTTConfig{
			Enabled:     getEnvBool("SOFTENER_MQTT_ENABLED", false),
			BrokerURL:   getEnv("SOFTENER_MQTT_BROKER_URL", ""),
			ClientID:    getEnv("SOFTENER_MQTT_CLIENT_ID", defaults.MQTT.ClientID),
			Username:    getEnv("SOFTENER_MQTT_USERNAME", ""),
			Password:    getEnv("SOFTENER_MQTT_PASSWORD", ""),
			QoS:         getEnvInt("SOFTENER_MQTT_QOS", defaults.MQTT.QoS),
			TopicPrefix: getEnv("SOFTENER_MQTT_TOPIC_PREFIX", defaults.MQTT.TopicPrefix),
		},
		Logging: LoggingConfig{
			Level:  getEnv("SOFTENER_LOG_LEVEL", defaults.Logging.Level),
			Format: getEnv("SOFTENER_LOG_FORMAT", defaults.Logging.Format),
			Output: getEnv("SOFTENER_LOG_OUTPUT", defaults.Logging.Output),
		},
	}

	for _, segment := range []string{"user", "ads", "metrics"} {
		key := "SOFTENER_ENDPOINT_" + strings.ToUpper(segment)
		if url := getEnv(key, ""); url != "" {
			if config.API.Endpoints == nil {
				config.API.Endpoints = make(map[string]string)
			}
			config.API.Endpoints[segment] = url
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is getEnv for values where an explicit empty string is meaningful
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
