package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"culligan/internal/credentials"
	"culligan/internal/endpoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Account = AccountConfig{
		Email:     "a@b.com",
		Password:  "x",
		AppID:     "id1",
		AppSecret: "sec1",
	}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:    "missing email",
			modify:  func(c *Config) { c.Account.Email = "" },
			wantErr: credentials.ErrMissingEmail,
		},
		{
			name:    "missing app secret",
			modify:  func(c *Config) { c.Account.AppSecret = "" },
			wantErr: credentials.ErrMissingAppSecret,
		},
		{
			name:    "invalid port - zero",
			modify:  func(c *Config) { c.Bridge.Port = 0 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "invalid port - too large",
			modify:  func(c *Config) { c.Bridge.Port = 70000 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.API.TimeoutSeconds = -1 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "poll interval too short",
			modify:  func(c *Config) { c.Bridge.PollIntervalSeconds = 2 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown endpoint segment",
			modify:  func(c *Config) { c.API.Endpoints = map[string]string{"billing": "http://localhost"} },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "mqtt enabled without broker",
			modify:  func(c *Config) { c.MQTT.Enabled = true },
			wantErr: ErrInvalidConfig,
		},
		{
			name: "mqtt qos out of range",
			modify: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.BrokerURL = "tcp://localhost:1883"
				c.MQTT.QoS = 3
			},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestConfig_ValidateAppliesDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.API.Domain = ""
	cfg.API.TimeoutSeconds = 0
	cfg.Bridge.PollIntervalSeconds = 0
	cfg.MQTT = MQTTConfig{Enabled: true, BrokerURL: "tcp://localhost:1883", TopicPrefix: "/home/softener/"}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, endpoint.DefaultDomain, cfg.API.Domain)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Equal(t, "culligan-bridge", cfg.MQTT.ClientID)
	assert.Equal(t, "home/softener", cfg.MQTT.TopicPrefix)
}

func TestLoad_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"account": {"email": "a@b.com", "password": "x", "app_id": "id1", "app_secret": "sec1"},
		"api": {"domain": "aylanetworks.com", "host_suffix": "", "timeout_seconds": 10},
		"bridge": {"port": 9090, "api_key": "local-key"}
	}`
	require.NoError(t, os.WriteFile(configPath, []byte(configJSON), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", cfg.Account.Email)
	assert.Equal(t, "", cfg.API.HostSuffix)
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "local-key", cfg.Bridge.APIKey)
	assert.Equal(t, 60, cfg.Bridge.PollIntervalSeconds)
	assert.Equal(t, "json", cfg.Logging.Format)

	resolver, err := cfg.Resolver()
	require.NoError(t, err)
	base, err := resolver.Resolve(endpoint.SegmentUser)
	require.NoError(t, err)
	assert.Equal(t, "https://user.aylanetworks.com", base)
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configYAML := `
account:
  email: a@b.com
  password: x
  app_id: id1
  app_secret: sec1
api:
  insecure_skip_verify: true
  endpoints:
    device-data: http://127.0.0.1:8888/
mqtt:
  enabled: true
  broker_url: tcp://broker:1883
  qos: 0
logging:
  level: debug
  format: text
  output: stderr
`
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.True(t, cfg.API.InsecureSkipVerify)
	assert.Equal(t, endpoint.DefaultHostSuffix, cfg.API.HostSuffix)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, 0, cfg.MQTT.QoS)
	assert.Equal(t, "culligan", cfg.MQTT.TopicPrefix)

	clientCfg, err := cfg.ClientConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, clientCfg.Timeout)
	assert.True(t, clientCfg.InsecureSkipVerify)

	base, err := clientCfg.Resolver.Resolve(endpoint.SegmentDeviceData)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8888", base)

	base, err = clientCfg.Resolver.Resolve(endpoint.SegmentUser)
	require.NoError(t, err)
	assert.Equal(t, "https://user-field.aylanetworks.com", base)

	logCfg := cfg.LoggerConfig()
	assert.Equal(t, "text", logCfg.Format)
	assert.Equal(t, "stderr", logCfg.Output)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	badPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"account":`), 0644))
	_, err = Load(badPath)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)

	incompletePath := filepath.Join(t.TempDir(), "incomplete.yml")
	require.NoError(t, os.WriteFile(incompletePath, []byte("account:\n  email: a@b.com\n"), 0644))
	_, err = Load(incompletePath)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SOFTENER_EMAIL", "env@b.com")
	t.Setenv("SOFTENER_PASSWORD", "env-pass")
	t.Setenv("SOFTENER_APP_ID", "env-app")
	t.Setenv("SOFTENER_APP_SECRET", "env-secret")
	t.Setenv("SOFTENER_HOST_SUFFIX", "")
	t.Setenv("SOFTENER_PORT", "9191")
	t.Setenv("SOFTENER_POLL_INTERVAL_SECONDS", "120")
	t.Setenv("SOFTENER_MQTT_ENABLED", "true")
	t.Setenv("SOFTENER_MQTT_BROKER_URL", "tcp://broker:1883")
	t.Setenv("SOFTENER_MQTT_QOS", "2")
	t.Setenv("SOFTENER_ENDPOINT_ADS", "http://proxy:8080")
	t.Setenv("SOFTENER_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	creds := cfg.Credentials()
	assert.Equal(t, "env@b.com", creds.Email)
	assert.Equal(t, "env-secret", creds.AppSecret)
	assert.Equal(t, "", cfg.API.HostSuffix)
	assert.Equal(t, 9191, cfg.Bridge.Port)
	assert.Equal(t, 2*time.Minute, cfg.PollInterval())
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, 2, cfg.MQTT.QoS)
	assert.Equal(t, "http://proxy:8080", cfg.API.Endpoints["ads"])
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("SOFTENER_EMAIL", "")
	t.Setenv("SOFTENER_PASSWORD", "")
	t.Setenv("SOFTENER_APP_ID", "")
	t.Setenv("SOFTENER_APP_SECRET", "")

	_, err := LoadFromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, credentials.ErrMissingEmail)
}
