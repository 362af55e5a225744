package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
controller:
  id: "living-room-01"
  location: "Living Room"

sensor:
  source: "sim"
  read_interval: 10s

server:
  url: "wss://example.com/controller-stream"
  auth_token: "test-token-12345"
  connect_timeout: 10s
  reconnect_interval: 1s
  max_reconnect_interval: 5m
  ping_interval: 30s
  pong_timeout: 10s

buffer:
  size: 1000
  drop_oldest: true

advisory:
  enabled: true
  url: "https://classifier.example.com"
  timeout: 5s

logging:
  level: "info"
  format: "json"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Controller.ID != "living-room-01" {
		t.Errorf("Controller.ID = %v, want living-room-01", cfg.Controller.ID)
	}
	if cfg.Sensor.Source != "sim" {
		t.Errorf("Sensor.Source = %v, want sim", cfg.Sensor.Source)
	}
	if cfg.Sensor.ReadInterval != 10*time.Second {
		t.Errorf("Sensor.ReadInterval = %v, want 10s", cfg.Sensor.ReadInterval)
	}
	if cfg.Server.URL != "wss://example.com/controller-stream" {
		t.Errorf("Server.URL = %v", cfg.Server.URL)
	}
	if cfg.Server.AuthToken != "test-token-12345" {
		t.Errorf("Server.AuthToken = %v", cfg.Server.AuthToken)
	}
	if cfg.Buffer.Size != 1000 {
		t.Errorf("Buffer.Size = %v, want 1000", cfg.Buffer.Size)
	}
	if !cfg.Advisory.Enabled || cfg.Advisory.URL != "https://classifier.example.com" {
		t.Errorf("Advisory = %+v", cfg.Advisory)
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Sensor.Source != "sim" {
		t.Errorf("Default Sensor.Source = %v, want sim", cfg.Sensor.Source)
	}
	if cfg.Sensor.ReadInterval != 10*time.Second {
		t.Errorf("Default ReadInterval = %v, want 10s", cfg.Sensor.ReadInterval)
	}
	if cfg.Buffer.Size != 1000 {
		t.Errorf("Default Buffer.Size = %v, want 1000", cfg.Buffer.Size)
	}
	if !cfg.Buffer.DropOldest {
		t.Error("Default Buffer.DropOldest should be true")
	}
	if cfg.Advisory.Timeout != 5*time.Second {
		t.Errorf("Default Advisory.Timeout = %v, want 5s", cfg.Advisory.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Default Logging.Level = %v, want info", cfg.Logging.Level)
	}
}

func TestConfig_OverrideFromEnv(t *testing.T) {
	os.Setenv("CONTROLLER_ID", "env-controller-01")
	os.Setenv("SERVER_URL", "wss://env-server.com/ws")
	os.Setenv("SERVER_AUTH_TOKEN", "env-token-xyz")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("CONTROLLER_ID")
		os.Unsetenv("SERVER_URL")
		os.Unsetenv("SERVER_AUTH_TOKEN")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg := &Config{
		Controller: ControllerConfig{ID: "config-controller"},
		Server:     ServerConfig{URL: "wss://config-server.com/ws"},
	}
	cfg.OverrideFromEnv()

	if cfg.Controller.ID != "env-controller-01" {
		t.Errorf("Controller.ID = %v, want env override", cfg.Controller.ID)
	}
	if cfg.Server.URL != "wss://env-server.com/ws" {
		t.Errorf("Server.URL = %v, want env override", cfg.Server.URL)
	}
	if cfg.Server.AuthToken != "env-token-xyz" {
		t.Errorf("Server.AuthToken = %v, want env override", cfg.Server.AuthToken)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %v, want debug", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Controller: ControllerConfig{ID: "room-01"},
			Server: ServerConfig{
				URL:       "wss://example.com/ws",
				AuthToken: "token",
			},
		}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing controller id", func(c *Config) { c.Controller.ID = "" }, true},
		{"missing server url", func(c *Config) { c.Server.URL = "" }, true},
		{"missing auth token", func(c *Config) { c.Server.AuthToken = "" }, true},
		{"unknown source", func(c *Config) { c.Sensor.Source = "bme280" }, true},
		{"dht11 without pin", func(c *Config) { c.Sensor.Source = "dht11" }, true},
		{"dht11 with pin", func(c *Config) { c.Sensor.Source = "dht11"; c.Sensor.GPIOPin = 4 }, false},
		{"interval too short", func(c *Config) { c.Sensor.ReadInterval = 100 * time.Millisecond }, true},
		{"buffer too small", func(c *Config) { c.Buffer.Size = 5 }, true},
		{"advisory enabled without url", func(c *Config) { c.Advisory.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_StringMasksToken(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{AuthToken: "super-secret-token"},
	}
	s := cfg.String()
	if strings.Contains(s, "super-secret-token") {
		t.Error("String() leaked the auth token")
	}
	if !strings.Contains(s, "supe****") {
		t.Errorf("String() = %v, want masked token prefix", s)
	}
}

func TestAppConfig_DefaultsAndValidate(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()

	if cfg.Server.Port != 8081 {
		t.Errorf("Default Port = %v, want 8081", cfg.Server.Port)
	}
	if cfg.Storage.BufferSize != 100 {
		t.Errorf("Default BufferSize = %v, want 100", cfg.Storage.BufferSize)
	}
	if cfg.Database.RetentionDays != 30 {
		t.Errorf("Default RetentionDays = %v, want 30", cfg.Database.RetentionDays)
	}

	// Missing auth token fails validation
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without auth token")
	}

	cfg.Server.AuthToken = "token"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}
