package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the controller node
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Server     ServerConfig     `yaml:"server"`
	Buffer     BufferConfig     `yaml:"buffer"`
	Advisory   AdvisoryConfig   `yaml:"advisory"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ControllerConfig identifies the controller node
type ControllerConfig struct {
	ID       string `yaml:"id"`
	Location string `yaml:"location"`
}

// SensorConfig contains sensor-source settings
type SensorConfig struct {
	// Source selects the measurement backend: "sim" or "dht11"
	Source       string        `yaml:"source"`
	GPIOPin      int           `yaml:"gpio_pin"`
	ReadInterval time.Duration `yaml:"read_interval"`

	// Fixed air-quality channels for the dht11 source, which only measures
	// temperature and humidity itself
	StaticParticulate float64 `yaml:"static_particulate"`
	StaticGas         float64 `yaml:"static_gas"`
}

// ServerConfig contains connection settings for the collector server
type ServerConfig struct {
	URL                  string        `yaml:"url"`
	AuthToken            string        `yaml:"auth_token"`
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
	ReconnectInterval    time.Duration `yaml:"reconnect_interval"`
	MaxReconnectInterval time.Duration `yaml:"max_reconnect_interval"`
	PingInterval         time.Duration `yaml:"ping_interval"`
	PongTimeout          time.Duration `yaml:"pong_timeout"`
}

// BufferConfig contains settings for the evaluation buffer
type BufferConfig struct {
	Size       int  `yaml:"size"`
	DropOldest bool `yaml:"drop_oldest"`
}

// AdvisoryConfig contains settings for the external classifier
type AdvisoryConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	config.OverrideFromEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// ApplyDefaults sets default values for any unset fields
func (c *Config) ApplyDefaults() {
	if c.Sensor.Source == "" {
		c.Sensor.Source = "sim"
	}
	if c.Sensor.ReadInterval == 0 {
		c.Sensor.ReadInterval = 10 * time.Second
	}
	if c.Server.ConnectTimeout == 0 {
		c.Server.ConnectTimeout = 10 * time.Second
	}
	if c.Server.ReconnectInterval == 0 {
		c.Server.ReconnectInterval = 1 * time.Second
	}
	if c.Server.MaxReconnectInterval == 0 {
		c.Server.MaxReconnectInterval = 5 * time.Minute
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = 30 * time.Second
	}
	if c.Server.PongTimeout == 0 {
		c.Server.PongTimeout = 10 * time.Second
	}
	if c.Buffer.Size == 0 {
		c.Buffer.Size = 1000
		c.Buffer.DropOldest = true
	}
	if c.Advisory.Timeout == 0 {
		c.Advisory.Timeout = 5 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// OverrideFromEnv overrides config values from environment variables
func (c *Config) OverrideFromEnv() {
	if v := os.Getenv("CONTROLLER_ID"); v != "" {
		c.Controller.ID = v
	}
	if v := os.Getenv("CONTROLLER_LOCATION"); v != "" {
		c.Controller.Location = v
	}
	if v := os.Getenv("SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("SERVER_AUTH_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}
	if v := os.Getenv("ADVISORY_URL"); v != "" {
		c.Advisory.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Controller.ID == "" {
		return fmt.Errorf("controller ID is required")
	}
	switch c.Sensor.Source {
	case "sim":
	case "dht11":
		if c.Sensor.GPIOPin <= 0 {
			return fmt.Errorf("GPIO pin must be greater than 0 for the dht11 source")
		}
	default:
		return fmt.Errorf("unknown sensor source %q", c.Sensor.Source)
	}
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Server.AuthToken == "" {
		return fmt.Errorf("server auth token is required")
	}
	if c.Sensor.ReadInterval < 1*time.Second {
		return fmt.Errorf("read interval must be at least 1 second")
	}
	if c.Buffer.Size < 10 || c.Buffer.Size > 100000 {
		return fmt.Errorf("buffer size must be between 10 and 100000")
	}
	if c.Advisory.Enabled && c.Advisory.URL == "" {
		return fmt.Errorf("advisory URL is required when advisory is enabled")
	}
	return nil
}

// String returns a safe string representation (hides auth token)
func (c *Config) String() string {
	return fmt.Sprintf("Config{Controller: %+v, Sensor: %+v, Server: [URL=%s, Token=%s], Buffer: %+v, Advisory: %+v, Logging: %+v}",
		c.Controller,
		c.Sensor,
		c.Server.URL,
		maskToken(c.Server.AuthToken),
		c.Buffer,
		c.Advisory,
		c.Logging,
	)
}

// maskToken masks all but first 4 characters of a token
func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
