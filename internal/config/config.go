package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultLoginURL    = "https://iamapi-dot-lh-myaccount-prod.appspot.com/iam/api/login"
	defaultUsageURL    = "https://api-dot-lh-myaccount-prod.appspot.com/api/v1/greenButton"
	defaultScratchFile = "/tmp/londonhydro.csv"
	defaultSMTPServer  = "smtp.gmail.com"
	defaultSMTPPort    = 587
	defaultTopicPrefix = "londonhydro"
)

// Config holds the application configuration
type Config struct {
	LondonHydro LondonHydroConfig `yaml:"london_hydro,omitempty"`
	ScratchFile string            `yaml:"scratch_file,omitempty"` // Raw export lands here between fetch and parse
	SMTP        SMTPConfig        `yaml:"smtp,omitempty"`
	MQTT        MQTTConfig        `yaml:"mqtt,omitempty"`
	RatePerKWh  float64           `yaml:"rate_per_kwh,omitempty"` // Cost per kWh, used for the MQTT cost estimate
}

// LondonHydroConfig holds the provider API endpoints
type LondonHydroConfig struct {
	LoginURL       string `yaml:"login_url,omitempty"`
	UsageURL       string `yaml:"usage_url,omitempty"` // Account path and /downloadData are appended
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// SMTPConfig holds mail server settings. Credentials come from the command line.
type SMTPConfig struct {
	Server    string `yaml:"server,omitempty"`
	Port      int    `yaml:"port,omitempty"`
	Recipient string `yaml:"recipient,omitempty"` // Defaults to the sender
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Default returns a config with every setting filled in with its default
func Default() *Config {
	cfg := &Config{}
	return &Config{
		LondonHydro: LondonHydroConfig{
			LoginURL:       cfg.GetLoginURL(),
			UsageURL:       cfg.GetUsageURL(),
			TimeoutSeconds: int(cfg.GetTimeout() / time.Second),
		},
		ScratchFile: cfg.GetScratchFile(),
		SMTP: SMTPConfig{
			Server: cfg.GetSMTPServer(),
			Port:   cfg.GetSMTPPort(),
		},
		MQTT: MQTTConfig{
			TopicPrefix: cfg.GetTopicPrefix(),
		},
	}
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetLoginURL returns the login endpoint
func (c *Config) GetLoginURL() string {
	if c.LondonHydro.LoginURL == "" {
		return defaultLoginURL
	}
	return c.LondonHydro.LoginURL
}

// GetUsageURL returns the green button export base URL
func (c *Config) GetUsageURL() string {
	if c.LondonHydro.UsageURL == "" {
		return defaultUsageURL
	}
	return c.LondonHydro.UsageURL
}

// GetTimeout returns the HTTP timeout with a default of 30 seconds
func (c *Config) GetTimeout() time.Duration {
	if c.LondonHydro.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LondonHydro.TimeoutSeconds) * time.Second
}

// GetScratchFile returns the scratch file path
func (c *Config) GetScratchFile() string {
	if c.ScratchFile == "" {
		return defaultScratchFile
	}
	return c.ScratchFile
}

// GetSMTPServer returns the SMTP host
func (c *Config) GetSMTPServer() string {
	if c.SMTP.Server == "" {
		return defaultSMTPServer
	}
	return c.SMTP.Server
}

// GetSMTPPort returns the SMTP submission port
func (c *Config) GetSMTPPort() int {
	if c.SMTP.Port <= 0 {
		return defaultSMTPPort
	}
	return c.SMTP.Port
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return defaultTopicPrefix
	}
	return c.MQTT.TopicPrefix
}

// GetRate returns the cost per kWh, or 0 if not set
func (c *Config) GetRate() float64 {
	return c.RatePerKWh
}
