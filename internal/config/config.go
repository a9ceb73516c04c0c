package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
		RateLimit   int      `yaml:"rateLimit"` // requests per minute per client
	} `yaml:"server"`

	Policy struct {
		AllowedFormats []string `yaml:"allowedFormats"`
		MaxBytes       int64    `yaml:"maxBytes"`
	} `yaml:"policy"`

	Provider struct {
		Mode           string `yaml:"mode"` // mock | openai
		Model          string `yaml:"model"`
		APIKey         string `yaml:"apiKey"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"provider"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load reads the config.yaml file and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://127.0.0.1:3000",
		}
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 60
	}
	if len(c.Policy.AllowedFormats) == 0 {
		c.Policy.AllowedFormats = []string{"jpg", "jpeg", "png"}
	}
	if c.Policy.MaxBytes == 0 {
		c.Policy.MaxBytes = 10 * 1024 * 1024
	}
	if c.Provider.Mode == "" {
		c.Provider.Mode = "mock"
	}
	if c.Provider.TimeoutSeconds == 0 {
		c.Provider.TimeoutSeconds = 30
	}
}

func (c *Config) validate() error {
	switch c.Provider.Mode {
	case "mock", "openai":
	default:
		return fmt.Errorf("unknown provider mode: %q", c.Provider.Mode)
	}
	if c.Policy.MaxBytes < 0 {
		return fmt.Errorf("policy.maxBytes must not be negative")
	}
	return nil
}

// ProviderTimeout is the per-call analysis deadline.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}
