package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMainEndpoint = "https://api.annotate.example.com/api/v1"
	dirName             = ".annoctl"
	fileName            = "config.yml"
)

// Config models ~/.annoctl/config.yml.
type Config struct {
	Token           Token  `yaml:"token"`
	MainEndpoint    string `yaml:"main_endpoint"`
	SSLVerify       bool   `yaml:"ssl_verify"`
	StorageEndpoint string `yaml:"storage_endpoint,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
}

// Default returns a config pointing at the hosted platform without a token.
func Default() *Config {
	return &Config{MainEndpoint: DefaultMainEndpoint, SSLVerify: true, LogLevel: "info"}
}

// Validate ensures the config can build a controller.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("config.token is required; run annoctl init")
	}
	if _, err := c.Token.TeamID(); err != nil {
		return err
	}
	if c.MainEndpoint == "" {
		return fmt.Errorf("config.main_endpoint is required")
	}
	if _, err := url.ParseRequestURI(c.MainEndpoint); err != nil {
		return fmt.Errorf("config.main_endpoint is not a valid url: %w", err)
	}
	if c.StorageEndpoint != "" {
		if _, err := url.ParseRequestURI(c.StorageEndpoint); err != nil {
			return fmt.Errorf("config.storage_endpoint is not a valid url: %w", err)
		}
	}
	return nil
}

// Path returns the default config file path under home.
func Path(home string) string {
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		} else {
			home = "."
		}
	}
	return filepath.Join(home, dirName, fileName)
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create it with annoctl init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	return cfg, nil
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys keep their defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory. The file holds a secret so it is user-only.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
