package repository

import (
	"fmt"
	"strconv"

	"annoctl/internal/config"
)

type ConfigEntry struct {
	Key   string
	Value string
}

// ConfigRepository exposes the config file as key/value entries.
type ConfigRepository struct {
	path string
}

func NewConfigRepository(path string) *ConfigRepository {
	return &ConfigRepository{path: path}
}

func (r *ConfigRepository) load() (*config.Config, error) {
	cfg, err := config.LoadOptional(r.path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// GetOne returns the entry for key; nil when the key is unset.
func (r *ConfigRepository) GetOne(key string) (*ConfigEntry, error) {
	cfg, err := r.load()
	if err != nil {
		return nil, err
	}
	var v string
	switch key {
	case "token":
		v = cfg.Token.String()
	case "main_endpoint":
		v = cfg.MainEndpoint
	case "ssl_verify":
		v = strconv.FormatBool(cfg.SSLVerify)
	case "storage_endpoint":
		v = cfg.StorageEndpoint
	case "log_level":
		v = cfg.LogLevel
	default:
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	if v == "" {
		return nil, nil
	}
	return &ConfigEntry{Key: key, Value: v}, nil
}

// Insert sets one key, keeping the rest of the file.
func (r *ConfigRepository) Insert(e ConfigEntry) (ConfigEntry, error) {
	cfg, err := r.load()
	if err != nil {
		return ConfigEntry{}, err
	}
	switch e.Key {
	case "token":
		cfg.Token = config.Token(e.Value)
	case "main_endpoint":
		cfg.MainEndpoint = e.Value
	case "ssl_verify":
		b, err := strconv.ParseBool(e.Value)
		if err != nil {
			return ConfigEntry{}, fmt.Errorf("ssl_verify: %w", err)
		}
		cfg.SSLVerify = b
	case "storage_endpoint":
		cfg.StorageEndpoint = e.Value
	case "log_level":
		cfg.LogLevel = e.Value
	default:
		return ConfigEntry{}, fmt.Errorf("unknown config key %q", e.Key)
	}
	if err := config.Save(r.path, cfg); err != nil {
		return ConfigEntry{}, err
	}
	return e, nil
}
