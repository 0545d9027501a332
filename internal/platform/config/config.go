package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DBPath         string        `yaml:"db_path"`
	OTLPEndpoint   string        `yaml:"otlp_endpoint"`
	ObserverBuffer int           `yaml:"observer_buffer"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

func Default() Config {
	return Config{
		ListenAddr:     ":8000",
		DBPath:         "posturetrack.db",
		ObserverBuffer: 64,
		WriteTimeout:   10 * time.Second,
	}
}

// Load reads the YAML config at path on top of defaults. A missing file is
// not an error; environment variables win over both.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		payload, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(payload, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config: %w", err)
			}
		}
	}
	if v := os.Getenv("POSTURETRACK_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("POSTURETRACK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.ObserverBuffer <= 0 {
		return fmt.Errorf("observer buffer must be positive")
	}
	return nil
}
