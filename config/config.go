package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/awantoch/flowviz/constants"
)

type Config struct {
	Storage         StorageConfig `json:"storage"`
	Blob            BlobConfig    `json:"blob"`
	Event           EventConfig   `json:"event"`
	HTTP            HTTPConfig    `json:"http"`
	Log             LogConfig     `json:"log"`
	Tracing         TracingConfig `json:"tracing"`
	Styles          string        `json:"styles,omitempty"`
	DefaultNotation string        `json:"default_notation,omitempty"`
}

type StorageConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

type BlobConfig struct {
	Driver    string `json:"driver"`
	Directory string `json:"directory,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
}

type EventConfig struct {
	Driver    string `json:"driver"`
	URL       string `json:"url,omitempty"`
	ClusterID string `json:"cluster_id,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
}

type HTTPConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// TracingConfig selects the OpenTelemetry span exporter. An empty
// exporter disables tracing.
type TracingConfig struct {
	ServiceName string `json:"service_name,omitempty"`
	Exporter    string `json:"exporter,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads path when it exists, applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvStorageDriver); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(constants.EnvStorageDSN); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(constants.EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.EnvHTTPPort, v, err)
		}
		c.HTTP.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = constants.StorageDriverSQLite
	}
	if c.Storage.Driver == constants.StorageDriverSQLite && c.Storage.DSN == "" {
		c.Storage.DSN = DefaultSQLiteDSN
	}
	if c.Blob.Driver == "" {
		c.Blob.Driver = constants.BlobDriverFilesystem
	}
	if c.Blob.Driver == constants.BlobDriverFilesystem && c.Blob.Directory == "" {
		c.Blob.Directory = DefaultBlobDir
	}
	if c.Event.Driver == "" {
		c.Event.Driver = constants.EventDriverMemory
	}
	if c.HTTP.Host == "" {
		c.HTTP.Host = constants.DefaultHTTPHost
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = constants.DefaultHTTPPort
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = constants.DefaultServiceName
	}
	if c.DefaultNotation == "" {
		c.DefaultNotation = constants.NotationMermaid
	}
}

// Addr returns the host:port the HTTP server listens on.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}
