// Package config holds the monitor settings loaded from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dm/cmm-go/internal/logger"
)

const (
	DefaultHost         = "192.168.100.1"
	DefaultUsername     = "admin"
	DefaultScanInterval = 600 * time.Second
	MinScanInterval     = 60 * time.Second
	MaxScanInterval     = 1800 * time.Second
)

// Config is the monitor configuration. Zero-valued fields in a file fall
// back to Default.
type Config struct {
	Host               string        `yaml:"host"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	ScanInterval       time.Duration `yaml:"scan_interval"`
	CachedURL          string        `yaml:"cached_url"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	MaxHistory         int           `yaml:"max_history"`
	MetricsAddr        string        `yaml:"metrics_addr"`
	Log                logger.Config `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:              DefaultHost,
		Username:          DefaultUsername,
		ScanInterval:      DefaultScanInterval,
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 2,
		MaxHistory:        100,
		Log:               logger.Config{Level: "info", Output: "stderr"},
	}
}

// Load reads path over Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects unusable settings and clamps the scan interval into
// [MinScanInterval, MaxScanInterval].
func (c *Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative, got %g", c.RequestsPerSecond))
	}
	if c.MaxHistory <= 0 {
		errs = append(errs, fmt.Errorf("max_history must be positive, got %d", c.MaxHistory))
	}
	c.ScanInterval = ClampInterval(c.ScanInterval)
	return errors.Join(errs...)
}

// ClampInterval bounds d to the supported scan interval range. Zero selects
// the default.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultScanInterval
	case d < MinScanInterval:
		return MinScanInterval
	case d > MaxScanInterval:
		return MaxScanInterval
	}
	return d
}
