// Package config loads stepwise.yaml and command-line overrides into Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "stepwise.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	TermsURL string        `mapstructure:"terms_url"`
	MinAge   int           `mapstructure:"min_age"`
	Style    string        `mapstructure:"style"`
	Store    StoreConfig   `mapstructure:"store"`
	Login    LoginConfig   `mapstructure:"login"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the directory (file) or database file (sqlite).
	Path          string        `mapstructure:"path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	// Lock enables the distributed session lock (redis only).
	Lock    bool          `mapstructure:"lock"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type LoginConfig struct {
	Latency  time.Duration `mapstructure:"latency"`
	FailRate float64       `mapstructure:"fail_rate"`
	Seed     uint64        `mapstructure:"seed"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			Driver:    DriverMemory,
			RedisAddr: "localhost:6379",
			LockTTL:   30 * time.Second,
		},
		Login: LoginConfig{
			Latency: 2 * time.Second,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path (skipped when empty) over the defaults, then applies
// overrides. Override keys are dotted paths such as "store.driver".
func Load(path string, overrides map[string]any) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := decode(doc, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if len(overrides) > 0 {
		nested := make(map[string]any)
		for key, val := range overrides {
			setPath(nested, strings.Split(key, "."), val)
		}
		if err := decode(nested, &cfg); err != nil {
			return cfg, fmt.Errorf("apply overrides: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.Lock && c.Store.Driver != DriverRedis {
		errs = append(errs, errors.New("store.lock requires the redis driver"))
	}
	if c.Login.FailRate < 0 || c.Login.FailRate > 1 {
		errs = append(errs, fmt.Errorf("login.fail_rate %v is outside [0, 1]", c.Login.FailRate))
	}
	if c.MinAge < 0 {
		errs = append(errs, errors.New("min_age must not be negative"))
	}
	if c.Login.Latency < 0 {
		errs = append(errs, errors.New("login.latency must not be negative"))
	}
	return errors.Join(errs...)
}

func decode(input map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func setPath(m map[string]any, keys []string, val any) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = val
}
