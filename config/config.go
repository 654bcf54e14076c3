// Package config loads the settings of the featsat command and server.
//
// Settings come from defaults, then from an optional YAML file, then from
// FEATSAT_* environment variables. The result is validated before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	// Solver contains settings of the enumeration engine.
	Solver SolverConfig `json:"solver" yaml:"solver"`

	// Server contains settings of the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`
}

type SolverConfig struct {
	Backend       string        `json:"backend" yaml:"backend" validate:"oneof=gophersat gini"`
	MaxIterations int           `json:"max_iterations" yaml:"max_iterations" validate:"gte=0"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
	BDDNodes      int           `json:"bdd_nodes" yaml:"bdd_nodes" validate:"gte=0"`
}

type ServerConfig struct {
	Addr           string  `json:"addr" yaml:"addr" validate:"required"`
	MaxUploadBytes int64   `json:"max_upload_bytes" yaml:"max_upload_bytes" validate:"gt=0"`
	RateLimit      float64 `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // Requests per second, 0 for no limit
	RateBurst      int     `json:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
	Tracing        bool    `json:"tracing" yaml:"tracing"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// ErrInvalid is returned when settings do not validate.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// Default returns the default settings.
func Default() Config {
	return Config{
		Solver: SolverConfig{
			Backend:  "gophersat",
			Timeout:  30 * time.Second,
			BDDNodes: 10000,
		},
		Server: ServerConfig{
			Addr:           ":5000",
			MaxUploadBytes: 10 << 20,
			RateLimit:      20,
			RateBurst:      40,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the default settings, overridden by the YAML file at path, if
// not empty, then by the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := Decode(bytes.NewReader(data), &cfg); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := FromEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode reads YAML settings from r into cfg. Unknown keys are errors.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// FromEnv overrides cfg with FEATSAT_* variables, as returned by getenv.
func FromEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = strings.ToLower(v)
		}
	}
	integer := func(name string, dst *int) {
		if v := getenv(name); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = i
		}
	}
	str("FEATSAT_SOLVER", &cfg.Solver.Backend)
	integer("FEATSAT_MAX_ITERATIONS", &cfg.Solver.MaxIterations)
	integer("FEATSAT_BDD_NODES", &cfg.Solver.BDDNodes)
	if v := getenv("FEATSAT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FEATSAT_TIMEOUT: %w", err))
		} else {
			cfg.Solver.Timeout = d
		}
	}
	if v := getenv("FEATSAT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv("FEATSAT_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("FEATSAT_RATE_LIMIT: %w", err))
		} else {
			cfg.Server.RateLimit = f
		}
	}
	if v := getenv("FEATSAT_TRACING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FEATSAT_TRACING: %w", err))
		} else {
			cfg.Server.Tracing = b
		}
	}
	str("FEATSAT_LOG_LEVEL", &cfg.Log.Level)
	str("FEATSAT_LOG_FORMAT", &cfg.Log.Format)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Validate checks all settings.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// level returns the slog level named by l.Level.
func (l LogConfig) level() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a logger writing on w according to l.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.level()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
