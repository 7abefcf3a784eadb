// Package config loads container and process settings from the environment
// and from dotenv files.
//
// Variables set in the process environment take precedence over values read
// from files. Recognized variables:
//
//	INJECTOR_LOG_LEVEL       debug, info, warn or error (default info)
//	INJECTOR_LOG_FORMAT      text or json (default text)
//	INJECTOR_REPLACE_POLICY  silent or unregister (default silent)
//	INJECTOR_MAX_DEPTH       limit on nested resolutions (default 100)
//	INJECTOR_ADDR            listen address for servers (default :8080)
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fcagreatgoals/injector"
)

const (
	EnvLogLevel      = "INJECTOR_LOG_LEVEL"
	EnvLogFormat     = "INJECTOR_LOG_FORMAT"
	EnvReplacePolicy = "INJECTOR_REPLACE_POLICY"
	EnvMaxDepth      = "INJECTOR_MAX_DEPTH"
	EnvAddr          = "INJECTOR_ADDR"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the settings read by Load.
type Config struct {
	LogLevel      slog.Level
	LogFormat     string
	ReplacePolicy injector.ReplacePolicy
	MaxDepth      int
	Addr          string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel:      slog.LevelInfo,
		LogFormat:     FormatText,
		ReplacePolicy: injector.ReplaceSilently,
		MaxDepth:      injector.DefaultMaxDepth,
		Addr:          ":8080",
	}
}

// Error reports an invalid setting.
type Error struct {
	Var   string
	Value string
	Cause error
}

func (e Error) Error() string {
	return fmt.Sprintf("config: invalid %s %q: %v", e.Var, e.Value, e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}

// Load reads the given dotenv files, then the process environment. Without
// files it reads .env from the working directory if it exists.
func Load(files ...string) (*Config, error) {
	values := map[string]string{}

	if len(files) == 0 {
		env, err := godotenv.Read(".env")
		switch {
		case err == nil:
			values = env
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("config: read .env: %w", err)
		}
	} else {
		env, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", strings.Join(files, ", "), err)
		}
		values = env
	}

	return parse(func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := values[name]
		return v, ok
	})
}

// Parse reads settings from dotenv formatted input only.
func Parse(r io.Reader) (*Config, error) {
	values, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return parse(func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	})
}

func parse(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, Error{Var: EnvLogLevel, Value: v, Cause: err}
		}
	}

	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		switch f := strings.ToLower(v); f {
		case FormatText, FormatJSON:
			cfg.LogFormat = f
		default:
			return nil, Error{Var: EnvLogFormat, Value: v, Cause: errors.New("must be text or json")}
		}
	}

	if v, ok := lookup(EnvReplacePolicy); ok {
		if err := cfg.ReplacePolicy.UnmarshalText([]byte(v)); err != nil {
			return nil, Error{Var: EnvReplacePolicy, Value: v, Cause: err}
		}
	}

	if v, ok := lookup(EnvMaxDepth); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, Error{Var: EnvMaxDepth, Value: v, Cause: err}
		}
		if n < 1 {
			return nil, Error{Var: EnvMaxDepth, Value: v, Cause: errors.New("must be positive")}
		}
		cfg.MaxDepth = n
	}

	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Addr = v
	}

	return cfg, nil
}

// Logger builds a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ContainerOptions returns the container options described by c, logging
// to w.
func (c *Config) ContainerOptions(w io.Writer) []injector.Option {
	return []injector.Option{
		injector.WithLogger(c.Logger(w)),
		injector.WithReplacePolicy(c.ReplacePolicy),
		injector.WithMaxDepth(c.MaxDepth),
	}
}
