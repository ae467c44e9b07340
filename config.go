package pgcopy

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	EnvBufferSize = "PGCOPY_BUFFER_SIZE"
	EnvStrict     = "PGCOPY_STRICT"
	EnvLogLevel   = "PGCOPY_LOG_LEVEL"
)

// Config is the file form of the encoder options.
//
//	buffer_size = 65536
//	strict = true
//	log_level = "debug"
type Config struct {
	BufferSize int    `toml:"buffer_size"`
	Strict     bool   `toml:"strict"`
	LogLevel   string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{LogLevel: "warn"}
}

// LoadConfig decodes TOML from r on top of DefaultConfig, then applies
// environment overrides.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("pgcopy: decode config: %w", err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv(EnvBufferSize)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("pgcopy: invalid %s %q", EnvBufferSize, raw)
		}
		cfg.BufferSize = n
	}
	if raw := strings.TrimSpace(os.Getenv(EnvStrict)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("pgcopy: invalid %s %q", EnvStrict, raw)
		}
		cfg.Strict = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		cfg.LogLevel = raw
	}
	return nil
}

// Options turns the config into encoder options, logging to logOut.
func (c Config) Options(logOut io.Writer) []Option {
	opts := []Option{WithBufferSize(c.BufferSize), WithStrict(c.Strict)}
	if level, ok := ParseLevel(c.LogLevel); ok && logOut != nil && level != zerolog.Disabled {
		opts = append(opts, WithLogger(NewConsoleLogger(logOut, level)))
	}
	return opts
}
