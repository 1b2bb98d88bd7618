package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SHAREDLIST_"

// Config defines server and client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	DB        DBConfig        `yaml:"db" toml:"db"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Client    ClientConfig    `yaml:"client" toml:"client"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	Path  string `yaml:"path" toml:"path"`
}

// TransportConfig selects how the MCP surface is exposed: "http" mounts it
// next to the JSON-RPC API, "stdio" serves it on stdin/stdout.
type TransportConfig struct {
	Mode string `yaml:"mode" toml:"mode"`
}

// ClientConfig configures the participant CLI.
type ClientConfig struct {
	ServerURL      string   `yaml:"server_url" toml:"server_url"`
	Participant    string   `yaml:"participant" toml:"participant"`
	GracePeriod    Duration `yaml:"grace_period" toml:"grace_period"`
	FeedWindow     int      `yaml:"feed_window" toml:"feed_window"`
	RequestTimeout Duration `yaml:"request_timeout" toml:"request_timeout"`
}

// Duration is a time.Duration written as "5s" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "sharedlist.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Client: ClientConfig{
			ServerURL:      "http://localhost:8080",
			GracePeriod:    Duration{5 * time.Second},
			FeedWindow:     20,
			RequestTimeout: Duration{10 * time.Second},
		},
	}
}

// Load reads configuration from an optional YAML or TOML file and
// environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects settings the binaries cannot run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q: want http or stdio", c.Transport.Mode)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Client.GracePeriod.Duration <= 0 {
		return fmt.Errorf("grace period must be positive")
	}
	if c.Client.FeedWindow < 1 {
		return fmt.Errorf("feed window must be at least 1")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	setString("SERVER_HOST", &cfg.Server.Host)
	setString("DB_PATH", &cfg.DB.Path)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_PATH", &cfg.Log.Path)
	setString("TRANSPORT", &cfg.Transport.Mode)
	setString("SERVER_URL", &cfg.Client.ServerURL)
	setString("PARTICIPANT", &cfg.Client.Participant)

	if portStr := os.Getenv(EnvPrefix + "SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", EnvPrefix, err)
		}
		cfg.Server.Port = port
	}
	if windowStr := os.Getenv(EnvPrefix + "FEED_WINDOW"); windowStr != "" {
		window, err := strconv.Atoi(windowStr)
		if err != nil {
			return fmt.Errorf("invalid %sFEED_WINDOW: %w", EnvPrefix, err)
		}
		cfg.Client.FeedWindow = window
	}
	if v := os.Getenv(EnvPrefix + "GRACE_PERIOD"); v != "" {
		if err := cfg.Client.GracePeriod.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid %sGRACE_PERIOD: %w", EnvPrefix, err)
		}
	}
	if v := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); v != "" {
		if err := cfg.Client.RequestTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid %sREQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
	}
	return nil
}
