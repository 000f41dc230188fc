// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config holds configuration knobs for the HTTP server, the store and logging.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	StoreBackend string        `yaml:"store_backend"`
	StoreTimeout time.Duration `yaml:"store_timeout"`

	MongoURI            string        `yaml:"mongo_uri"`
	MongoDatabase       string        `yaml:"mongo_database"`
	MongoConnectTimeout time.Duration `yaml:"mongo_connect_timeout"`

	LogMode  string `yaml:"log_mode"`
	LogLevel string `yaml:"log_level"`

	CORSOrigins []string `yaml:"cors_origins"`
	GinMode     string   `yaml:"gin_mode"`
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, def time.Duration) time.Duration {
	ms := atoienv(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, def time.Duration) time.Duration {
	sec := atoienv(key, -1)
	if sec < 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}

func listenv(key string, def []string) []string {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:            ":8080",
		ShutdownTimeout:     15 * time.Second,
		StoreBackend:        BackendMemory,
		StoreTimeout:        5 * time.Second,
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "production_dashboard",
		MongoConnectTimeout: 10 * time.Second,
		LogMode:             "prod",
		LogLevel:            "info",
		CORSOrigins:         []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		GinMode:             "release",
	}
}

// applyEnv overrides c with any environment variables that are set.
func (c *Config) applyEnv() {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.ShutdownTimeout = durenvs("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.StoreBackend = strings.ToLower(getenv("STORE_BACKEND", c.StoreBackend))
	c.StoreTimeout = durenvms("STORE_TIMEOUT_MS", c.StoreTimeout)
	c.MongoURI = getenv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getenv("MONGO_DATABASE", c.MongoDatabase)
	c.MongoConnectTimeout = durenvms("MONGO_CONNECT_TIMEOUT_MS", c.MongoConnectTimeout)
	c.LogMode = getenv("LOG_MODE", c.LogMode)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.CORSOrigins = listenv("CORS_ORIGINS", c.CORSOrigins)
	c.GinMode = getenv("GIN_MODE", c.GinMode)
}

// Validate reports configuration values the service cannot run with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.StoreTimeout <= 0 {
		return errors.New("store timeout must be positive")
	}
	if c.StoreBackend == BackendMongo && (c.MongoURI == "" || c.MongoDatabase == "") {
		return errors.New("mongo backend needs mongo_uri and mongo_database")
	}
	return nil
}

// Load collects configuration from environment with defaults.
func Load() Config {
	c := Default()
	c.applyEnv()
	return c
}

// LoadFile reads a YAML file over the defaults, then applies environment
// overrides. An empty path or a missing file yields Load().
func LoadFile(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
