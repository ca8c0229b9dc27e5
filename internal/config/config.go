// Package config loads service settings from an optional YAML file and the
// process environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Solver   SolverConfig   `yaml:"solver"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	// MaxBodyBytes caps the JSON body accepted by POST /optimizations.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type SolverConfig struct {
	Workers      int  `yaml:"workers"`
	CacheEdges   bool `yaml:"cache_edges"`
	ProgressStep int  `yaml:"progress_step"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	SeedPath string `yaml:"seed_path"`
}

type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
		Solver: SolverConfig{
			Workers:      4,
			CacheEdges:   true,
			ProgressStep: 10,
		},
		Database: DatabaseConfig{SeedPath: "data/catalog.json"},
		Redis:    RedisConfig{Prefix: "optimizer"},
		Metrics:  MetricsConfig{Namespace: "route_optimizer"},
	}
}

// Load returns Default overlaid with the YAML file at path (if path is non-empty
// and the file exists) and then with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = Get("PORT", c.Server.Port)
	c.Database.URL = Get("DATABASE_URL", c.Database.URL)
	c.Database.SeedPath = Get("SEED_PATH", c.Database.SeedPath)
	c.Redis.URL = Get("REDIS_URL", c.Redis.URL)
	c.Redis.Prefix = Get("REDIS_PREFIX", c.Redis.Prefix)
	c.Metrics.Namespace = Get("METRICS_NAMESPACE", c.Metrics.Namespace)

	if v := Get("SOLVER_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SOLVER_WORKERS=%q: %w", v, err)
		}
		c.Solver.Workers = n
	}
	if v := Get("SOLVER_CACHE_EDGES", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: SOLVER_CACHE_EDGES=%q: %w", v, err)
		}
		c.Solver.CacheEdges = b
	}
	if v := Get("SERVER_WRITE_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SERVER_WRITE_TIMEOUT=%q: %w", v, err)
		}
		c.Server.WriteTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("config: server.port is required")
	}
	if c.Solver.Workers < 1 || c.Solver.Workers > 256 {
		return fmt.Errorf("config: solver.workers must be between 1 and 256, got %d", c.Solver.Workers)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// Get returns the trimmed value of the environment variable key, or fallback
// when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
