// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem the engine owns (data layout, query engine, semantic
// model, result cache, logging, metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Search   SearchConfig   `yaml:"search"`
	Semantic SemanticConfig `yaml:"semantic"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds the demonstration HTTP server's settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// EngineConfig controls persistence layout and indexing fixed constants.
type EngineConfig struct {
	DataDir           string `yaml:"dataDir"`
	NumBarrels        int    `yaml:"numBarrels"`
	MinWordLength     int    `yaml:"minWordLength"`
	IngestQueueSize   int    `yaml:"ingestQueueSize"`
	AutocompleteLimit int    `yaml:"autocompleteLimit"`
}

// SearchConfig controls query engine behavior. FIELD_WEIGHTS is not
// configurable here — it is a compile-time constant (query.FieldWeights)
// per SPEC_FULL.md §6, not an operator-tunable value.
type SearchConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
	MaxSpan      int `yaml:"maxSpan"`
}

// SemanticConfig controls word-vector loading.
type SemanticConfig struct {
	VectorsPath         string  `yaml:"vectorsPath"`
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	MaxSynonyms         int     `yaml:"maxSynonyms"`
}

// RedisConfig holds Redis connection and query-result-cache parameters.
// Redis is optional: a zero-value Addr disables the result cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment
// variable overrides, returning a Config populated with defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with the fixed defaults from SPEC_FULL.md §6.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Engine: EngineConfig{
			DataDir:           "./data",
			NumBarrels:        64,
			MinWordLength:     3,
			IngestQueueSize:   64,
			AutocompleteLimit: 10,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			MaxSpan:      500,
		},
		Semantic: SemanticConfig{
			VectorsPath:         "",
			SimilarityThreshold: 0.65,
			MaxSynonyms:         3,
		},
		Redis: RedisConfig{
			Addr:     "",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SS_ENGINE_DATA_DIR"); v != "" {
		cfg.Engine.DataDir = v
	}
	if v := os.Getenv("SS_ENGINE_NUM_BARRELS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.NumBarrels = n
		}
	}
	if v := os.Getenv("SS_SEMANTIC_VECTORS_PATH"); v != "" {
		cfg.Semantic.VectorsPath = v
	}
	if v := os.Getenv("SS_SEMANTIC_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Semantic.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("SS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
