// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// retrieval pipeline and for every optional collaborator (Redis, Postgres,
// Kafka, metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Sinks     SinksConfig     `yaml:"sinks"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// RetrievalConfig describes the document collection, the index snapshot and
// how queries are scored and reported.
type RetrievalConfig struct {
	DocsDir     string  `yaml:"docsDir"`
	IndexFile   string  `yaml:"indexFile"`
	QueryFile   string  `yaml:"queryFile"`
	OutputDir   string  `yaml:"outputDir"`
	SystemLabel string  `yaml:"systemLabel"`
	IDF         string  `yaml:"idf"`
	Weighting   string  `yaml:"weighting"`
	K1          float64 `yaml:"k1"`
	B           float64 `yaml:"b"`
	Limit       int     `yaml:"limit"`
	Workers     int     `yaml:"workers"`
	WriteIDMap  bool    `yaml:"writeIdMap"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	ResultsTopic string   `yaml:"resultsTopic"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// SinksConfig toggles the destinations ranked results are written to.
type SinksConfig struct {
	File     bool `yaml:"file"`
	Postgres bool `yaml:"postgres"`
	Kafka    bool `yaml:"kafka"`
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

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := Default()
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects option values the retrieval pipeline cannot honour.
func (c *Config) Validate() error {
	switch c.Retrieval.IDF {
	case "inverted", "classic", "okapi":
	default:
		return fmt.Errorf("invalid retrieval.idf %q: want inverted, classic or okapi", c.Retrieval.IDF)
	}
	switch c.Retrieval.Weighting {
	case "product", "bm25":
	default:
		return fmt.Errorf("invalid retrieval.weighting %q: want product or bm25", c.Retrieval.Weighting)
	}
	if c.Retrieval.Limit < 0 {
		return fmt.Errorf("invalid retrieval.limit %d: must not be negative", c.Retrieval.Limit)
	}
	if strings.ContainsAny(c.Retrieval.SystemLabel, `/\ `) || c.Retrieval.SystemLabel == "" {
		return fmt.Errorf("invalid retrieval.systemLabel %q", c.Retrieval.SystemLabel)
	}
	return nil
}

// Default returns a Config with defaults for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Retrieval: RetrievalConfig{
			DocsDir:     "data/corpus",
			IndexFile:   "data/unary_index.json",
			QueryFile:   "data/queries.txt",
			OutputDir:   "results",
			SystemLabel: "BM25",
			IDF:         "inverted",
			Weighting:   "product",
			K1:          1.2,
			B:           0.75,
			Workers:     4,
			WriteIDMap:  true,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "retrieval",
			User:            "retrieval",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:      []string{"localhost:9092"},
			ResultsTopic: "retrieval-results",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Sinks: SinksConfig{
			File: true,
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

// applyEnvOverrides reads RS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RS_DOCS_DIR"); v != "" {
		cfg.Retrieval.DocsDir = v
	}
	if v := os.Getenv("RS_INDEX_FILE"); v != "" {
		cfg.Retrieval.IndexFile = v
	}
	if v := os.Getenv("RS_QUERY_FILE"); v != "" {
		cfg.Retrieval.QueryFile = v
	}
	if v := os.Getenv("RS_OUTPUT_DIR"); v != "" {
		cfg.Retrieval.OutputDir = v
	}
	if v := os.Getenv("RS_SYSTEM_LABEL"); v != "" {
		cfg.Retrieval.SystemLabel = v
	}
	if v := os.Getenv("RS_IDF"); v != "" {
		cfg.Retrieval.IDF = v
	}
	if v := os.Getenv("RS_WEIGHTING"); v != "" {
		cfg.Retrieval.Weighting = v
	}
	if v := os.Getenv("RS_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.Limit = limit
		}
	}
	if v := os.Getenv("RS_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.Workers = workers
		}
	}
	if v := os.Getenv("RS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("RS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("RS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("RS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("RS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("RS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("RS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("RS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
