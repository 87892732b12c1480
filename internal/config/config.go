// Package config loads runtime settings from flags, environment variables
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dshills/semstore-mcp/internal/embedder"
)

// Transports
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
	TransportREST           = "rest"
)

// EnvPrefix prefixes every environment variable, e.g. SEMSTORE_DB_PATH
const EnvPrefix = "SEMSTORE"

// DatabaseFileName is the SQLite file created inside DBPath
const DatabaseFileName = "semstore.db"

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every runtime setting
type Config struct {
	DBPath string `mapstructure:"db-path"`

	EmbeddingEndpoint    string          `mapstructure:"embedding-endpoint"`
	EmbeddingModel       string          `mapstructure:"embedding-model"`
	APIKey               embedder.Secret `mapstructure:"api-key"`
	EmbeddingCacheSize   int             `mapstructure:"embedding-cache-size"`
	EmbeddingConcurrency int             `mapstructure:"embedding-concurrency"`

	ModelCacheDir string          `mapstructure:"model-cache-dir"`
	HubURL        string          `mapstructure:"hub-url"`
	HubToken      embedder.Secret `mapstructure:"hub-token"`

	Transport string `mapstructure:"transport"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	ShowVersion bool `mapstructure:"version"`
}

// Load parses args (without the program name) and merges, from highest to
// lowest priority: flags, environment, config file, defaults.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("semstore", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a YAML, TOML or JSON config file")
	fs.String("db-path", "./semstore_data", "directory holding the database")
	fs.String("embedding-endpoint", "", "base URL of an OpenAI-compatible embeddings API; empty runs the model locally")
	fs.String("embedding-model", "", "embedding model id (remote default "+embedder.DefaultRemoteModel+", local default "+embedder.DefaultLocalModel+")")
	fs.String("api-key", "", "bearer token for the embeddings API (also OPENAI_API_KEY)")
	fs.Int("embedding-cache-size", 10000, "LRU embedding cache entries; 0 disables")
	fs.Int("embedding-concurrency", 1, "concurrent embedding calls; the local model always uses 1")
	fs.String("model-cache-dir", "~/.cache/semstore/models", "directory for downloaded model files")
	fs.String("hub-url", embedder.DefaultHubURL, "model hub base URL")
	fs.String("hub-token", "", "model hub token (also HF_TOKEN)")
	fs.String("transport", TransportStdio, "transport: stdio, streamable-http or rest")
	fs.String("host", "0.0.0.0", "listen host for HTTP transports")
	fs.Int("port", 3000, "listen port for HTTP transports")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
	fs.Bool("version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api-key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("hub-token", EnvPrefix+"_HUB_TOKEN", "HF_TOKEN"); err != nil {
		return nil, err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var err error
	if cfg.DBPath, err = expandHome(cfg.DBPath); err != nil {
		return nil, err
	}
	if cfg.ModelCacheDir, err = expandHome(cfg.ModelCacheDir); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportStreamableHTTP, TransportREST:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.EmbeddingConcurrency < 1 {
		return fmt.Errorf("%w: embedding-concurrency must be >= 1, got %d", ErrInvalidConfig, c.EmbeddingConcurrency)
	}
	if c.EmbeddingCacheSize < 0 {
		return fmt.Errorf("%w: embedding-cache-size must be >= 0, got %d", ErrInvalidConfig, c.EmbeddingCacheSize)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db-path is required", ErrInvalidConfig)
	}
	return nil
}

// Addr returns host:port for HTTP transports
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseFile returns the SQLite file path inside DBPath
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DBPath, DatabaseFileName)
}

// EmbedderConfig maps the settings onto the embedding engine
func (c *Config) EmbedderConfig() embedder.Config {
	return embedder.Config{
		Endpoint:    c.EmbeddingEndpoint,
		Model:       c.EmbeddingModel,
		APIKey:      c.APIKey,
		HubURL:      c.HubURL,
		HubToken:    c.HubToken,
		CacheDir:    c.ModelCacheDir,
		CacheSize:   c.EmbeddingCacheSize,
		Concurrency: c.EmbeddingConcurrency,
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
