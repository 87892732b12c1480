package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/semstore-mcp/internal/embedder"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HF_TOKEN", "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "./semstore_data", cfg.DBPath)
	assert.Equal(t, "", cfg.EmbeddingEndpoint)
	assert.Equal(t, "", cfg.EmbeddingModel)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 10000, cfg.EmbeddingCacheSize)
	assert.Equal(t, 1, cfg.EmbeddingConcurrency)
	assert.Equal(t, embedder.DefaultHubURL, cfg.HubURL)
	assert.False(t, cfg.ShowVersion)
	assert.True(t, filepath.IsAbs(cfg.ModelCacheDir))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load([]string{
		"--db-path", "/tmp/db",
		"--embedding-endpoint", "http://localhost:8080",
		"--embedding-model", "m",
		"--api-key", "sk-flag",
		"--transport", "streamable-http",
		"--port", "4000",
		"--version",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/db", cfg.DBPath)
	assert.Equal(t, "http://localhost:8080", cfg.EmbeddingEndpoint)
	assert.Equal(t, "m", cfg.EmbeddingModel)
	assert.Equal(t, embedder.Secret("sk-flag"), cfg.APIKey)
	assert.Equal(t, TransportStreamableHTTP, cfg.Transport)
	assert.Equal(t, 4000, cfg.Port)
	assert.True(t, cfg.ShowVersion)
	assert.Equal(t, "0.0.0.0:4000", cfg.Addr())
	assert.Equal(t, filepath.Join("/tmp/db", DatabaseFileName), cfg.DatabaseFile())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SEMSTORE_TRANSPORT", "rest")
	t.Setenv("SEMSTORE_EMBEDDING_CACHE_SIZE", "0")
	t.Setenv("SEMSTORE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("HF_TOKEN", "hf-env")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, TransportREST, cfg.Transport)
	assert.Equal(t, 0, cfg.EmbeddingCacheSize)
	assert.Equal(t, "sk-env", cfg.APIKey.Reveal())
	assert.Equal(t, "hf-env", cfg.HubToken.Reveal())

	// Flags win over the environment
	cfg, err = Load([]string{"--transport", "stdio"})
	require.NoError(t, err)
	assert.Equal(t, TransportStdio, cfg.Transport)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 5000\nlog-level: debug\n"), 0o644))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := Load([]string{"--nope"})
	assert.Error(t, err)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load([]string{"--db-path", "~/data"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), cfg.DBPath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{DBPath: "d", Transport: TransportStdio, Port: 3000, EmbeddingConcurrency: 1}
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown transport", func(c *Config) { c.Transport = "grpc" }},
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"zero concurrency", func(c *Config) { c.EmbeddingConcurrency = 0 }},
		{"negative cache", func(c *Config) { c.EmbeddingCacheSize = -1 }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
	}

	require.NoError(t, valid().Validate())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestEmbedderConfig(t *testing.T) {
	cfg := &Config{
		EmbeddingEndpoint:    "http://e",
		EmbeddingModel:       "m",
		APIKey:               "k",
		ModelCacheDir:        "/c",
		HubURL:               "http://h",
		HubToken:             "t",
		EmbeddingCacheSize:   5,
		EmbeddingConcurrency: 2,
	}
	got := cfg.EmbedderConfig()
	assert.Equal(t, embedder.Config{
		Endpoint:    "http://e",
		Model:       "m",
		APIKey:      "k",
		HubURL:      "http://h",
		HubToken:    "t",
		CacheDir:    "/c",
		CacheSize:   5,
		Concurrency: 2,
	}, got)
}
