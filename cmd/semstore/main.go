package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/semstore-mcp/internal/api"
	"github.com/dshills/semstore-mcp/internal/config"
	"github.com/dshills/semstore-mcp/internal/embedder"
	"github.com/dshills/semstore-mcp/internal/indexer"
	"github.com/dshills/semstore-mcp/internal/logging"
	"github.com/dshills/semstore-mcp/internal/mcp"
	"github.com/dshills/semstore-mcp/internal/searcher"
	"github.com/dshills/semstore-mcp/internal/storage"
	"github.com/dshills/semstore-mcp/internal/vectordb"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "semstore: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("Semstore MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "semstore: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr; stdout is reserved for the MCP stdio protocol
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "semstore: init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("semstore starting",
		zap.String("version", version),
		zap.String("build_mode", storage.BuildMode),
		zap.String("driver", storage.DriverName),
		zap.String("transport", cfg.Transport),
		zap.Any("config", cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DBPath, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.DatabaseFile())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	emb, err := embedder.New(ctx, cfg.EmbedderConfig(), logger)
	if err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()
	logger.Info("embedder ready", zap.String("provider", emb.Provider()), zap.String("model", emb.Model()))

	db := vectordb.New(store, logger)
	idx := indexer.New(db, emb, logger)
	srch := searcher.NewSearcher(db, emb, logger)

	g, gctx := errgroup.WithContext(ctx)
	switch cfg.Transport {
	case config.TransportStdio:
		g.Go(func() error { return mcp.NewServer(idx, srch, logger).ServeStdio(gctx) })
	case config.TransportStreamableHTTP:
		g.Go(func() error { return mcp.NewServer(idx, srch, logger).ServeHTTP(gctx, cfg.Addr()) })
	case config.TransportREST:
		g.Go(func() error { return api.NewServer(idx, srch, logger).Serve(gctx, cfg.Addr()) })
	}

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("shutdown signal received")
	}
	return err
}
