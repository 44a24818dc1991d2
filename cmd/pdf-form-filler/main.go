package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-pdf-form-filler/internal/config"
	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/a3tai/mcp-pdf-form-filler/internal/httpapi"
	"github.com/a3tai/mcp-pdf-form-filler/internal/logging"
	"github.com/a3tai/mcp-pdf-form-filler/internal/mcp"
	"github.com/a3tai/mcp-pdf-form-filler/internal/pdf"
	"github.com/a3tai/mcp-pdf-form-filler/internal/store"
	"github.com/apex/log"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// logOutput keeps stdout free for the MCP protocol in stdio mode.
func logOutput(cfg *config.Config) io.Writer {
	if cfg.IsStdioMode() {
		return os.Stderr
	}
	return os.Stdout
}

// newService opens the database and wires the form-filling service
func newService(cfg *config.Config) (*filler.Service, func(), error) {
	db, err := store.Open(cfg.DatabasePath, cfg.IsDebug())
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	stores := store.New(db)
	service, err := filler.NewService(filler.Options{
		Entities:      stores.Entities,
		Templates:     stores.Templates,
		Mappings:      stores.Mappings,
		Extractor:     pdf.NewFieldExtractor(cfg.IsDebug()),
		Writer:        pdf.NewFormWriter(),
		MaxFileSize:   cfg.MaxFileSize,
		DataDirectory: cfg.DataDirectory,
	})
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return service, closeDB, nil
}

// runServerMode serves the HTTP API until a shutdown signal arrives
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *httpapi.Server) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("initiating graceful shutdown")
		cancel()
		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("server stopped successfully")
	return nil
}

func run() error {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, logOutput(cfg)); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if version != "dev" {
		cfg.Version = version
	}

	log.WithField("config", cfg.String()).Debug("starting")

	service, closeDB, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, httpapi.NewServer(service, cfg.Address()))
	}

	server, err := mcp.NewServer(cfg, service)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("exiting")
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Form Filler\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
