// Package main implements the strip chess analysis server: a RESTful API over
// the position model and the search engine with optional SQLite persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stripchess/internal/cli"
	"stripchess/internal/http"
	"stripchess/internal/processor"
	"stripchess/internal/service"
	"stripchess/internal/storage"

	"github.com/rs/zerolog"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[1:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, console logging)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		workers     = flag.Int("workers", processor.DefaultWorkers, "Analysis worker count")
		maxDepth    = flag.Int("max-depth", service.DefaultMaxDepth, "Maximum search depth accepted by the API")
		cacheSize   = flag.Int("cache-size", service.DefaultResultCacheSize, "Analysis result cache entries")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	log := newLogger(*dev, *logLevel)

	if *pidLock && *pidPath == "" {
		log.Fatal().Msg("-pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	// 1. Initialize Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Info().Str("path", *storagePath).Msg("initializing persistent storage")
		var err error
		store, err = storage.NewStore(*storagePath, *dev, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize storage")
		}
		if err := store.InitDB(); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
	} else {
		log.Info().Msg("persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Initialize the Service with optional storage
	svc, err := service.New(service.Config{
		Store:     store,
		CacheSize: *cacheSize,
		MaxDepth:  *maxDepth,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize service")
	}

	// 3. Initialize the Processor, injecting the service
	proc, err := processor.New(svc, *workers, log)
	if err != nil {
		svc.Close()
		log.Fatal().Err(err).Msg("failed to initialize processor")
	}

	// 4. Initialize the Fiber App, injecting processor and service
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		rate := 10
		if *dev {
			rate = 20
		}
		log.Info().
			Str("addr", "http://"+apiAddr).
			Str("version", "v1").
			Int("rate_limit_rps", rate).
			Int("workers", *workers).
			Int("max_depth", svc.MaxDepth()).
			Str("storage", svc.GetStorageHealth()).
			Msg("analysis API server starting")
		log.Info().Msgf("endpoints: http://%s/api/v1/positions/[moves|classify|apply|analyze], http://%s/api/v1/analyses", apiAddr, apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	// Drain analysis jobs before the store closes
	if err = proc.Close(); err != nil {
		log.Warn().Err(err).Msg("processor close error")
	}

	if err = svc.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close storage cleanly")
	}

	log.Info().Int64("searches", svc.Searches()).Msg("server exited")
}

func newLogger(dev bool, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if dev {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	} else {
		log = zerolog.New(os.Stderr)
	}
	log = log.Level(lvl).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
	return log
}
