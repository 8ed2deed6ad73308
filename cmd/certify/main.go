package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironndt/certify/internal/api"
	"github.com/ironndt/certify/internal/artifacts"
	"github.com/ironndt/certify/internal/config"
	"github.com/ironndt/certify/internal/logging"
	"github.com/ironndt/certify/internal/store"
	"github.com/ironndt/certify/pkg/bundle"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "certify",
	Short:   "Certify - inspection report and certification bundle service",
	Long:    `Certify manages work orders and inspection reports, renders them as PDF documents and compiles certification bundles.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Certify %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer() {
	// Baseline logger for early startup logs.
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "certify",
	})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Re-initialize logging with configuration-driven settings.
	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "certify",
	})

	log.Info().
		Str("version", Version).
		Str("data_dir", cfg.DataDir).
		Msg("Starting Certify")

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer st.Close()

	var storage *artifacts.Storage
	if cfg.ArtifactsEnabled {
		storage, err = artifacts.NewStorage(cfg.ArtifactsDir, cfg.ArtifactsBaseURL, st)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.ArtifactsDir).Msg("Failed to prepare artifacts storage")
		}
	}

	var sink bundle.ArtifactSink
	if storage != nil {
		sink = storage
	}
	merger := bundle.NewMerger(st, st, sink, cfg.LogoPath)

	router := api.NewRouter(cfg, st, merger)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // bundle compiles can be slow
		IdleTimeout:  120 * time.Second,
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())
	defer metricsCancel()
	if cfg.MetricsEnabled {
		startMetricsServer(metricsCtx, fmt.Sprintf("%s:%d", cfg.Host, cfg.MetricsPort))
	}

	watcher, err := config.NewWatcher(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create config watcher")
	} else {
		watcher.OnReload(func() {
			logging.Init(logging.Config{
				Format:    cfg.LogFormat,
				Level:     cfg.LogLevel,
				Component: "certify",
			})
		})
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start config watcher")
		}
		defer watcher.Stop()
	}

	go func() {
		log.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	reloadChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	signal.Notify(reloadChan, syscall.SIGHUP)

	for {
		select {
		case <-reloadChan:
			log.Info().Msg("Received SIGHUP, reloading configuration...")
			if watcher != nil {
				watcher.Reload()
			} else {
				cfg.Reload()
			}
		case <-sigChan:
			log.Info().Msg("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Server shutdown error")
			}
			log.Info().Msg("Server stopped")
			return
		}
	}
}
