package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osinthq/intake/app/api"
	"github.com/osinthq/intake/app/cfg"
	"github.com/osinthq/intake/app/database"
	"github.com/osinthq/intake/app/sources"
	"github.com/osinthq/intake/app/tasks"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if config.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Intake server", "version", config.Version)

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", config.DBPath, "schema_version", version, "dirty", dirty)

	tables, err := sources.LoadTables(config.RulesDir)
	if err != nil {
		slog.Error("Failed to load priority rule overrides", "dir", config.RulesDir, "error", err)
		os.Exit(1)
	}

	reg := sources.BuildRegistry(tables)
	upstreams := sources.Upstreams()
	slog.Info("Plugin registry built", "plugins", len(reg.IDs()), "upstreams", len(upstreams))

	sourceRepo := database.NewSourceRepository(db)
	itemRepo := database.NewItemRepository(db)

	registered := 0
	for _, upstream := range upstreams {
		if err := sourceRepo.UpsertSource(upstream.PluginID, upstream.Name, upstream.URL, upstream.Kind); err != nil {
			slog.Warn("Failed to register source", "plugin", upstream.PluginID, "error", err)
			continue
		}
		registered++
	}
	slog.Info("Sources registered", "registered", registered, "total", len(upstreams))

	httpClient := &http.Client{Timeout: 30 * time.Second}

	scheduler := tasks.NewScheduler(upstreams, reg, sourceRepo, itemRepo, httpClient)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", config.WorkerCount, "interval_seconds", config.SchedulerInterval)

	handler := api.NewHandler(reg, sourceRepo, itemRepo, scheduler, upstreams)
	server := api.NewServer(handler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
