package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/marmos91/notefs/internal/logger"
	"github.com/marmos91/notefs/pkg/app"
	"github.com/marmos91/notefs/pkg/cell"
	"github.com/marmos91/notefs/pkg/config"
	"github.com/marmos91/notefs/pkg/content"
	"github.com/marmos91/notefs/pkg/executor"
	"github.com/marmos91/notefs/pkg/metrics"
)

// pollInterval paces the foreground polling loop. Completions are applied on
// the next tick after they land, so this bounds result latency, not I/O.
const pollInterval = 10 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/notefs/config.yaml)")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	basePath := flag.String("base-path", "", "Note tree root override")
	workers := flag.Int("workers", -1, "Worker pool size override (0 = one per CPU)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// CLI flags take precedence over file and environment.
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *basePath != "" {
		cfg.Storage.BasePath = *basePath
	}
	if *workers >= 0 {
		cfg.Executor.Workers = *workers
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	fmt.Println("notefs - note tree inspector")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Note tree root: %s", cfg.Storage.BasePath)
	logger.Info("Content store: %s", cfg.Content.Type)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics collection enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := config.CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}

	pool := executor.New(cfg.Executor.Workers, metrics.NewExecutorMetrics())
	defer pool.Shutdown()

	application, err := app.New(app.Config{
		BasePath:       cfg.Storage.BasePath,
		ScratchPadPath: cfg.Storage.ScratchPadPath(),
		Autosave:       cfg.Storage.Autosave,
	}, store, pool)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	application.SetMetrics(metrics.NewCacheMetrics())

	// Kick off the initial loads; results arrive through Poll.
	application.ReadDirInBackground(application.BasePath())
	application.ReadNoteInBackground(application.ScratchPadPath())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for application.HasPendingWork() {
		select {
		case <-sigChan:
			logger.Info("Shutdown signal received")
			return
		case <-ticker.C:
			application.Poll()
		}
	}

	for _, err := range application.DrainErrors() {
		logger.Warn("%v", err)
	}

	printTree(application)
}

// printTree renders the base directory listing and the scratch pad state.
func printTree(application *app.App) {
	dir, ok := application.BaseDir()
	if !ok {
		if c, exists := application.DirCell(application.BasePath()); exists && c.State() == cell.StateReadError {
			logger.Error("Could not list %s: %v", application.BasePath(), c.Err())
		}
		return
	}

	names := make([]string, 0, len(dir.Data.Entries))
	for name := range dir.Data.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%s:\n", application.BasePath())
	for _, name := range names {
		entry := dir.Data.Entries[name]
		marker := " "
		if entry.Kind == content.EntryDir {
			marker = "/"
		}
		fmt.Printf("  %s%s\n", entry.Name, marker)
	}

	if pad, ok := application.ScratchPad(); ok {
		fmt.Printf("scratch pad: %q (%d bytes)\n", pad.Data.Title, len(pad.Data.Text))
	}
}
