package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/cache"
	"github.com/hfern/tagtask/internal/logging"
	"github.com/hfern/tagtask/internal/notify"
	"github.com/hfern/tagtask/internal/store"
	"github.com/hfern/tagtask/internal/ui"
	"github.com/hfern/tagtask/internal/watcher"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "sync",
	Short:   "Serve a real-time change feed over WebSocket",
	Long: `Watch the task document and push change events to WebSocket clients.

External processes (CLI invocations, editors, agents) rewrite the
document via atomic rename; this command observes those rewrites,
refreshes the query cache, and broadcasts TASKS_UPDATED events on
ws://localhost:<port>/ws.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := logging.New("[serve] ", cfg.LogFile)

		port := servePort
		if port == 0 {
			port = cfg.ListenPort
		}

		server := notify.NewServer(&notify.ServerConfig{Port: port, Logger: logger})
		if err := server.Start(); err != nil {
			fatalf("%v", err)
		}
		defer server.Stop()

		registry := notify.NewRegistry(logger)
		registry.Register(server)

		onChange := func() {
			snap, err := store.Load(cfg.DocumentPath)
			if err != nil {
				logger.Printf("Warning: failed to re-load document: %v", err)
				return
			}
			refreshCache(cfg.CachePath, snap, logger)
			registry.Emit(notify.Event{
				ID:   notify.NewEventID(),
				Kind: notify.KindTasksUpdated,
				Path: cfg.DocumentPath,
			})
		}

		w, err := watcher.New(cfg.DocumentPath, onChange, &watcher.Config{Logger: logger})
		if err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("%s Change feed on ws://localhost%s/ws\n", ui.RenderAccent("•"), server.Addr())
		fmt.Printf("%s Watching %s\n", ui.RenderAccent("•"), cfg.DocumentPath)
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := w.Start(ctx); err != nil {
			fatalf("%v", err)
		}
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "WebSocket port (default: configured listen_port)")
	rootCmd.AddCommand(serveCmd)
}

func refreshCache(path string, snap *store.Snapshot, logger interface{ Printf(string, ...interface{}) }) {
	db, err := cache.Open(path)
	if err != nil {
		logger.Printf("Warning: cache not refreshed: %v", err)
		return
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		logger.Printf("Warning: cache not refreshed: %v", err)
		return
	}
	if err := db.Sync(snap.Doc); err != nil {
		logger.Printf("Warning: cache not refreshed: %v", err)
	}
}
