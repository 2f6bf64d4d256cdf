package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akashgupta157/tasktracker/internal/config"
	"github.com/akashgupta157/tasktracker/internal/server"
	"github.com/akashgupta157/tasktracker/internal/store"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "tasktrackerd",
		Short:        "Collaborative Kanban board server",
		Long:         "tasktrackerd serves boards, lists and cards over a JSON REST API,\npersisting to SQLite with optional S3 board snapshots.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yml", "path to YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		cfg = config.Default()
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenSQLite(ctx, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	var snaps server.Snapshotter
	if cfg.Snapshots != nil {
		ss, err := store.NewSnapshotStore(*cfg.Snapshots)
		if err != nil {
			return err
		}
		if err := ss.EnsureBucket(ctx); err != nil {
			log.Warn("snapshot bucket check failed", "error", err)
		}
		snaps = ss
	}

	srv := server.New(log, st, snaps, nil)
	httpSrv := &http.Server{Addr: cfg.HTTP.Addr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	log.Info("tasktracker server starting", "addr", cfg.HTTP.Addr, "db", cfg.Storage.Path)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("server stopped")
	}
	return nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
