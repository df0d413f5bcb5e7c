package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/limaJavier/courseplan/internal/logger"
	"github.com/limaJavier/courseplan/internal/server"
	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/planner"
	"github.com/limaJavier/courseplan/pkg/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planner over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "listen address (default :8080)")
	flags.Bool("watch", false, "reload the catalog whenever its file changes")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("watch", flags.Lookup("watch"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//** Catalog
	catalogs := catalog.NewStore()
	snapshot, err := catalogs.Reload(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("cannot load catalog: %w", err)
	}
	logger.Info().Str("source", snapshot.Source).Uint64("version", snapshot.Version).Int("courses", len(snapshot.Catalog)).Msg("catalog loaded")

	if cfg.Watch {
		watcher, err := catalog.NewWatcher(cfg.Catalog, catalogs, 0)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		reloads := logger.With("source", watcher.File)
		go func() {
			for event := range watcher.Reloads {
				if event.Err != nil {
					reloads.Warn().Err(event.Err).Msg("catalog reload failed; keeping previous version")
					continue
				}
				reloads.Info().Uint64("version", event.Snapshot.Version).Int("courses", len(event.Snapshot.Catalog)).Msg("catalog reloaded")
			}
		}()
	}

	//** Students
	students, err := store.NewSQLiteStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer students.Close()

	options := planner.Options{Solver: newSolver(cfg), Timeout: cfg.Timeout}
	logger.Info().Str("addr", cfg.Server.Addr).Str("solver", cfg.Solver).Bool("watch", cfg.Watch).Msg("listening")
	return server.New(catalogs, students, options).Run(ctx, cfg.Server.Addr)
}
