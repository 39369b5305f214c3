package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/api"
	"github.com/dgallion1/linkorg/internal/pipeline"
)

func newServeCmd(c *cli) *cobra.Command {
	var noScan bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background scanner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.level()}))
			cfg := c.cfg

			lib, err := c.openLibrary()
			if err != nil {
				return err
			}
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			defer idx.Close()

			ctx, cancel := context.WithCancel(cmdContext(cmd))
			defer cancel()

			// Initialize pipeline.
			orch := pipeline.NewOrchestrator(cfg, lib, idx, log.With("component", "pipeline"))
			orch.Start(ctx)
			if !noScan {
				if _, err := orch.Submit(false, "startup"); err != nil {
					log.Warn("startup scan skipped", "error", err)
				}
			}

			// Initialize HTTP server.
			srv := api.NewServer(orch, idx, lib, log.With("component", "api"), cfg)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				select {
				case <-sigCh:
				case <-ctx.Done():
				}
				log.Info("shutting down...")

				orch.Stop()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting linkorg", "port", cfg.Port, "notes_dir", cfg.NotesDir, "auth", cfg.APIKey != "")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "skip the scan normally queued at startup")
	return cmd
}
