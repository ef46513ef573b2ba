package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/itchan-dev/blogfeed/frontend/internal/router"
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/spf13/cobra"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

var paths setup.Paths

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the feed page",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&paths.Templates, "templates", "frontend/templates", "path to page templates")
	serveCmd.Flags().StringVar(&paths.Static, "static", "frontend/static", "path to static files")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := setup.SetupDependencies(ctx, cfg, paths)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	defer deps.Close()

	server := &http.Server{
		Addr:         cfg.Public.ListenAddr,
		Handler:      router.New(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("starting page", "addr", server.Addr, "backend", cfg.Public.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down page")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
