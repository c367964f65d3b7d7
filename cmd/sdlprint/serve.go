package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/sdlprint/handler"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the printer over HTTP",
		Long:  "Run an HTTP server with print, upload and live WebSocket endpoints plus Prometheus metrics.",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Int("cache-size", 256, "Number of print results kept in the cache")
	serveCmd.Flags().Int64("max-body", 8<<20, "Largest request body or WebSocket message in bytes")

	_ = a.v.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("serve.cache_size", serveCmd.Flags().Lookup("cache-size"))
	_ = a.v.BindPFlag("serve.max_body", serveCmd.Flags().Lookup("max-body"))
	return serveCmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	addr := a.v.GetString("serve.addr")
	server := &http.Server{
		Addr: addr,
		Handler: handler.NewServer(handler.Config{
			Options:      a.printOptions(),
			CacheSize:    a.v.GetInt("serve.cache_size"),
			Logger:       a.log,
			MaxBodyBytes: a.v.GetInt64("serve.max_body"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.WithField("addr", addr).Info("print server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	a.log.Info("shutting down print server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
