package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/infrastructure/web"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand(container *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local caption web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = container.Config.Server.Addr
			}
			return serve(cmd, container, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func serve(cmd *cobra.Command, container *app.Container, addr string) error {
	if container.Client == nil {
		return errors.New(ErrClientUnavailable)
	}

	srv := &web.Server{
		Session:  container.NewSession(),
		Client:   container.Client,
		Logger:   container.Logger.Zerolog(),
		MaxBytes: container.Config.Upload.MaxBytes,
	}
	if container.Config.Server.Metrics && container.Metrics != nil {
		srv.Metrics = container.Metrics.Handler()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (API %s)\n", listener.Addr(), container.Config.API.BaseURL)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		srv.Session.Cancel()
		srv.Session.Wait()
		return nil
	}
}
