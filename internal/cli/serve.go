package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/ethscan/internal/server"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the balance API with health and metrics endpoints",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if port > 0 {
		s.cfg.Server.Port = port
	}

	sources := make([]server.ProviderSource, len(s.providers))
	for i, p := range s.providers {
		sources[i] = p
	}
	monitor := server.NewMonitor(10*time.Second, sources...)
	srv := server.NewServer(s.cfg.Server.Port, s.caller, *s.options(), monitor)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		s.log.Info("Received signal, shutting down...", "signal", sig)
	case err := <-errCh:
		s.log.Error("Server failed", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		s.log.Error("Error during shutdown", "error", err)
		return err
	}
	return nil
}
