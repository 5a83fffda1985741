// =============================================================================
// FRSC Operations E-Dashboard - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   edash serve [--addr :8080]
//
// The server runs until SIGINT or SIGTERM. On shutdown it stops accepting
// connections, waits for pending online saves and closes the store.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/frsc-ops/edashboard/internal/server"
	"github.com/frsc-ops/edashboard/internal/session"
)

// shutdownTimeout bounds how long open requests may take after a signal.
const shutdownTimeout = 10 * time.Second

// listenAddr overrides listen_addr from the configuration.
var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	Long: `Start the dashboard HTTP API. Sign in with the configured credentials
(POST /api/signin) to receive the session cookie required by every other
route.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(
		&listenAddr,
		"addr",
		"",
		"Address to listen on (overrides listen_addr)",
	)
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, kv, err := openDashboard(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()
	defer d.Flush()

	addr := mainConfig.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	sessions := session.NewManager(session.Authenticator{
		Username: mainConfig.Auth.Username,
		Password: mainConfig.Auth.Password,
	})
	srv := server.New(d, sessions, logger.Named("http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", zap.Int("sessions", sessions.Active()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
