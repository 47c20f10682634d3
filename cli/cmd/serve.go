package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BDNK1/sflowg-marketplace/runtime"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the node endpoints over HTTP",
	Long: `Serve the node endpoints over HTTP:

  GET  /nodes                list node descriptions
  GET  /nodes/:name          describe one node
  POST /nodes/:name/execute  run a node over the posted items`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		addr := s.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		if s.cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		g := gin.New()
		g.Use(gin.Recovery())
		runtime.NewHttpHandler(s.app, g)

		server := &http.Server{Addr: addr, Handler: g}
		errCh := make(chan error, 1)
		go func() {
			s.logger.InfoContext(ctx, "HTTP server listening", "addr", addr)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
