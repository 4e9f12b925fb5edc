package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealroom/internal/bidding"
	"dealroom/internal/handler"
	"dealroom/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only facilitator API",
	Long: `serve exposes the current session state over HTTP so a projector or
dashboard can follow along while the terminals drive the simulation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		gin.SetMode(gin.ReleaseMode)
		engine := gin.New()
		engine.Use(gin.Recovery())

		health := &handler.HealthHandler{DB: a.conn}
		health.Register(engine)

		sessions := &handler.SessionHandler{
			Finance: &session.Service{Repo: a.store, Logger: a.logger},
			Bidding: &bidding.Service{Repo: a.store, Logger: a.logger},
			Logger:  a.logger,
		}
		sessions.Register(engine)

		srv := &http.Server{
			Addr:    a.cfg.Server.HTTPAddr,
			Handler: engine,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("facilitator api listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
