package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ledgerbot/internal/bot"
	httpapi "ledgerbot/internal/http"
	"ledgerbot/internal/session"
	"ledgerbot/internal/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Long: `Start the bot which provides:
- Telegram long polling with per-user conversations
- Optional admin HTTP API (http.enabled)`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	api, err := telegram.Connect(a.cfg.Telegram.Token, a.cfg.Telegram.Debug)
	if err != nil {
		return err
	}
	a.logger.WithField("bot", api.Self.UserName).Info("authorized on telegram")

	gateway := telegram.NewGateway(api)
	if err := gateway.SetCommands(bot.Commands()); err != nil {
		a.logger.WithError(err).Warn("set bot commands failed")
	}
	b := bot.New(bot.Services{
		Clients:  a.clients,
		Products: a.products,
		Orders:   a.orders,
		Payments: a.payments,
	}, session.NewMemoryStore(a.cfg.Session.TTL), gateway, a.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var httpServer *http.Server
	if a.cfg.HTTP.Enabled {
		srv := httpapi.NewServer(httpapi.Services{
			Products:  a.products,
			Clients:   a.clients,
			Orders:    a.orders,
			Payments:  a.payments,
			Announcer: b,
		}, a.logger)
		httpServer = &http.Server{
			Addr:    a.cfg.HTTP.Addr,
			Handler: srv.Engine(),
		}
		go func() {
			a.logger.Infof("HTTP server listening on %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.WithError(err).Error("http server failed")
				stop()
			}
		}()
	}

	pollErr := telegram.NewPoller(api, b, a.cfg.Telegram.PollTimeout, a.logger).Run(ctx)

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Error("shutdown error")
		}
	}
	if pollErr != nil {
		return fmt.Errorf("polling: %w", pollErr)
	}
	return nil
}
