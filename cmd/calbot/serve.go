package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/guilherme-santos/calbot/calendar/google"
	"github.com/guilherme-santos/calbot/chat/console"
	"github.com/guilherme-santos/calbot/chat/telegram"
	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/builder"
	"github.com/guilherme-santos/calbot/internal/dispatcher"
	"github.com/guilherme-santos/calbot/internal/metrics"
	"github.com/guilherme-santos/calbot/internal/parser"
	"github.com/guilherme-santos/calbot/internal/router"
	"github.com/guilherme-santos/calbot/internal/sqlite"
)

const (
	gatewayTelegram = "telegram"
	gatewayConsole  = "console"

	replyBusy = "Too many messages, please wait a moment and try again."
)

func newServeCommand(a *app) *cobra.Command {
	var gateway string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer chat messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), gateway)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&gateway, "gateway", gatewayTelegram, "chat transport: telegram or console")
	flags.Bool("telegram-debug", false, "log every Telegram API call")
	flags.Int("workers", 8, "messages handled concurrently")
	flags.String("metrics-addr", ":9090", "address serving /metrics, empty to disable")
	cobra.CheckErr(a.v.BindPFlag("telegram.debug", flags.Lookup("telegram-debug")))
	cobra.CheckErr(a.v.BindPFlag("dispatcher.workers", flags.Lookup("workers")))
	cobra.CheckErr(a.v.BindPFlag("metrics.addr", flags.Lookup("metrics-addr")))
	return cmd
}

func (a *app) serve(ctx context.Context, gatewayName string) error {
	cfg := a.cfg
	loc := cfg.Location()

	gw, err := a.gateway(gatewayName)
	if err != nil {
		return err
	}

	storage, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer storage.Close()

	credJSON, err := os.ReadFile(cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("reading google credentials: %w", err)
	}
	googleCal, err := google.NewClient(credJSON, google.Options{
		CalendarID: cfg.CalendarID,
		Location:   loc,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("creating google client: %w", err)
	}

	locale, err := parser.Default(parser.Options{Location: loc, Duration: cfg.DefaultDuration}).Get(cfg.Locale)
	if err != nil {
		return err
	}

	r, err := router.New(router.Options{
		Locale:   locale,
		Builder:  builder.New(builder.Options{CalendarID: cfg.CalendarID, Location: loc}),
		Sessions: storage,
		Auth:     googleCal,
		Calendar: googleCal,
		Sender:   gw,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	d := dispatcher.New(ctx, dispatcher.Options{
		Workers:    cfg.Dispatcher.Workers,
		QueueDepth: cfg.Dispatcher.QueueDepth,
		Rate:       rate.Limit(cfg.Dispatcher.Rate),
		Burst:      cfg.Dispatcher.Burst,
	}, func(ctx context.Context, msg internal.Message) {
		r.Handle(ctx, msg)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The gateway stops as soon as any member of the group fails.
	g, ctx := errgroup.WithContext(ctx)
	msgs, err := gw.Receive(ctx)
	if err != nil {
		d.Drain()
		return err
	}

	g.Go(func() error {
		defer cancel()
		defer d.Drain()
		err := a.pump(ctx, gw, d, msgs)
		a.logger.Info("draining messages", slog.Int("queued", d.Len()))
		return err
	})
	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			a.logger.Info("serving metrics", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	a.logger.Info("calbot started", slog.String("gateway", gatewayName), slog.String("locale", locale.Code()))
	err = g.Wait()
	a.logger.Info("calbot stopped")
	return err
}

func (a *app) gateway(name string) (internal.Gateway, error) {
	switch name {
	case gatewayTelegram:
		if err := a.cfg.RequireTelegram(); err != nil {
			return nil, err
		}
		gw, err := telegram.NewGateway(a.cfg.Telegram.Token, a.cfg.Telegram.Debug, a.logger)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case gatewayConsole:
		return console.NewGateway(a.in, a.out), nil
	}
	return nil, fmt.Errorf("gateway %q is not implemented", name)
}

// pump feeds the dispatcher until the gateway closes its channel, which ends
// serve.
func (a *app) pump(ctx context.Context, gw internal.Gateway, d *dispatcher.Dispatcher, msgs <-chan internal.Message) error {
	for msg := range msgs {
		metrics.MessagesReceived.Inc()

		err := d.Submit(msg)
		switch {
		case err == nil:
		case errors.Is(err, dispatcher.ErrRateLimited), errors.Is(err, dispatcher.ErrQueueFull):
			internal.MessageLogger(a.logger, msg).Warn("message rejected", slog.Any("err", err))
			if err := gw.Send(ctx, msg.UserID, replyBusy); err != nil {
				internal.MessageLogger(a.logger, msg).Error("sending reply", slog.Any("err", err))
			}
		default:
			return err
		}
	}
	return nil
}
