package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"servicepulse/internal/config"
	"servicepulse/internal/httpapi"
	"servicepulse/internal/logging"
	"servicepulse/internal/notify"
	"servicepulse/internal/probe"
	"servicepulse/internal/pubsub"
	"servicepulse/internal/repo"
	"servicepulse/internal/repo/memory"
	"servicepulse/internal/repo/postgres"
	"servicepulse/internal/scheduler"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "servicepulse",
		Short:         "Service health monitor: probe, detect transitions, notify",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newPreflightCmd())
	return root
}

// deps holds the cycle-scoped handles. Close releases them on every exit
// path, including an aborted cycle.
type deps struct {
	logger *zap.Logger
	store  repo.Store
	pub    pubsub.Publisher
	orch   *scheduler.Orchestrator
	closes []func()
}

func (d *deps) Close() {
	for i := len(d.closes) - 1; i >= 0; i-- {
		d.closes[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	d := &deps{logger: logger}
	d.closes = append(d.closes, func() { _ = logger.Sync() })

	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		d.store = pg
		d.closes = append(d.closes, pg.Close)
	} else {
		logger.Warn("no_database_url_using_memory_store")
		d.store = memory.New()
	}

	pub, err := pubsub.NewRedis(cfg.RedisURL)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	d.pub = pub
	d.closes = append(d.closes, func() { _ = pub.Close() })

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	var m notify.Mailer
	if mailer != nil {
		m = mailer
	} else {
		logger.Warn("smtp_not_configured_email_disabled")
	}

	checker := probe.NewHTTPChecker(cfg.ProbeTimeout)
	d.orch = scheduler.NewOrchestrator(logger, d.store, pub, checker, m, cfg.Concurrency)
	return d, nil
}

// newRunCmd executes exactly one monitoring cycle, the shape an external
// cron invokes. Exit code 0 means the cycle completed, individual service
// failures included; non-zero is reserved for fatal setup errors.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single monitoring cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			ctx := cmd.Context()

			d, err := buildDeps(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			sum, err := d.orch.RunCycle(ctx)
			if err != nil {
				d.logger.Error("cycle_failed", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cycle completed: checked=%d succeeded=%d failed=%d took=%s\n",
				sum.Checked, sum.Succeeded, sum.Failed, sum.Duration)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the interval loop with the HTTP trigger/status surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := buildDeps(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			api := httpapi.NewServer(d.logger, d.orch, d.store, cfg.TriggerRPM, cfg.TriggerBurst)
			srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}

			go d.orch.RunLoop(ctx, cfg.CheckInterval)
			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()

			d.logger.Info("serve_listen",
				zap.String("addr", cfg.Addr),
				zap.Duration("interval", cfg.CheckInterval),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
