package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/metrics"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/server"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}
}

func serveRun(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := openApp(ctx, metrics.New(registry))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cfg.ValidateServe(); err != nil {
		return err
	}

	srv := server.New(a.cfg, server.Deps{
		Ledger:   a.svc,
		DB:       a.store,
		Registry: registry,
		Log:      a.log,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", a.cfg.HTTPAddress()).Info("member ledger listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.log.WithError(err).Error("http server error")
			return err
		}
	case <-ctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		a.log.WithError(err).Warn("graceful shutdown error")
	}
	a.log.Info("graceful shutdown complete")
	return nil
}
