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
	"go.uber.org/zap"

	"github.com/appengine-ltd/wildcast/internal/api"
	"github.com/appengine-ltd/wildcast/internal/store"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the prediction API and metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)

	var writer store.Writer
	if rt.writable() {
		writer = rt.store
	}
	server := api.New(api.Options{
		Engine:      rt.engine,
		Metrics:     metrics,
		Logger:      rt.logger.Named("api"),
		Writer:      writer,
		Mode:        rt.cfg.Server.Mode,
		CORSOrigins: rt.cfg.Server.CORSOrigins,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              rt.cfg.Server.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 2)
	go func() { errs <- server.Start(rt.cfg.Server.Addr) }()
	go func() {
		rt.logger.Info("metrics listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
			return
		}
		errs <- nil
	}()

	rt.logger.Info("wildcast started",
		zap.String("version", version),
		zap.String("store", rt.cfg.Store.Driver),
		zap.Bool("admin", writer != nil))

	var runErr error
	select {
	case <-ctx.Done():
		rt.logger.Info("shutting down")
	case runErr = <-errs:
		if runErr != nil {
			rt.logger.Error("listener failed", zap.Error(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		rt.logger.Warn("api shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		rt.logger.Warn("metrics shutdown", zap.Error(err))
	}
	return runErr
}
