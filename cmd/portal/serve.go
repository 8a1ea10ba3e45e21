package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/internship-portal/internal/application"
	httptransport "github.com/example/internship-portal/internal/http"
	"github.com/example/internship-portal/internal/metrics"
	"github.com/example/internship-portal/internal/natsbridge"
	"github.com/example/internship-portal/internal/telemetry"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.ValidateServer(); err != nil {
		return err
	}
	logger := a.logger

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: appName,
		Endpoint:    a.cfg.OTLPEndpoint,
		Insecure:    os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		Logger:      logger,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.closeStore(store)

	recorder := metrics.New()
	sessions := a.sessionManager(store, recorder)
	matches, err := a.matchService(recorder)
	if err != nil {
		return err
	}

	if a.cfg.NATSURL != "" {
		client, err := natsbridge.Connect(a.cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close nats connection", "error", err)
			}
		}()
		unsubscribe := natsbridge.New(client, logger).Attach(sessions)
		defer unsubscribe()
		logger.Info("auth events bridged to nats", "url", a.cfg.NATSURL)
	}

	issuer, err := httptransport.NewOriginIssuer([]byte(a.cfg.SessionSecret), a.clock.Now)
	if err != nil {
		return err
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions: httptransport.NewSessionHandler(sessions, logger),
		Matches:  httptransport.NewMatchHandler(matches, logger),
		Metrics:  recorder.Handler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.WithOrigin(issuer, logger),
			httptransport.TrackActivity(application.NewMonitor(sessions, nil, nil, a.cfg.MonitorInterval, logger)),
		},
		Outer: []func(http.Handler) http.Handler{
			httptransport.Tracing(appName),
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr, "storage", a.cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
