package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salary-predictor/internal/config"
	"salary-predictor/internal/form"
	"salary-predictor/internal/observability"
	"salary-predictor/internal/prediction"
	"salary-predictor/internal/salary"
	"salary-predictor/internal/server"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	observability.SetServiceName(cfg.Telemetry.ServiceName)

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx, cfg.Telemetry.Enabled)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(ctx)

	// Metrics
	metricShutdown, err := initMetrics(ctx, cfg.Telemetry.Enabled)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	// Logs
	logShutdown, err := observability.InitLogging(ctx, cfg.Telemetry.Enabled)
	if err != nil {
		panic(err)
	}
	defer logShutdown(ctx)

	// Prediction client
	client, err := prediction.NewClient(cfg.Prediction.BaseURL, prediction.WithTimeout(cfg.Prediction.Timeout))
	if err != nil {
		panic(err)
	}

	// Sessions
	sessions := salary.NewSessions(func() *form.Controller {
		return form.NewController(client)
	}, cfg.Session.CookieName, cfg.Session.IdleTTL)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessions.Run(sweepCtx)

	view, err := salary.NewView()
	if err != nil {
		panic(err)
	}

	// Router
	router := server.NewRouter(server.Deps{
		Prediction: client,
		Salary:     salary.NewHandler(sessions, view),
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("prediction_base_url", client.BaseURL()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.HTTP)
	sessions.CloseAll()
}

func waitForShutdown(srv *http.Server, cfg config.HTTPConfig) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("server shutdown", zap.Error(err))
	}
}
