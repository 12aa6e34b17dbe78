package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/incident-report-tracker/internal/config"
	"github.com/iliyamo/incident-report-tracker/internal/database"
	"github.com/iliyamo/incident-report-tracker/internal/handler"
	"github.com/iliyamo/incident-report-tracker/internal/notify"
	"github.com/iliyamo/incident-report-tracker/internal/queue"
	"github.com/iliyamo/incident-report-tracker/internal/repository"
	"github.com/iliyamo/incident-report-tracker/internal/router"
	"github.com/iliyamo/incident-report-tracker/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	maxInFlight     = 64
)

// drainingNotifier is a report notifier whose background work can be
// waited for on shutdown.
type drainingNotifier interface {
	service.Notifier
	Wait(ctx context.Context)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Ensure the schema and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database unreachable")
	}
	defer db.Close()
	if err := database.EnsureSchema(parent, db); err != nil {
		log.WithError(err).Fatal("schema setup failed")
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	employees := repository.NewEmployeeRepo(db)
	reports := repository.NewReportRepo(db)
	logs := repository.NewReportLogRepo(db)
	users := repository.NewUserRepo(db)

	dispatcher := notify.NewDispatcher(users, notify.NewExpoClient(cfg.PushGatewayURL, cfg.PushTimeout), cfg.PushConcurrency)
	fanoutTimeout := 2 * cfg.PushTimeout

	var notifier drainingNotifier
	switch cfg.NotifyTransport {
	case config.TransportAMQP:
		notifier = queue.NewPublisher(cfg.RabbitMQURL, cfg.PushTimeout, maxInFlight)
		consumer := queue.NewConsumer(cfg.RabbitMQURL, dispatcher, fanoutTimeout)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("report consumer stopped")
			}
		}()
	default:
		notifier = notify.NewAsyncNotifier(dispatcher, fanoutTimeout, maxInFlight)
	}
	log.WithField("transport", cfg.NotifyTransport).Info("notifications enabled")

	reportSvc := service.NewReportService(reports, employees, notifier)
	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)

	e := router.New()
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), authSvc, config.LoadRateLimitConfig(), rdb)
	router.RegisterEmployees(e, handler.NewEmployeeHandler(service.NewEmployeeService(employees)))
	router.RegisterReports(e, handler.NewReportHandler(reportSvc))
	router.RegisterReportLog(e, handler.NewReportLogHandler(service.NewReportLogService(logs, reportSvc)), authSvc)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	notifier.Wait(shutdownCtx)
	return nil
}
