package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/glassops/glassops-backend/api/controllers"
	"github.com/glassops/glassops-backend/api/routes"
	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/internal/auth"
	"github.com/glassops/glassops-backend/internal/customers"
	"github.com/glassops/glassops-backend/internal/jobs"
	"github.com/glassops/glassops-backend/internal/notifications"
	"github.com/glassops/glassops-backend/internal/quotes"
	"github.com/glassops/glassops-backend/internal/technicians"
	"github.com/glassops/glassops-backend/internal/uploads"
	"github.com/glassops/glassops-backend/internal/users"
	"github.com/glassops/glassops-backend/pkg/auth/session"
	"github.com/glassops/glassops-backend/pkg/config"
	"github.com/glassops/glassops-backend/pkg/db"
	"github.com/glassops/glassops-backend/pkg/email"
	"github.com/glassops/glassops-backend/pkg/instance"
	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/metrics"
	"github.com/glassops/glassops-backend/pkg/migrate"
	"github.com/glassops/glassops-backend/pkg/redis"
	"github.com/glassops/glassops-backend/pkg/sms"
	"github.com/glassops/glassops-backend/pkg/vin"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	quoteMetrics := metrics.NewQuoteMetrics(registry)

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Logger:      logg,
		Metrics:     metrics.NewNotificationMetrics(registry),
		Workers:     cfg.Notifications.Workers,
		QueueSize:   cfg.Notifications.QueueSize,
		TaskTimeout: cfg.Notifications.TaskTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}
	dispatcher.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Shutdown(ctx); err != nil {
			logg.Error(ctx, "notification dispatcher did not drain", err)
		}
	}()

	notifier, err := notifications.NewNotifier(notifications.NotifierParams{
		Dispatcher:  dispatcher,
		Email:       emailSender(cfg, logg),
		SMS:         smsSender(cfg, logg),
		SMSEnabled:  cfg.FeatureFlags.SMSConfirm && cfg.Twilio.Enabled(),
		CompanyName: cfg.App.CompanyName,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	nhtsa, err := vin.NewNHTSADecoder(cfg.VIN.BaseURL, cfg.VIN.Timeout, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create vin decoder", err)
		os.Exit(1)
	}
	vinDecoder, err := vin.NewCachedDecoder(nhtsa, redisClient, cfg.VIN.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create vin cache", err)
		os.Exit(1)
	}

	fileLimits := uploads.Limits{MaxFileBytes: cfg.Uploads.MaxFileBytes(), MaxFiles: cfg.Uploads.MaxFiles}
	fileStore, err := uploads.NewStore(cfg.Uploads.Dir, fileLimits)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare uploads dir", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(activity.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customers.NewRepository(dbClient.DB()), dbClient, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	technicianService, err := technicians.NewService(technicians.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create technician service", err)
		os.Exit(1)
	}

	quoteRepo := quotes.NewRepository(dbClient.DB())
	quoteService, err := quotes.NewService(quotes.ServiceParams{
		Repo:       quoteRepo,
		Tx:         dbClient,
		Customers:  customerService,
		Activity:   activityService,
		VIN:        vinDecoder,
		Notifier:   notifier,
		Files:      fileStore,
		FileLimits: fileLimits,
		Metrics:    quoteMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	jobRepo := jobs.NewRepository(dbClient.DB())
	jobService, err := jobs.NewService(jobRepo, dbClient, customerService, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create job service", err)
		os.Exit(1)
	}

	converter, err := jobs.NewConverter(jobs.ConverterParams{
		Tx:          dbClient,
		Quotes:      quoteRepo,
		Jobs:        jobRepo,
		Technicians: technicianService,
		Activity:    activityService,
		Metrics:     quoteMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quote converter", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Gatherer:    registry,
			Ready: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Sessions:    sessionManager,
			Limiter:     redisClient,
			Idempotency: redisClient,
			Auth:        authService,
			Quotes:      quoteService,
			Converter:   converter,
			Customers:   customerService,
			Technicians: technicianService,
			Jobs:        jobService,
			Activity:    activityService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}
	logg.Info(ctx, "api server stopped")
}

func emailSender(cfg *config.Config, logg *logger.Logger) email.Sender {
	if cfg.Sendgrid.APIKey == "" {
		logg.Warn(context.Background(), "sendgrid not configured, logging outbound email")
		return email.NewLogSender(logg)
	}
	sender, err := email.NewSendgridSender(email.SendgridParams{
		APIKey:   cfg.Sendgrid.APIKey,
		From:     cfg.Sendgrid.DefaultFrom,
		FromName: cfg.App.CompanyName,
		BaseURL:  cfg.Sendgrid.BaseURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sendgrid sender", err)
		os.Exit(1)
	}
	return sender
}

func smsSender(cfg *config.Config, logg *logger.Logger) sms.Sender {
	if !cfg.Twilio.Enabled() {
		return sms.Disabled{}
	}
	sender, err := sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	if err != nil {
		logg.Error(context.Background(), "failed to create twilio sender", err)
		os.Exit(1)
	}
	return sender
}
