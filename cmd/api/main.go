package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/frontdesk-ai/platform/cmd/mainconfig"
	"github.com/frontdesk-ai/platform/internal/api/router"
	"github.com/frontdesk-ai/platform/internal/archive"
	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/internal/calllog"
	appconfig "github.com/frontdesk-ai/platform/internal/config"
	"github.com/frontdesk-ai/platform/internal/conversation"
	"github.com/frontdesk-ai/platform/internal/http/handlers"
	"github.com/frontdesk-ai/platform/internal/notify"
	"github.com/frontdesk-ai/platform/internal/observability/metrics"
	"github.com/frontdesk-ai/platform/internal/scheduling"
	"github.com/frontdesk-ai/platform/internal/webchat"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting frontdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	// Postgres: reservations, catalog, call history.
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis: business profiles.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// LLM provider selection.
	var llmClient conversation.LLMClient
	modelID := cfg.BedrockModelID
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llmClient = gemini
		modelID = cfg.GeminiModelID
	default:
		llmClient = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	profiles := business.NewStore(redisClient,
		business.WithDefaultConfidence(cfg.ConfidenceDefault))
	catalog := business.NewPostgresCatalogRepository(pool)
	scheduleRepo := scheduling.NewPostgresRepository(pool)
	engine := scheduling.NewEngine(scheduleRepo, logger)
	committer := scheduling.NewCommitter(scheduleRepo, engine, logger)
	loader := conversation.NewContextLoader(profiles, catalog, scheduleRepo, logger)

	classifier := conversation.NewLLMIntentClassifier(llmClient, modelID, logger,
		conversation.WithClassifierTimeout(cfg.LLMTimeout))
	generator := conversation.NewReplyGenerator(llmClient, modelID, logger)

	// Notification channels: SendGrid when configured, SES otherwise.
	var email notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		email = sg
	} else if cfg.SESFromEmail != "" {
		email = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	} else {
		email = notify.NewStubEmailSender(logger)
	}

	var sms notify.SMSSender
	if hs := notify.NewHTTPSMSSender(notify.HTTPSMSConfig{
		Endpoint: cfg.SMSProviderEndpoint,
		APIKey:   cfg.SMSProviderAPIKey,
		From:     cfg.SMSFromNumber,
	}, nil, logger); hs != nil {
		sms = hs
	} else {
		sms = notify.NewStubSMSSender(logger)
	}

	records := notify.NewDynamoRecordStore(dynamodb.NewFromConfig(awsCfg), cfg.NotificationsTable, logger)
	notifier := notify.NewService(email, sms, records, logger,
		notify.WithMetrics(metrics.NewNotifyMetrics(nil)))

	routerOpts := []conversation.RouterOption{
		conversation.WithNotifier(notifier),
		conversation.WithCallRecorder(calllog.NewStore(sqlDB)),
	}
	if archiver := archive.NewArchiver(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, logger); archiver != nil {
		routerOpts = append(routerOpts, conversation.WithArchiver(archiver))
	}

	turnRouter := conversation.NewRouter(loader, classifier, generator, engine, committer, logger, routerOpts...)

	// Turns flow through a queue so concurrency is bounded per process.
	var processor conversation.TurnProcessor
	if cfg.UseMemoryQueue || cfg.TurnQueueURL == "" {
		dispatcher := conversation.NewDispatcher(turnRouter, conversation.NewMemoryQueue(0), logger,
			conversation.WithWorkerCount(cfg.WorkerCount))
		defer shutdownDispatcher(dispatcher, logger)
		processor = dispatcher
	} else {
		sqsQueue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.TurnQueueURL)
		dispatcher := conversation.NewDispatcher(turnRouter, sqsQueue, logger,
			conversation.WithWorkerCount(cfg.WorkerCount))
		defer shutdownDispatcher(dispatcher, logger)
		processor = dispatcher
	}

	routerCfg := &router.Config{
		Logger:             logger,
		VoiceTurnHandler:   handlers.NewVoiceTurnHandler(processor, logger),
		AdminReservations:  handlers.NewAdminReservationsHandler(scheduleRepo, logger),
		AdminCalls:         handlers.NewAdminCallsHandler(calllog.NewStore(sqlDB), logger),
		WebchatHandler:     webchat.NewHandler(processor, logger),
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TurnRateLimit:      cfg.TurnRateLimit,
		TurnRateBurst:      cfg.TurnRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func shutdownDispatcher(d *conversation.Dispatcher, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		logger.Error("dispatcher shutdown", "error", err)
	}
}
