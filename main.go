package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oseplatform/config"
	"oseplatform/cron"
	"oseplatform/database"
	"oseplatform/database/repository"
	"oseplatform/handlers"
	"oseplatform/middleware"
	"oseplatform/routes"
	"oseplatform/services/mailer"
	"oseplatform/services/notification"
	"oseplatform/services/operator"
	"oseplatform/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck
	cfg := config.AppConfig

	database.InitDB()
	utils.InitRedis()

	csvArchive, err := utils.CSVArchive()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize csv archive: %v", err)
	}

	// repositories.
	db := database.DB()
	deviceRepo := repository.NewMongoDeviceRepo(db)
	historyRepo := repository.NewMongoHistoryRepo(db)
	customerRepo := repository.NewMongoCustomerRepo(db)
	operatorRepo := repository.NewMongoOperatorRepo(db)

	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		Secure:   cfg.SMTPSecure,
	})

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()

	// services.
	operatorService, err := operator.NewDefaultOperatorService(
		operatorRepo,
		utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		utils.NewRedisTokenRevoker(utils.GetAuthCacheClient()),
		logger.Named("operator"),
	)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	notificationService, err := notification.NewDefaultNotificationService(notification.Deps{
		Devices:   deviceRepo,
		History:   historyRepo,
		Customers: customerRepo,
		Mailer:    smtpMailer,
		Archive:   csvArchive,
		Queue:     queue,
		Cache:     notification.NewRedisOptionsCache(utils.GetCacheClient()),
		CacheTTL:  cfg.OptionsCacheTTL,
		Logger:    logger.Named("notification"),
	})
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := operatorService.Bootstrap(bootCtx, cfg.BootstrapOperatorName, cfg.BootstrapOperatorEmail, cfg.BootstrapOperatorPassword); err != nil {
		logger.Error("main: bootstrap operator not created", zap.Error(err))
	}
	bootCancel()

	// background workers.
	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, []*redis.Client{utils.CacheClient, utils.AuthCacheClient}, database.MongoClient, 30*time.Second)
	worker := cron.InitEmailRetryWorker(smtpMailer)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	authHandler := handlers.NewAuthHandler(operatorService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		OperatorService: operatorService,

		LoginHandler:  authHandler.LoginHandler,
		LogoutHandler: authHandler.LogoutHandler,

		ValidateBulkHandler:  notificationHandler.ValidateBulkHandler,
		ConfigOptionsHandler: notificationHandler.ConfigOptionsHandler,
		SendHandler:          notificationHandler.SendHandler,
		HistoryHandler:       notificationHandler.HistoryHandler,
		HistoryItemHandler:   notificationHandler.HistoryItemHandler,
		HistoryCSVHandler:    notificationHandler.HistoryCSVHandler,

		SmartScanHandler:        notificationHandler.SmartScanHandler,
		SearchByLocationHandler: notificationHandler.SearchByLocationHandler(),
		SearchByCartonHandler:   notificationHandler.SearchByCartonHandler(),
		SearchByPalletHandler:   notificationHandler.SearchByPalletHandler(),

		HealthHandler: handlers.HealthHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, cfg.AllowedOrigins)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	utils.CloseRedis()
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Errorf("main: failed to close MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
