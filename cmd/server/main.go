package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/safezoneph/syncd/api/handler"
	"github.com/safezoneph/syncd/internal/config"
	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
	"github.com/safezoneph/syncd/internal/infrastructure/monitor"
	"github.com/safezoneph/syncd/internal/middleware"
	"github.com/safezoneph/syncd/internal/remote"
	"github.com/safezoneph/syncd/internal/router"
	"github.com/safezoneph/syncd/internal/services"
	"github.com/safezoneph/syncd/internal/services/lifecycle"
	"github.com/safezoneph/syncd/pkg/httpcontext"
	"github.com/safezoneph/syncd/pkg/logger"
	"github.com/safezoneph/syncd/repository/boltdb"
	buddyUC "github.com/safezoneph/syncd/usecase/buddy"
	messageUC "github.com/safezoneph/syncd/usecase/message"
	pointsUC "github.com/safezoneph/syncd/usecase/points"
	prefsUC "github.com/safezoneph/syncd/usecase/prefs"
	sessionUC "github.com/safezoneph/syncd/usecase/session"
	taskUC "github.com/safezoneph/syncd/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := localstore.Open(cfg.Store.Path)
	if err != nil {
		zapLogger.Fatal("failed to open local store", zap.Error(err))
	}
	manager.Register("localstore", func(ctx context.Context) error {
		return store.Close()
	})

	outbox := localstore.NewOutbox(store)

	remoteClient := remote.NewClient(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
	}, zapLogger)

	mon := monitor.New(remoteClient, store, outbox, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := boltdb.NewUserRepository(store)
	sessionRepo := boltdb.NewSessionRepository(store, cfg.JWT.SessionTTL)
	taskRepo := boltdb.NewTaskRepository(store)
	buddyRepo := boltdb.NewBuddyRepository(store)
	buddySessionRepo := boltdb.NewBuddySessionRepository(store)
	checkInRepo := boltdb.NewCheckInRepository(store)
	pointsRepo := boltdb.NewPointsRepository(store)
	notificationRepo := boltdb.NewNotificationRepository(store)
	settingsRepo := boltdb.NewSettingsRepository(store)
	onboardingRepo := boltdb.NewOnboardingRepository(store)
	conversationCache := boltdb.NewConversationCache(store)

	processor := services.NewOutboxProcessor(
		outbox,
		remoteClient,
		mon,
		taskRepo,
		buddySessionRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:       cfg.Outbox.SyncInterval,
			BatchSize:      cfg.Outbox.BatchSize,
			MaxRetries:     cfg.Outbox.MaxRetries,
			InitialBackoff: cfg.Outbox.InitialBackoff,
			MaxBackoff:     cfg.Outbox.MaxBackoff,
			Retention:      time.Duration(cfg.Outbox.RetentionHours) * time.Hour,
		},
	)
	processor.Start()
	manager.Register("outbox_processor", func(ctx context.Context) error {
		processor.Stop(ctx)
		return nil
	})

	refresher := services.NewRefresher(
		remoteClient,
		mon,
		outbox,
		taskRepo,
		buddyRepo,
		buddySessionRepo,
		pointsRepo,
		userRepo,
		cfg.Refresh.Interval,
		zapLogger,
	)
	refresher.Start()
	manager.Register("refresher", func(ctx context.Context) error {
		refresher.Stop()
		return nil
	})

	outboxBridge := services.NewOutboxBridge(outbox, userRepo)

	sessionUseCase := sessionUC.New(userRepo, sessionRepo, remoteClient, sessionUC.Config{
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
		SessionTTL: cfg.JWT.SessionTTL,
	}, zapLogger)
	taskUseCase := taskUC.New(taskRepo, pointsRepo, outboxBridge, zapLogger)
	buddyUseCase := buddyUC.New(buddyRepo, buddySessionRepo, checkInRepo, pointsRepo, outboxBridge, zapLogger)
	pointsUseCase := pointsUC.New(pointsRepo, userRepo, zapLogger)
	messageUseCase := messageUC.New(remoteClient, conversationCache, outboxBridge, userRepo, zapLogger)
	prefsUseCase := prefsUC.New(notificationRepo, settingsRepo, onboardingRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(sessionUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(sessionUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Buddy:   apiHandler.NewBuddyHandler(buddyUseCase, ctxAdapter, zapLogger),
		Points:  apiHandler.NewPointsHandler(pointsUseCase, ctxAdapter, zapLogger),
		Message: apiHandler.NewMessageHandler(messageUseCase, ctxAdapter, zapLogger),
		Prefs:   apiHandler.NewPrefsHandler(prefsUseCase, ctxAdapter, zapLogger),
		Sync:    apiHandler.NewSyncHandler(processor, refresher, mon, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, sessionUseCase.SessionActive, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
