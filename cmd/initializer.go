package main

import (
	"database/sql"
	"log/slog"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/config"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/handlers"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/repositories"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/services"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/utils"
)

type application struct {
	logger             *slog.Logger
	db                 *sql.DB
	hub                *StatusHub
	tokenManager       *utils.Manager
	applicationHandler *handlers.ApplicationHandler
	paymentHandler     *handlers.PaymentHandler
	userHandler        *handlers.UserHandler
	notifyHandler      *handlers.NotifyHandler
	documentHandler    *handlers.DocumentHandler
}

func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, fcm *messaging.Client, logger *slog.Logger) (*application, error) {
	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		return nil, err
	}

	applicationRepo := repositories.ApplicationRepository{DB: db}
	obligationRepo := repositories.ObligationRepository{DB: db}
	paymentRepo := repositories.PaymentRepository{DB: db}
	userRepo := repositories.UserRepository{DB: db}

	hub := NewStatusHub(logger)

	notifier := &services.NotificationService{Client: fcm, DB: db, Logger: logger}
	billing := &services.BillingService{
		ApplicationRepo: &applicationRepo,
		ObligationRepo:  &obligationRepo,
		PaymentRepo:     &paymentRepo,
		Cache:           services.NewAllocationCache(rdb, 10*time.Minute),
		Logger:          logger,
	}
	applicationService := &services.ApplicationService{
		ApplicationRepo: &applicationRepo,
		ObligationRepo:  &obligationRepo,
		Billing:         billing,
		Notifier:        notifier,
		Broadcaster:     hub,
		Logger:          logger,
	}
	eventService := &services.ProviderEventService{
		PaymentRepo:   &paymentRepo,
		Billing:       billing,
		Applications:  applicationService,
		WebhookSecret: cfg.Provider.WebhookSecret,
		Logger:        logger,
	}
	userService := &services.UserService{UserRepo: &userRepo, TokenManager: tokenManager}

	return &application{
		logger:       logger,
		db:           db,
		hub:          hub,
		tokenManager: tokenManager,
		applicationHandler: &handlers.ApplicationHandler{
			Service: applicationService,
			Billing: billing,
			Logger:  logger,
		},
		paymentHandler: &handlers.PaymentHandler{
			Events:          eventService,
			PaymentRepo:     &paymentRepo,
			ObligationRepo:  &obligationRepo,
			ApplicationRepo: &applicationRepo,
			Logger:          logger,
		},
		userHandler:   &handlers.UserHandler{Service: userService, Logger: logger},
		notifyHandler: &handlers.NotifyHandler{Service: notifier, Logger: logger},
		documentHandler: &handlers.DocumentHandler{
			Store:           newDocumentStore(cfg, logger),
			ApplicationRepo: &applicationRepo,
			DB:              db,
			Logger:          logger,
		},
	}, nil
}

// newDocumentStore builds the S3 client when storage is configured;
// document endpoints answer 503 otherwise.
func newDocumentStore(cfg config.Config, logger *slog.Logger) *utils.DocumentStore {
	if cfg.Storage.Bucket == "" {
		logger.Info("object storage not configured, documents disabled")
		return nil
	}
	store, err := utils.NewDocumentStore(utils.S3Config{
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Warn("object storage init failed, documents disabled", "err", err)
		return nil
	}
	return store
}
