package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheflamb/brigade-api/internal/application/billing"
	"github.com/cheflamb/brigade-api/internal/application/notification"
	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/infrastructure/dynamo"
	"github.com/cheflamb/brigade-api/internal/infrastructure/fcm"
	jwtinfra "github.com/cheflamb/brigade-api/internal/infrastructure/jwt"
	"github.com/cheflamb/brigade-api/internal/infrastructure/queue"
	"github.com/cheflamb/brigade-api/internal/infrastructure/ses"
	"github.com/cheflamb/brigade-api/internal/infrastructure/sns"
	stripeinfra "github.com/cheflamb/brigade-api/internal/infrastructure/stripe"
	transporthttp "github.com/cheflamb/brigade-api/internal/transport/http"
	"github.com/cheflamb/brigade-api/internal/worker"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	notifRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	settingsRepo := dynamo.NewSettingsRepo(dynamoClient, cfg.DynamoTables.Settings)
	scheduleRepo := dynamo.NewScheduleRepo(dynamoClient, cfg.DynamoTables.Schedules)
	subRepo := dynamo.NewPushSubscriptionRepo(dynamoClient, cfg.DynamoTables.PushSubscriptions)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// Channel transports. Each is optional so a dev box without cloud
	// credentials can still boot; the dispatcher fails those channels at
	// delivery time instead.
	var mailer ses.Mailer
	if m, err := ses.NewMailer(cfg); err == nil {
		mailer = m
	} else {
		log.Printf("WARN: SES mailer not available: %v", err)
	}
	var smsSender sns.SMSSender
	if s, err := sns.NewSender(cfg); err == nil {
		smsSender = s
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}
	var pushSender fcm.PushSender
	if p, err := fcm.NewSender(context.Background(), cfg); err == nil {
		pushSender = p
	} else {
		log.Printf("WARN: FCM sender not available: %v", err)
	}

	scheduler := queue.NewScheduler(cfg)

	notifSvc := notification.NewService(notification.Deps{
		Notifications: notifRepo,
		Settings:      settingsRepo,
		Schedules:     scheduleRepo,
		Users:         userRepo,
		PushSubs:      subRepo,
		Mailer:        mailer,
		SMS:           smsSender,
		Push:          pushSender,
		Scheduler:     scheduler,
		BaseURL:       cfg.AppBaseURL,
	})

	prices := billing.NewPriceMap(cfg.PriceTierList())
	billingSvc := billing.NewService(userRepo, notifSvc, prices, stripeinfra.NewClient(cfg))

	// Scheduled-delivery worker shares the dispatcher and runs in-process.
	w := worker.New(cfg, notifRepo, notifSvc)
	go func() {
		if err := w.Run(); err != nil {
			slog.Error("worker stopped", "err", err)
		}
	}()

	deps := &transporthttp.Deps{
		NotificationSvc: notifSvc,
		BillingSvc:      billingSvc,
		UserRepo:        userRepo,
		PushSubRepo:     subRepo,
		SMSSender:       smsSender,
		PushSender:      pushSender,
		JWTProvider:     jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	w.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
