package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hub-activity-api/internal/application/badge"
	"github.com/hub-activity-api/internal/application/feed"
	"github.com/hub-activity-api/internal/application/poller"
	"github.com/hub-activity-api/internal/config"
	"github.com/hub-activity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/hub-activity-api/internal/infrastructure/jwt"
	"github.com/hub-activity-api/internal/infrastructure/sns"
	transporthttp "github.com/hub-activity-api/internal/transport/http"
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

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// Push platform: SNS-backed when a platform application ARN is
	// configured, no-op otherwise. A missing identity disables push only.
	pushPlatform, err := sns.NewPlatform(cfg)
	if err != nil {
		log.Printf("WARN: push platform not available: %v", err)
		pushPlatform = sns.NoopPlatform{}
	}

	membershipRepo := dynamo.NewMembershipRepo(dynamoClient, cfg.DynamoTables.ChannelMemberships, cfg.DynamoTables.GroupMemberships)
	contentRepo := dynamo.NewContentRepo(dynamoClient, cfg.DynamoTables.Messages, cfg.DynamoTables.Posts, cfg.DynamoTables.Events)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	preferenceRepo := dynamo.NewPreferenceRepo(dynamoClient, cfg.DynamoTables.Preferences)
	pushTokenRepo := dynamo.NewPushTokenRepo(dynamoClient, cfg.DynamoTables.PushTokens)

	// Badge and feed services are shared between the router and the poller so
	// feed session state stays in one place.
	badgeSvc := badge.NewService(membershipRepo, contentRepo, notificationRepo)
	feedSvc := feed.NewService(notificationRepo, preferenceRepo, cfg.FeedPageSize)
	badgePoller := poller.New(badgeSvc, feedSvc, cfg.BadgePollInterval)

	deps := &transporthttp.Deps{
		MembershipRepo:   membershipRepo,
		ContentRepo:      contentRepo,
		NotificationRepo: notificationRepo,
		PreferenceRepo:   preferenceRepo,
		PushTokenRepo:    pushTokenRepo,
		PushPlatform:     pushPlatform,
		JWTProvider:      jwtProvider,
		BadgeSvc:         badgeSvc,
		FeedSvc:          feedSvc,
		Poller:           badgePoller,
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	badgePoller.Close()
	log.Println("Server stopped")
}
