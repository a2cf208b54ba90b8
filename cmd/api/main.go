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

	"github.com/joho/godotenv"
	"github.com/schoolyard-api/internal/config"
	"github.com/schoolyard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/schoolyard-api/internal/infrastructure/jwt"
	s3infra "github.com/schoolyard-api/internal/infrastructure/s3"
	"github.com/schoolyard-api/internal/infrastructure/smtp"
	"github.com/schoolyard-api/internal/infrastructure/sns"
	transporthttp "github.com/schoolyard-api/internal/transport/http"
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

	// S3 store for study source files.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		ScopeRepo:        dynamo.NewScopeRepo(dynamoClient, cfg.DynamoTables.Scopes),
		KeyRepo:          dynamo.NewKeyRepo(dynamoClient, cfg.DynamoTables.DigitalKeys),
		PostRepo:         dynamo.NewPostRepo(dynamoClient, cfg.DynamoTables.Posts),
		CommentRepo:      dynamo.NewCommentRepo(dynamoClient, cfg.DynamoTables.Comments),
		EventRepo:        dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		RSVPRepo:         dynamo.NewRSVPRepo(dynamoClient, cfg.DynamoTables.RSVPs),
		TeacherRepo:      dynamo.NewTeacherRepo(dynamoClient, cfg.DynamoTables.Teachers),
		ReviewRepo:       dynamo.NewReviewRepo(dynamoClient, cfg.DynamoTables.TeacherReviews),
		SlotRepo:         dynamo.NewSlotRepo(dynamoClient, cfg.DynamoTables.ScheduleSlots),
		SourceRepo:       dynamo.NewSourceRepo(dynamoClient, cfg.DynamoTables.StudySources),
		RatingRepo:       dynamo.NewRatingRepo(dynamoClient, cfg.DynamoTables.PeerRatings),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
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
	log.Println("Server stopped")
}
