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

	"github.com/VaishnavKrishnanP/EchoSpace/internal/application/space"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/config"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/infrastructure/dynamo"
	jwtinfra "github.com/VaishnavKrishnanP/EchoSpace/internal/infrastructure/jwt"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/infrastructure/smtp"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/infrastructure/sns"
	transporthttp "github.com/VaishnavKrishnanP/EchoSpace/internal/transport/http"
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

	otpRepo := dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs)
	spaceRepo := dynamo.NewSpaceRepo(dynamoClient, cfg.DynamoTables.Spaces)
	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// Verification-token provider (optional — graceful fallback if keys are missing).
	var tokenSigner *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		tokenSigner = p
	} else {
		log.Printf("WARN: verification-token provider not available: %v", err)
	}

	// SNS anomaly reporter (optional — graceful fallback).
	var reporter sns.AnomalyReporter
	if r, err := sns.NewReporter(cfg); err == nil {
		reporter = r
	} else {
		log.Printf("WARN: SNS anomaly reporter not available: %v", err)
	}

	sweeper := space.NewSweeper(space.SweeperDeps{
		SpaceRepo: spaceRepo,
		UserRepo:  userRepo,
		NewBatch: func() space.WriteBatch {
			return dynamo.NewSweepBatch(dynamoClient, spaceRepo, userRepo)
		},
		Reporter: reporter,
		Interval: cfg.SweepInterval,
	})
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	deps := &transporthttp.Deps{
		OTPRepo: otpRepo,
		Mailer:  mailer,
	}
	if tokenSigner != nil {
		deps.TokenSigner = tokenSigner
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
	stopSweeper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
