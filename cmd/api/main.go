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
	"github.com/suqapp/backend/internal/config"
	"github.com/suqapp/backend/internal/infrastructure/dynamo"
	jwtinfra "github.com/suqapp/backend/internal/infrastructure/jwt"
	"github.com/suqapp/backend/internal/infrastructure/sns"
	transporthttp "github.com/suqapp/backend/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Token issuer. Signing secrets are mandatory.
	issuer, err := jwtinfra.NewIssuer(cfg)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	// SNS SMS sender; falls back to log-only delivery in development.
	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		log.Printf("WARN: SNS sender not available, logging SMS instead: %v", err)
		smsSender = sns.NewLogSender()
	}

	deps := &transporthttp.Deps{
		UserRepo:  dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:   dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		SMSSender: smsSender,
		Issuer:    issuer,
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
