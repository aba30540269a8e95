package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gokatarajesh/quizflow/internal/app"
	"github.com/gokatarajesh/quizflow/internal/config"
)

const defaultEnvFile = "configs/.env"

func main() {
	if os.Getenv("APP_ENV") != "production" {
		envFile := os.Getenv("QUIZFLOW_ENV_FILE")
		if envFile == "" {
			envFile = defaultEnvFile
		}
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("env file %s not loaded: %v", envFile, err)
		}
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	cfg, err := config.Load(loadCtx)
	cancel()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	instance, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if err := instance.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
