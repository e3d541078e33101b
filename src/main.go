package main

import (
	"log"
	"log/slog"
	"os"

	"breaktime-service/logger"
	"breaktime-service/src/config"
	"breaktime-service/src/server"

	"github.com/joho/godotenv"
)

// @title Breaktime Service API
// @version 1.0
// @description Employee break session tracking, reconciliation and compliance alerting

// @BasePath /api

func main() {
	setupLogging()
	logger.Init()
	cfg := loadConfig()

	srv, err := server.NewServer(&cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Run(); err != nil {
		log.Fatalf("Server stopped with an error: %v", err)
	}
}

func loadConfig() config.GlobalConfig {
	// A local .env is optional; real deployments set the environment.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded configuration from .env file")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func setupLogging() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
}
