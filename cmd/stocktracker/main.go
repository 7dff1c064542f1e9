package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/shestoi/stocktracker/internal/app"
	"github.com/shestoi/stocktracker/internal/config"
)

func main() {
	// .env необязателен: в Docker переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// Run блокируется до graceful shutdown
	if err := application.Run(); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
