// Package main содержит restock-watch: консольный подписчик на restock-события StockTracker.
//
// Читает топик RESTOCK_TOPIC (по умолчанию inventory.restock.required) из KAFKA_BROKERS
// и пишет каждое событие в лог. Останавливается по SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	kafkaevent "github.com/shestoi/stocktracker/internal/event/kafka"
	"github.com/shestoi/stocktracker/internal/inventory"
	platformkafka "github.com/shestoi/stocktracker/platform/kafka"
	platformlogging "github.com/shestoi/stocktracker/platform/logging"
)

type watchConfig struct {
	Topic   string `env:"RESTOCK_TOPIC" envDefault:"inventory.restock.required"`
	GroupID string `env:"RESTOCK_WATCH_GROUP_ID" envDefault:"restock-watch"`
}

func main() {
	_ = godotenv.Load()

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "restock-watch",
		Env:         "local",
		Level:       "info",
		Format:      "console",
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	kafkaCfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&kafkaCfg); err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}
	var cfg watchConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Error("failed to load watch config", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("watching restock events",
		zap.Strings("brokers", kafkaCfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := kafkaevent.NewRestockConsumer(logger, kafkaCfg, cfg.GroupID, cfg.Topic,
		func(ctx context.Context, event inventory.RestockEvent) error {
			logger.Warn("restock required",
				zap.String("item_id", event.ItemID),
				zap.String("item_name", event.ItemName),
				zap.Int("quantity", event.Quantity),
				zap.Int("threshold", event.Threshold),
			)
			return nil
		})
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		logger.Error("consumer stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
