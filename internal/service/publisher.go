package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/shestoi/stocktracker/internal/inventory"
	"github.com/shestoi/stocktracker/platform/observability"
)

// LoggingRestockPublisher реализует RestockPublisher записью в лог.
// Используется, когда Kafka выключена (KAFKA_ENABLED=false).
type LoggingRestockPublisher struct {
	logger *zap.Logger
}

// NewLoggingRestockPublisher создаёт publisher, пишущий предупреждения в logger
func NewLoggingRestockPublisher(logger *zap.Logger) *LoggingRestockPublisher {
	return &LoggingRestockPublisher{logger: logger}
}

// PublishRestockRequired пишет событие в лог уровня warn
func (p *LoggingRestockPublisher) PublishRestockRequired(ctx context.Context, event inventory.RestockEvent) error {
	observability.L(ctx, p.logger).Warn("item below restock threshold",
		zap.String("item_id", event.ItemID),
		zap.String("item_name", event.ItemName),
		zap.Int("quantity", event.Quantity),
		zap.Int("threshold", event.Threshold),
	)
	return nil
}
