package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/stocktracker/internal/inventory"
	platformkafka "github.com/shestoi/stocktracker/platform/kafka"
	"github.com/shestoi/stocktracker/platform/observability"
)

// RestockHandler обрабатывает одно декодированное restock-событие
type RestockHandler func(ctx context.Context, event inventory.RestockEvent) error

// messageReader - часть kafka.Reader, которую использует consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RestockConsumer читает restock-события из Kafka
type RestockConsumer struct {
	logger  *zap.Logger
	reader  messageReader
	handler RestockHandler
}

// NewRestockConsumer создаёт consumer для топика restock-событий
func NewRestockConsumer(logger *zap.Logger, cfg platformkafka.Config, groupID, topic string, handler RestockHandler) *RestockConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newRestockConsumer(logger, reader, handler)
}

func newRestockConsumer(logger *zap.Logger, reader messageReader, handler RestockHandler) *RestockConsumer {
	return &RestockConsumer{
		logger:  logger,
		reader:  reader,
		handler: handler,
	}
}

// Close закрывает Kafka reader
func (c *RestockConsumer) Close() error {
	return c.reader.Close()
}

// Start читает сообщения до отмены ctx.
// Offset коммитится после обработки. Битые сообщения логируются и тоже коммитятся,
// ошибка handler оставляет offset на месте.
func (c *RestockConsumer) Start(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		if !c.processMessage(ctx, m) {
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage возвращает true, если offset нужно закоммитить
func (c *RestockConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	ctx = observability.ExtractKafkaHeaders(ctx, m)
	log := observability.L(ctx, c.logger)

	event, err := DecodeRestockEvent(m)
	if err != nil {
		log.Error("skipping malformed restock message",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		return true
	}

	if err := c.handler(ctx, event); err != nil {
		log.Error("failed to handle restock event",
			zap.Error(err),
			zap.String("item_id", event.ItemID),
			zap.Int64("offset", m.Offset),
		)
		return false
	}
	return true
}

// DecodeRestockEvent разбирает сообщение, записанное KafkaRestockPublisher
func DecodeRestockEvent(m kafka.Message) (inventory.RestockEvent, error) {
	var payload restockPayload
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		return inventory.RestockEvent{}, fmt.Errorf("unmarshal restock payload: %w", err)
	}
	if payload.EventType != RestockEventType {
		return inventory.RestockEvent{}, fmt.Errorf("unexpected event_type %q", payload.EventType)
	}
	if payload.EventVersion != RestockEventVersion {
		return inventory.RestockEvent{}, fmt.Errorf("unsupported event_version %d", payload.EventVersion)
	}
	if payload.ItemID == "" {
		return inventory.RestockEvent{}, fmt.Errorf("item_id is required")
	}

	return inventory.RestockEvent{
		ItemID:    payload.ItemID,
		ItemName:  payload.ItemName,
		Quantity:  payload.Quantity,
		Threshold: payload.Threshold,
	}, nil
}
