package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/stocktracker/internal/inventory"
	platformkafka "github.com/shestoi/stocktracker/platform/kafka"
	"github.com/shestoi/stocktracker/platform/observability"
)

const (
	// RestockEventType - тип события в поле event_type
	RestockEventType = "inventory.restock.required"
	// RestockEventVersion - версия схемы payload
	RestockEventVersion = 1
)

// messageWriter - часть kafka.Writer, которую использует publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// restockPayload - JSON тело события в Kafka
type restockPayload struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	EventVersion int    `json:"event_version"`
	OccurredAt   string `json:"occurred_at"`
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	Threshold    int    `json:"threshold"`
}

// KafkaRestockPublisher реализует service.RestockPublisher используя Kafka
type KafkaRestockPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaRestockPublisher создаёт Kafka publisher для restock-событий
func NewKafkaRestockPublisher(logger *zap.Logger, cfg platformkafka.Config, topic string) *KafkaRestockPublisher {
	return newKafkaRestockPublisher(logger, platformkafka.NewWriter(cfg, topic), topic)
}

func newKafkaRestockPublisher(logger *zap.Logger, writer messageWriter, topic string) *KafkaRestockPublisher {
	return &KafkaRestockPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

// Close закрывает Kafka writer
func (p *KafkaRestockPublisher) Close() error {
	return p.writer.Close()
}

// PublishRestockRequired публикует событие "остаток ниже порога".
// Ключ сообщения - id товара, события одного товара попадают в одну партицию.
func (p *KafkaRestockPublisher) PublishRestockRequired(ctx context.Context, event inventory.RestockEvent) error {
	payload := restockPayload{
		EventID:      uuid.New().String(),
		EventType:    RestockEventType,
		EventVersion: RestockEventVersion,
		OccurredAt:   p.now().UTC().Format(time.RFC3339),
		ItemID:       event.ItemID,
		ItemName:     event.ItemName,
		Quantity:     event.Quantity,
		Threshold:    event.Threshold,
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.ItemID),
		Value: value,
	}
	observability.InjectKafkaHeaders(ctx, &msg)

	log := observability.L(ctx, p.logger)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error("failed to publish restock event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("item_id", event.ItemID),
		)
		return err
	}

	log.Info("restock event published",
		zap.String("topic", p.topic),
		zap.String("event_id", payload.EventID),
		zap.String("item_id", event.ItemID),
	)
	return nil
}
