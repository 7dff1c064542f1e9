package kafka

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/segmentio/kafka-go"
)

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Enabled - публиковать ли события в Kafka. При false сервис обходится логами.
	Enabled bool `env:"KAFKA_ENABLED" envDefault:"false"`
	// Brokers - список брокеров через запятую:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:19092"`
	// WriteTimeout - таймаут записи одного батча
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки
func DefaultConfig() Config {
	return Config{
		Brokers:      []string{"localhost:19092"},
		WriteTimeout: 5 * time.Second,
	}
}

// LoadEnv загружает конфигурацию из переменных окружения (caarlos0/env)
func LoadEnv(cfg *Config) error {
	return env.Parse(cfg)
}

// NewWriter создаёт kafka.Writer для одного топика.
// Ключ сообщения определяет партицию (Hash), поэтому события одного товара идут по порядку.
func NewWriter(cfg Config, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}
