package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"

	platformkafka "github.com/shestoi/stocktracker/platform/kafka"
	"github.com/shestoi/stocktracker/platform/observability"
)

// ServiceName имя сервиса в логах и ресурсе OpenTelemetry
const ServiceName = "stocktracker"

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// Config содержит конфигурацию StockTracker
type Config struct {
	AppEnv Env `env:"APP_ENV" envDefault:"local"`
	// HTTPAddr пустой -> зависит от APP_ENV (127.0.0.1:8080 / 0.0.0.0:8080)
	HTTPAddr        string        `env:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// RestockThreshold порог пополнения: quantity < порога -> уведомление
	RestockThreshold int    `env:"RESTOCK_THRESHOLD" envDefault:"10"`
	RestockTopic     string `env:"RESTOCK_TOPIC" envDefault:"inventory.restock.required"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	Kafka         platformkafka.Config
	Observability observability.Config
}

// Load загружает конфигурацию из переменных окружения
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.HTTPAddr == "" {
		if cfg.AppEnv == EnvDocker {
			cfg.HTTPAddr = "0.0.0.0:8080"
		} else {
			cfg.HTTPAddr = "127.0.0.1:8080"
		}
	}

	cfg.Observability.ServiceName = ServiceName
	cfg.Observability.DeploymentEnvironment = string(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.AppEnv != EnvLocal && c.AppEnv != EnvDocker {
		return fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", c.AppEnv)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.RestockThreshold < 0 {
		return fmt.Errorf("RESTOCK_THRESHOLD must not be negative")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
		}
		if c.RestockTopic == "" {
			return fmt.Errorf("RESTOCK_TOPIC is required when KAFKA_ENABLED=true")
		}
	}
	if c.Observability.Enabled && c.Observability.OTLPEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true")
	}
	if c.Observability.SamplingRatio < 0 || c.Observability.SamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be in [0, 1]")
	}
	return nil
}

// Log выводит конфигурацию в лог
func (c Config) Log(logger *zap.Logger) {
	logger.Info("config loaded",
		zap.String("app_env", string(c.AppEnv)),
		zap.String("http_addr", c.HTTPAddr),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Int("restock_threshold", c.RestockThreshold),
		zap.Bool("kafka_enabled", c.Kafka.Enabled),
		zap.Strings("kafka_brokers", c.Kafka.Brokers),
		zap.String("restock_topic", c.RestockTopic),
		zap.Bool("otel_enabled", c.Observability.Enabled),
		zap.String("otel_endpoint", c.Observability.OTLPEndpoint),
	)
}
