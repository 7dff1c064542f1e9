package observability

// Config конфигурация OpenTelemetry (traces + metrics + propagator)
type Config struct {
	// Enabled включить экспорт в OTLP collector
	Enabled bool `env:"OTEL_ENABLED" envDefault:"false"`
	// OTLPEndpoint адрес OTLP gRPC (traces + metrics), например "127.0.0.1:4317"
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// SamplingRatio доля трасс для семплирования (0..1), 1.0 = все
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1.0"`
	// ServiceName имя сервиса
	ServiceName string `env:"-"`
	// DeploymentEnvironment окружение (local, docker)
	DeploymentEnvironment string `env:"-"`
	// ServiceVersion опционально, например из build
	ServiceVersion string `env:"SERVICE_VERSION"`
}
