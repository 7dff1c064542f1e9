package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/shestoi/stocktracker/internal/api/http"
	"github.com/shestoi/stocktracker/internal/config"
	kafkaevent "github.com/shestoi/stocktracker/internal/event/kafka"
	"github.com/shestoi/stocktracker/internal/service"
	platformlogging "github.com/shestoi/stocktracker/platform/logging"
	"github.com/shestoi/stocktracker/platform/observability"
	platformshutdown "github.com/shestoi/stocktracker/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown StockTracker
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	ready       *atomic.Bool
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости StockTracker
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: config.ServiceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: logger: %w", op, err)
	}
	cfg.Log(logger)

	otelShutdown, err := observability.Init(context.Background(), cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("%s: observability: %w", op, err)
	}

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	// функции выполняются в обратном порядке: readiness -> http -> kafka -> otel
	shutdownMgr.Add("otel", otelShutdown)

	var publisher service.RestockPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := kafkaevent.NewKafkaRestockPublisher(logger, cfg.Kafka, cfg.RestockTopic)
		shutdownMgr.Add("kafka_writer", platformshutdown.Close(kafkaPublisher))
		publisher = kafkaPublisher
		logger.Info("Restock notifications go to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.RestockTopic))
	} else {
		publisher = service.NewLoggingRestockPublisher(logger)
		logger.Info("Kafka disabled, restock notifications go to log")
	}

	inventoryService, err := service.NewInventoryService(logger, publisher, cfg.RestockThreshold)
	if err != nil {
		shutdownMgr.Shutdown()
		return nil, fmt.Errorf("%s: inventory service: %w", op, err)
	}

	ready := &atomic.Bool{}
	handler := httpapi.NewHandler(inventoryService, logger)
	router := httpapi.NewRouter(handler, ready.Load, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))
	shutdownMgr.Add("readiness", platformshutdown.SetNotReady(ready))

	ready.Store(true)

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
		ready:       ready,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext как Run, но shutdown начинается и при отмене ctx
func (a *App) RunContext(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting StockTracker", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// serveErr читается только после wg.Wait
	var serveErr error
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serveErr = err
			cancel()
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait(ctx)

	a.wg.Wait()
	a.logger.Info("StockTracker stopped")

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}
