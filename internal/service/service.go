package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shestoi/stocktracker/internal/inventory"
	"github.com/shestoi/stocktracker/platform/observability"
)

const meterName = "github.com/shestoi/stocktracker/internal/service"

// ErrItemNotFound возвращается, когда товара с таким id нет
var ErrItemNotFound = errors.New("item not found")

// ItemInput - данные для записи товара
type ItemInput struct {
	ID       string
	Name     string
	Category string
	Quantity int
}

// InventoryService - потокобезопасная обёртка над inventory.Inventory.
// Одна эксклюзивная блокировка на экземпляр, чтения идут под RLock.
// Restock-события копятся под блокировкой и публикуются после её снятия.
type InventoryService struct {
	mu      sync.RWMutex
	inv     *inventory.Inventory
	pending []inventory.RestockEvent

	logger         *zap.Logger
	publisher      RestockPublisher
	restockCounter metric.Int64Counter
}

// NewInventoryService создаёт сервис с пустым складом.
// Отрицательный restockThreshold - ошибка конструирования (inventory.ErrInvalidThreshold).
func NewInventoryService(logger *zap.Logger, publisher RestockPublisher, restockThreshold int) (*InventoryService, error) {
	s := &InventoryService{
		logger:    logger,
		publisher: publisher,
	}

	inv, err := inventory.New(restockThreshold, inventory.WithNotifier(inventory.NotifierFunc(s.collectLocked)))
	if err != nil {
		return nil, err
	}
	s.inv = inv

	counter, err := otel.Meter(meterName).Int64Counter(
		"stocktracker.restock.notifications",
		metric.WithDescription("Number of restock notifications raised"),
	)
	if err != nil {
		return nil, fmt.Errorf("restock counter: %w", err)
	}
	s.restockCounter = counter

	return s, nil
}

// Threshold возвращает порог пополнения
func (s *InventoryService) Threshold() int {
	return s.inv.Threshold()
}

// AddOrUpdateItem создаёт или обновляет товар и возвращает его новое состояние
func (s *InventoryService) AddOrUpdateItem(ctx context.Context, in ItemInput) inventory.Item {
	s.mu.Lock()
	item := s.inv.AddOrUpdate(in.ID, in.Name, in.Category, in.Quantity)
	events := s.drainLocked()
	s.mu.Unlock()

	observability.L(ctx, s.logger).Info("item stored",
		zap.String("item_id", item.ID),
		zap.String("category", item.Category),
		zap.Int("quantity", item.Quantity),
	)

	s.publish(ctx, events)
	return item
}

// RemoveItem удаляет товар. Для неизвестного id возвращает false без ошибки.
func (s *InventoryService) RemoveItem(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed := s.inv.Remove(id)
	s.mu.Unlock()

	if removed {
		observability.L(ctx, s.logger).Info("item removed", zap.String("item_id", id))
	} else {
		observability.L(ctx, s.logger).Debug("remove of unknown item ignored", zap.String("item_id", id))
	}
	return removed
}

// GetItem возвращает товар по id или ErrItemNotFound
func (s *InventoryService) GetItem(ctx context.Context, id string) (inventory.Item, error) {
	s.mu.RLock()
	item, ok := s.inv.Get(id)
	s.mu.RUnlock()

	if !ok {
		return inventory.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// ListByCategory возвращает товары категории по убыванию количества
func (s *InventoryService) ListByCategory(ctx context.Context, category string) []inventory.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.ListByCategory(category)
}

// TopK возвращает k товаров с наибольшим количеством
func (s *InventoryService) TopK(ctx context.Context, k int) []inventory.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.TopK(k)
}

// ListAll возвращает все товары в порядке создания
func (s *InventoryService) ListAll(ctx context.Context) []inventory.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.All()
}

// Categories возвращает непустые категории
func (s *InventoryService) Categories(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.Categories()
}

// MergeFrom вливает склад other в s.
// other снимается под своим RLock до захвата Lock на s, вложенных блокировок нет.
func (s *InventoryService) MergeFrom(ctx context.Context, other *InventoryService) inventory.MergeStats {
	if other == nil {
		return inventory.MergeStats{}
	}
	if other == s {
		// merge с самим собой ничего не меняет
		s.mu.RLock()
		n := s.inv.Len()
		s.mu.RUnlock()
		return inventory.MergeStats{Skipped: n}
	}

	other.mu.RLock()
	items := other.inv.All()
	other.mu.RUnlock()

	return s.mergeItems(ctx, items)
}

// MergeItems вливает набор товаров так же, как MergeFrom вливает другой склад.
// При повторе id во входных данных берётся последнее значение.
func (s *InventoryService) MergeItems(ctx context.Context, in []ItemInput) inventory.MergeStats {
	items := make([]inventory.Item, len(in))
	for i, it := range in {
		items[i] = inventory.Item{ID: it.ID, Name: it.Name, Category: it.Category, Quantity: it.Quantity}
	}
	return s.mergeItems(ctx, items)
}

func (s *InventoryService) mergeItems(ctx context.Context, items []inventory.Item) inventory.MergeStats {
	// временный склад без уведомлений: restock считается только на стороне s
	source, _ := inventory.New(0) // порог 0 всегда валиден
	for _, it := range items {
		source.AddOrUpdate(it.ID, it.Name, it.Category, it.Quantity)
	}

	s.mu.Lock()
	stats := s.inv.MergeFrom(source)
	events := s.drainLocked()
	s.mu.Unlock()

	observability.L(ctx, s.logger).Info("inventory merged",
		zap.Int("added", stats.Added),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
	)

	s.publish(ctx, events)
	return stats
}

// collectLocked вызывается inventory синхронно, под s.mu
func (s *InventoryService) collectLocked(event inventory.RestockEvent) {
	s.pending = append(s.pending, event)
}

func (s *InventoryService) drainLocked() []inventory.RestockEvent {
	events := s.pending
	s.pending = nil
	return events
}

func (s *InventoryService) publish(ctx context.Context, events []inventory.RestockEvent) {
	log := observability.L(ctx, s.logger)
	for _, event := range events {
		s.restockCounter.Add(ctx, 1)

		log.Info("restock notification raised",
			zap.String("item_id", event.ItemID),
			zap.String("item_name", event.ItemName),
			zap.Int("quantity", event.Quantity),
			zap.Int("threshold", event.Threshold),
		)

		if err := s.publisher.PublishRestockRequired(ctx, event); err != nil {
			log.Error("failed to publish restock notification",
				zap.Error(err),
				zap.String("item_id", event.ItemID),
			)
		}
	}
}
