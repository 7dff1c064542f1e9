package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shestoi/stocktracker/internal/inventory"
	"github.com/shestoi/stocktracker/internal/service/mocks"
)

func newService(t *testing.T, publisher RestockPublisher, threshold int) *InventoryService {
	t.Helper()
	s, err := NewInventoryService(zap.NewNop(), publisher, threshold)
	require.NoError(t, err)
	return s
}

func TestNewInventoryService_InvalidThreshold(t *testing.T) {
	s, err := NewInventoryService(zap.NewNop(), mocks.NewRestockPublisher(t), -5)
	require.ErrorIs(t, err, inventory.ErrInvalidThreshold)
	require.Nil(t, s)
}

func TestInventoryService_AddOrUpdateItem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		input        ItemInput
		setupMock    func(*mocks.RestockPublisher)
		expectedItem inventory.Item
	}{
		{
			name:         "above threshold: nothing published",
			input:        ItemInput{ID: "101", Name: "Laptop", Category: "Electronics", Quantity: 50},
			setupMock:    func(*mocks.RestockPublisher) {},
			expectedItem: inventory.Item{ID: "101", Name: "Laptop", Category: "Electronics", Quantity: 50},
		},
		{
			name:  "below threshold: restock published",
			input: ItemInput{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 5},
			setupMock: func(m *mocks.RestockPublisher) {
				m.On("PublishRestockRequired", ctx, inventory.RestockEvent{
					ItemID: "103", ItemName: "Apple", Quantity: 5, Threshold: 10,
				}).Return(nil).Once()
			},
			expectedItem: inventory.Item{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 5},
		},
		{
			name:  "publisher error does not undo the write",
			input: ItemInput{ID: "104", Name: "Pear", Category: "Groceries", Quantity: 1},
			setupMock: func(m *mocks.RestockPublisher) {
				m.On("PublishRestockRequired", ctx, mock.AnythingOfType("inventory.RestockEvent")).
					Return(errors.New("kafka unavailable")).Once()
			},
			expectedItem: inventory.Item{ID: "104", Name: "Pear", Category: "Groceries", Quantity: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			publisher := mocks.NewRestockPublisher(t)
			tt.setupMock(publisher)
			s := newService(t, publisher, 10)

			// Act
			item := s.AddOrUpdateItem(ctx, tt.input)

			// Assert
			require.Equal(t, tt.expectedItem, item)
			stored, err := s.GetItem(ctx, tt.input.ID)
			require.NoError(t, err)
			require.Equal(t, tt.expectedItem, stored)
		})
	}
}

func TestInventoryService_RestockThenRefill(t *testing.T) {
	ctx := context.Background()
	publisher := mocks.NewRestockPublisher(t)
	publisher.On("PublishRestockRequired", ctx, mock.MatchedBy(func(e inventory.RestockEvent) bool {
		return e.ItemID == "103"
	})).Return(nil).Once()

	s := newService(t, publisher, 10)
	s.AddOrUpdateItem(ctx, ItemInput{ID: "101", Name: "Laptop", Category: "Electronics", Quantity: 50})
	s.AddOrUpdateItem(ctx, ItemInput{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 5})
	s.AddOrUpdateItem(ctx, ItemInput{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 25})

	require.Equal(t, []inventory.Item{
		{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 25},
	}, s.ListByCategory(ctx, "Groceries"))
}

func TestInventoryService_RemoveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newService(t, mocks.NewRestockPublisher(t), 0)

	s.AddOrUpdateItem(ctx, ItemInput{ID: "1", Name: "Fan", Category: "Electronics", Quantity: 3})

	require.True(t, s.RemoveItem(ctx, "1"))
	require.False(t, s.RemoveItem(ctx, "1"))

	_, err := s.GetItem(ctx, "1")
	require.ErrorIs(t, err, ErrItemNotFound)
	require.Empty(t, s.ListAll(ctx))
	require.Empty(t, s.Categories(ctx))
}

func TestInventoryService_TopK(t *testing.T) {
	ctx := context.Background()
	s := newService(t, mocks.NewRestockPublisher(t), 0)

	s.AddOrUpdateItem(ctx, ItemInput{ID: "101", Name: "Laptop", Category: "Electronics", Quantity: 50})
	s.AddOrUpdateItem(ctx, ItemInput{ID: "102", Name: "Chair", Category: "Furniture", Quantity: 20})
	s.AddOrUpdateItem(ctx, ItemInput{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 5})
	s.AddOrUpdateItem(ctx, ItemInput{ID: "104", Name: "Table", Category: "Furniture", Quantity: 15})

	top := s.TopK(ctx, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "101", top[0].ID)
	assert.Equal(t, "102", top[1].ID)
	assert.Empty(t, s.TopK(ctx, 0))
	assert.Len(t, s.TopK(ctx, 10), 4)
	assert.Equal(t, []string{"Electronics", "Furniture", "Groceries"}, s.Categories(ctx))
}

func TestInventoryService_MergeFrom(t *testing.T) {
	ctx := context.Background()

	a := newService(t, mocks.NewRestockPublisher(t), 10)
	a.AddOrUpdateItem(ctx, ItemInput{ID: "102", Name: "Chair", Category: "Furniture", Quantity: 20})

	b := newService(t, mocks.NewRestockPublisher(t), 10)
	b.AddOrUpdateItem(ctx, ItemInput{ID: "102", Name: "Chair", Category: "Furniture", Quantity: 25})
	b.AddOrUpdateItem(ctx, ItemInput{ID: "105", Name: "Fan", Category: "Electronics", Quantity: 30})

	stats := a.MergeFrom(ctx, b)
	require.Equal(t, inventory.MergeStats{Added: 1, Updated: 1}, stats)

	chair, err := a.GetItem(ctx, "102")
	require.NoError(t, err)
	require.Equal(t, 25, chair.Quantity)

	fan, err := a.GetItem(ctx, "105")
	require.NoError(t, err)
	require.Equal(t, 30, fan.Quantity)

	require.Len(t, b.ListAll(ctx), 2)
}

func TestInventoryService_MergeFromSelf(t *testing.T) {
	ctx := context.Background()
	s := newService(t, mocks.NewRestockPublisher(t), 0)
	s.AddOrUpdateItem(ctx, ItemInput{ID: "1", Name: "Fan", Category: "Electronics", Quantity: 3})
	before := s.ListAll(ctx)

	stats := s.MergeFrom(ctx, s)

	require.Equal(t, inventory.MergeStats{Skipped: 1}, stats)
	require.Equal(t, before, s.ListAll(ctx))
	require.Equal(t, inventory.MergeStats{}, s.MergeFrom(ctx, nil))
}

func TestInventoryService_MergeItemsPublishesOnlyWrittenEntries(t *testing.T) {
	ctx := context.Background()
	publisher := mocks.NewRestockPublisher(t)
	s := newService(t, publisher, 10)

	publisher.On("PublishRestockRequired", ctx, mock.Anything).Return(nil).Once()
	s.AddOrUpdateItem(ctx, ItemInput{ID: "1", Name: "Bolt", Category: "Hardware", Quantity: 5})

	// id 1 не растёт (skip), id 2 новый и ниже порога
	publisher.On("PublishRestockRequired", ctx, inventory.RestockEvent{
		ItemID: "2", ItemName: "Nut", Quantity: 3, Threshold: 10,
	}).Return(nil).Once()

	stats := s.MergeItems(ctx, []ItemInput{
		{ID: "1", Name: "Bolt", Category: "Hardware", Quantity: 4},
		{ID: "2", Name: "Nut", Category: "Hardware", Quantity: 3},
	})

	require.Equal(t, inventory.MergeStats{Added: 1, Skipped: 1}, stats)
}

func TestInventoryService_LogsRestock(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	s, err := NewInventoryService(logger, NewLoggingRestockPublisher(logger), 10)
	require.NoError(t, err)

	s.AddOrUpdateItem(ctx, ItemInput{ID: "103", Name: "Apple", Category: "Groceries", Quantity: 5})

	require.Equal(t, 1, logs.FilterMessage("restock notification raised").Len())
	warn := logs.FilterMessage("item below restock threshold").All()
	require.Len(t, warn, 1)
	require.Equal(t, zapcore.WarnLevel, warn[0].Level)
	require.Equal(t, "103", warn[0].ContextMap()["item_id"])
}

func TestInventoryService_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := newService(t, NewLoggingRestockPublisher(zap.NewNop()), 5)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := fmt.Sprintf("w%d-%d", w, i%50)
				s.AddOrUpdateItem(ctx, ItemInput{ID: id, Name: id, Category: fmt.Sprintf("c%d", i%3), Quantity: i})
				if i%7 == 0 {
					s.RemoveItem(ctx, id)
				}
				_ = s.TopK(ctx, 3)
			}
		}(w)
	}
	wg.Wait()

	all := s.ListAll(ctx)
	total := 0
	for _, category := range s.Categories(ctx) {
		list := s.ListByCategory(ctx, category)
		for i := 1; i < len(list); i++ {
			require.GreaterOrEqual(t, list[i-1].Quantity, list[i].Quantity)
		}
		total += len(list)
	}
	require.Equal(t, len(all), total)
}
