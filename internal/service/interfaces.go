package service

import (
	"context"

	"github.com/shestoi/stocktracker/internal/inventory"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=RestockPublisher --dir=. --output=./mocks --outpkg=mocks

// RestockPublisher доставляет restock-уведомления за пределы сервиса (Kafka, лог).
// Вызывается после снятия блокировки, ошибка не откатывает изменение склада.
type RestockPublisher interface {
	PublishRestockRequired(ctx context.Context, event inventory.RestockEvent) error
}
