package inventory

import "sync"

// RestockEvent - уведомление о том, что остаток товара ниже порога пополнения
type RestockEvent struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// Notifier получает RestockEvent синхронно, внутри вызова AddOrUpdate.
// Реализация не должна обращаться к тому же Inventory.
type Notifier interface {
	NotifyRestock(event RestockEvent)
}

// NotifierFunc позволяет использовать обычную функцию как Notifier
type NotifierFunc func(event RestockEvent)

// NotifyRestock вызывает f(event)
func (f NotifierFunc) NotifyRestock(event RestockEvent) {
	f(event)
}

type discardNotifier struct{}

func (discardNotifier) NotifyRestock(RestockEvent) {}

// Recorder запоминает все полученные события. Используется в тестах и демо.
type Recorder struct {
	mu     sync.Mutex
	events []RestockEvent
}

// NotifyRestock сохраняет событие
func (r *Recorder) NotifyRestock(event RestockEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events возвращает копию накопленных событий
func (r *Recorder) Events() []RestockEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RestockEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Reset очищает накопленные события
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// checkRestock сравнивает текущий остаток с порогом и уведомляет notifier.
// Вызывается только после записи (AddOrUpdate), никогда после Remove.
func (inv *Inventory) checkRestock(rec *record) {
	if rec.item.Quantity >= inv.threshold {
		return
	}
	inv.notifier.NotifyRestock(RestockEvent{
		ItemID:    rec.item.ID,
		ItemName:  rec.item.Name,
		Quantity:  rec.item.Quantity,
		Threshold: inv.threshold,
	})
}
