package inventory

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/btree"
)

// ErrInvalidThreshold возвращается из New при отрицательном пороге пополнения
var ErrInvalidThreshold = errors.New("restock threshold must not be negative")

// Inventory - склад товаров с двумя согласованными индексами:
// PrimaryIndex (id -> запись) и CategoryIndex (категория -> упорядоченный bucket).
// Дополнительно держит ranking - общий упорядоченный индекс для TopK.
//
// Inventory не потокобезопасен, синхронизацию делает вызывающий код
// (см. internal/service).
type Inventory struct {
	threshold  int
	notifier   Notifier
	byID       map[string]*record
	categories categoryIndex
	ranking    *btree.BTreeG[entry]
	nextHandle uint64
}

// Option настраивает Inventory при создании
type Option func(*Inventory)

// WithNotifier задаёт получателя restock-уведомлений
func WithNotifier(n Notifier) Option {
	return func(inv *Inventory) {
		if n != nil {
			inv.notifier = n
		}
	}
}

// New создаёт пустой Inventory. Порог пополнения фиксируется на всё время жизни.
func New(restockThreshold int, opts ...Option) (*Inventory, error) {
	if restockThreshold < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, restockThreshold)
	}

	inv := &Inventory{
		threshold:  restockThreshold,
		notifier:   discardNotifier{},
		byID:       make(map[string]*record),
		categories: newCategoryIndex(),
		ranking:    newOrderedIndex(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// Threshold возвращает порог пополнения
func (inv *Inventory) Threshold() int {
	return inv.threshold
}

// Len возвращает количество товаров
func (inv *Inventory) Len() int {
	return len(inv.byID)
}

// AddOrUpdate создаёт товар или обновляет существующий.
// Для существующего id имя, категория и количество берутся из аргументов,
// товар переезжает в bucket новой категории.
// После записи проверяется порог пополнения.
func (inv *Inventory) AddOrUpdate(id, name, category string, quantity int) Item {
	rec, ok := inv.byID[id]
	if ok {
		// сначала убираем из индексов по старому ключу, потом меняем запись
		inv.unlink(rec)
	} else {
		inv.nextHandle++
		rec = &record{handle: inv.nextHandle}
		inv.byID[id] = rec
	}

	rec.item = Item{ID: id, Name: name, Category: category, Quantity: quantity}
	inv.link(rec)

	inv.checkRestock(rec)
	return rec.item
}

// Remove удаляет товар. Для неизвестного id ничего не делает и возвращает false.
func (inv *Inventory) Remove(id string) bool {
	rec, ok := inv.byID[id]
	if !ok {
		return false
	}
	inv.unlink(rec)
	delete(inv.byID, id)
	return true
}

// Get возвращает снимок товара по id
func (inv *Inventory) Get(id string) (Item, bool) {
	rec, ok := inv.byID[id]
	if !ok {
		return Item{}, false
	}
	return rec.item, true
}

// ListByCategory возвращает товары категории по убыванию количества.
// Для неизвестной категории - пустой срез.
func (inv *Inventory) ListByCategory(category string) []Item {
	out := make([]Item, 0, inv.categories.size(category))
	inv.categories.ascend(category, func(e entry) bool {
		out = append(out, inv.byID[e.id].item)
		return true
	})
	return out
}

// Categories возвращает отсортированные названия непустых категорий
func (inv *Inventory) Categories() []string {
	return inv.categories.names()
}

// TopK возвращает k товаров с наибольшим количеством, по убыванию.
// При k <= 0 - пустой срез, при k > Len() - все товары.
func (inv *Inventory) TopK(k int) []Item {
	if k <= 0 {
		return []Item{}
	}
	out := make([]Item, 0, min(k, inv.ranking.Len()))
	inv.ranking.Ascend(func(e entry) bool {
		out = append(out, inv.byID[e.id].item)
		return len(out) < k
	})
	return out
}

// All возвращает все товары в порядке их создания
func (inv *Inventory) All() []Item {
	recs := inv.records()
	out := make([]Item, len(recs))
	for i, rec := range recs {
		out[i] = rec.item
	}
	return out
}

// MergeStats - итог MergeFrom
type MergeStats struct {
	Added   int
	Updated int
	Skipped int
}

// MergeFrom переносит товары из other в inv:
//   - отсутствующие в inv добавляются;
//   - присутствующие заменяются, только если у other количество строго больше;
//   - остальные не трогаются (и restock для них не проверяется).
//
// other только читается. Товары other обходятся в порядке их создания в other.
func (inv *Inventory) MergeFrom(other *Inventory) MergeStats {
	var stats MergeStats
	if other == nil || other == inv {
		if other != nil {
			stats.Skipped = other.Len()
		}
		return stats
	}

	for _, theirs := range other.All() {
		mine, ok := inv.byID[theirs.ID]
		switch {
		case !ok:
			stats.Added++
		case theirs.Quantity > mine.item.Quantity:
			stats.Updated++
		default:
			stats.Skipped++
			continue
		}
		inv.AddOrUpdate(theirs.ID, theirs.Name, theirs.Category, theirs.Quantity)
	}
	return stats
}

// link кладёт запись в bucket её категории и в ranking под свежим ключом
func (inv *Inventory) link(rec *record) {
	rec.key = entry{quantity: rec.item.Quantity, handle: rec.handle, id: rec.item.ID}
	inv.categories.insert(rec.item.Category, rec.key)
	inv.ranking.ReplaceOrInsert(rec.key)
}

// unlink убирает запись из индексов по сохранённому ключу, а не по текущим полям
func (inv *Inventory) unlink(rec *record) {
	inv.categories.remove(rec.item.Category, rec.key)
	inv.ranking.Delete(rec.key)
}

func (inv *Inventory) records() []*record {
	recs := make([]*record, 0, len(inv.byID))
	for _, rec := range inv.byID {
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *record) int {
		return cmp.Compare(a.handle, b.handle)
	})
	return recs
}
