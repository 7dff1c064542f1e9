package inventory

import (
	"sort"

	"github.com/google/btree"
)

// btreeDegree - степень B-дерева для bucket и ranking
const btreeDegree = 8

// entry - ключ упорядоченного индекса.
// Хранит копию quantity, поэтому изменение записи не ломает порядок внутри дерева.
type entry struct {
	quantity int
	handle   uint64
	id       string
}

// lessEntry: количество по убыванию, при равенстве - более старый handle первым
func lessEntry(a, b entry) bool {
	if a.quantity != b.quantity {
		return a.quantity > b.quantity
	}
	return a.handle < b.handle
}

func newOrderedIndex() *btree.BTreeG[entry] {
	return btree.NewG[entry](btreeDegree, lessEntry)
}

// categoryIndex хранит для каждой категории упорядоченный bucket.
// Пустые bucket удаляются сразу, поэтому каждая категория в map непустая.
type categoryIndex struct {
	buckets map[string]*btree.BTreeG[entry]
}

func newCategoryIndex() categoryIndex {
	return categoryIndex{buckets: make(map[string]*btree.BTreeG[entry])}
}

func (c *categoryIndex) insert(category string, key entry) {
	b, ok := c.buckets[category]
	if !ok {
		b = newOrderedIndex()
		c.buckets[category] = b
	}
	b.ReplaceOrInsert(key)
}

// remove удаляет ключ из bucket категории. Возвращает false, если ключа там не было.
func (c *categoryIndex) remove(category string, key entry) bool {
	b, ok := c.buckets[category]
	if !ok {
		return false
	}
	_, found := b.Delete(key)
	if b.Len() == 0 {
		delete(c.buckets, category)
	}
	return found
}

func (c *categoryIndex) ascend(category string, fn func(entry) bool) {
	b, ok := c.buckets[category]
	if !ok {
		return
	}
	b.Ascend(fn)
}

func (c *categoryIndex) size(category string) int {
	b, ok := c.buckets[category]
	if !ok {
		return 0
	}
	return b.Len()
}

// names возвращает отсортированный список категорий
func (c *categoryIndex) names() []string {
	out := make([]string, 0, len(c.buckets))
	for name := range c.buckets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
