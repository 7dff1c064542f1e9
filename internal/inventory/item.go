package inventory

import "fmt"

// Item - снимок товара на складе.
// Возвращается по значению: изменение снимка не влияет на состояние Inventory.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

func (i Item) String() string {
	return fmt.Sprintf("%s %s (%s) x%d", i.ID, i.Name, i.Category, i.Quantity)
}

// record - внутренняя запись PrimaryIndex.
// handle выдаётся при создании и не меняется, пока товар существует.
// key - ровно тот ключ, под которым запись сейчас лежит в bucket и ranking.
type record struct {
	item   Item
	handle uint64
	key    entry
}
