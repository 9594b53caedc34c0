// Package orderbook tracks the open order of every table and which table the
// operator is currently serving.
package orderbook

import (
	"sync"

	"caisse-system/internal/domain"
)

// Book owns all open orders, keyed by table ID. Table IDs are opaque; any
// validation against the configured table list belongs to the caller.
type Book struct {
	mu           sync.Mutex
	currentTable string
	orders       map[string]*domain.Order
}

func New(initialTable string) *Book {
	return &Book{
		currentTable: initialTable,
		orders:       make(map[string]*domain.Order),
	}
}

// CurrentTable returns the table the operator is serving.
func (b *Book) CurrentTable() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentTable
}

// CurrentOrder returns the current table's order, creating an empty one on
// first access.
func (b *Book) CurrentOrder() *domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orderLocked(b.currentTable)
}

// SwitchTable changes the current table. The order is created lazily on the
// next access, not here.
func (b *Book) SwitchTable(table string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentTable = table
}

// ClearCurrentOrder replaces the current table's order with a fresh empty one.
// Used after payment or cancellation; the old order is discarded.
func (b *Book) ClearCurrentOrder() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[b.currentTable] = domain.NewOrder(b.currentTable)
}

func (b *Book) orderLocked(table string) *domain.Order {
	o, ok := b.orders[table]
	if !ok {
		o = domain.NewOrder(table)
		b.orders[table] = o
	}
	return o
}
