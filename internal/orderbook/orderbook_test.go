package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caisse-system/internal/domain"
)

func addItem(t *testing.T, o *domain.Order, name string) {
	t.Helper()
	li, err := domain.NewLineItem(name, decimal.NewFromFloat(8.5), decimal.NewFromInt(10), "alimentation")
	require.NoError(t, err)
	o.Add(li)
}

func TestCurrentOrderCreatedLazily(t *testing.T) {
	b := New("Table 1")
	o := b.CurrentOrder()
	require.NotNil(t, o)
	assert.Equal(t, "Table 1", o.Table)
	assert.True(t, o.IsEmpty())
	// Same order on repeated access.
	assert.Same(t, o, b.CurrentOrder())
}

func TestSwitchTableKeepsOrders(t *testing.T) {
	b := New("Table 1")
	addItem(t, b.CurrentOrder(), "Salade César")

	b.SwitchTable("Table 2")
	assert.Equal(t, "Table 2", b.CurrentTable())
	assert.True(t, b.CurrentOrder().IsEmpty())
	assert.Equal(t, "Table 2", b.CurrentOrder().Table)

	b.SwitchTable("Table 1")
	require.Len(t, b.CurrentOrder().Lines, 1)
	assert.Equal(t, "Salade César", b.CurrentOrder().Lines[0].Name)
}

func TestClearCurrentOrder(t *testing.T) {
	b := New("Table 1")
	old := b.CurrentOrder()
	addItem(t, old, "Steak")

	b.ClearCurrentOrder()
	fresh := b.CurrentOrder()
	assert.NotSame(t, old, fresh)
	assert.True(t, fresh.IsEmpty())
	assert.Equal(t, "Table 1", fresh.Table)
}
