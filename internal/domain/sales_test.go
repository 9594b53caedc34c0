package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidOrder(t *testing.T, saleID string) *Order {
	t.Helper()
	o := NewOrder("Table 3")
	o.Add(mustLine(t, "Salade César", "8.50", "10", "alimentation"))
	o.Add(mustLine(t, "Salade César", "8.50", "10", "alimentation"))
	o.Add(mustLine(t, "Steak", "18.00", "10", "alimentation"))
	o.PaymentMethod = "Carte Bancaire"
	o.Paid = true
	o.SaleID = saleID
	return o
}

func TestDailySalesRecordSale(t *testing.T) {
	day := NewDailySales("2026-08-31")
	o := paidOrder(t, "sale-1")
	at := time.Date(2026, 8, 31, 13, 45, 12, 0, time.Local)

	day.RecordSale(o.Record(), o.VATSummary(), at)

	assert.Equal(t, 1, day.TransactionCount)
	assert.Equal(t, "35.00", day.TotalInclusive.StringFixed(2))
	assert.Equal(t, "3.18", day.TotalTax.StringFixed(2))
	assert.Equal(t, "35.00", day.ByPaymentMethod["Carte Bancaire"].StringFixed(2))
	assert.Equal(t, "35.00", day.ByRate["10"].Inclusive.StringFixed(2))
	require.Len(t, day.Transactions, 1)
	assert.Equal(t, "13:45:12", day.Transactions[0].Time)
	assert.Equal(t, "Table 3", day.Transactions[0].Table)
}

func TestDailySalesSameSaleIDCountedOnce(t *testing.T) {
	day := NewDailySales("2026-08-31")
	o := paidOrder(t, "sale-1")
	at := time.Now()

	day.RecordSale(o.Record(), o.VATSummary(), at)
	day.RecordSale(o.Record(), o.VATSummary(), at)

	assert.Equal(t, 1, day.TransactionCount)
	assert.Equal(t, "35.00", day.TotalInclusive.StringFixed(2))
}

func TestDailySalesCloneIsDeep(t *testing.T) {
	day := NewDailySales("2026-08-31")
	o := paidOrder(t, "sale-1")
	day.RecordSale(o.Record(), o.VATSummary(), time.Now())

	snap := day.Clone()
	o2 := paidOrder(t, "sale-2")
	day.RecordSale(o2.Record(), o2.VATSummary(), time.Now())

	assert.Equal(t, 1, snap.TransactionCount)
	assert.Equal(t, 2, day.TransactionCount)
	assert.Equal(t, "35.00", snap.ByPaymentMethod["Carte Bancaire"].StringFixed(2))
	assert.Len(t, snap.Transactions, 1)
}

func TestZReportJSONFlattensAggregate(t *testing.T) {
	day := NewDailySales("2026-08-31")
	o := paidOrder(t, "sale-1")
	day.RecordSale(o.Record(), o.VATSummary(), time.Now())

	report := ZReport{
		Type:           ZReportType,
		IssuedAt:       "2026-08-31 23:55:00",
		AccountingDate: "2026-08-31",
		Number:         7,
		DailySales:     *day.Clone(),
	}
	data, err := json.Marshal(report)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "RAPPORT_Z", raw["type"])
	assert.Equal(t, float64(7), raw["numero_rapport"])
	// Aggregate fields sit at the top level, same shape as the daily file.
	assert.Equal(t, float64(1), raw["nombre_transactions"])
	assert.Contains(t, raw, "total_ventes_ttc")
	assert.Contains(t, raw, "ventes_par_taux")
}
