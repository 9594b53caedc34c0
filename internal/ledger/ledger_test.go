package ledger

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caisse-system/internal/common/logger"
	"caisse-system/internal/domain"
)

var testTime = time.Date(2026, 8, 31, 13, 45, 0, 0, time.Local)

func newTestLedger(t *testing.T, dir string) *Ledger {
	t.Helper()
	l, err := NewWithClock(dir, logger.NewWithWriter("ledger", io.Discard), func() time.Time { return testTime })
	require.NoError(t, err)
	return l
}

func table3Order(t *testing.T) *domain.Order {
	t.Helper()
	o := domain.NewOrder("Table 3")
	salade, err := domain.NewLineItem("Salade César", decimal.NewFromFloat(8.5), decimal.NewFromInt(10), "alimentation")
	require.NoError(t, err)
	o.Add(salade)
	o.Add(salade)
	steak, err := domain.NewLineItem("Steak", decimal.NewFromFloat(18), decimal.NewFromInt(10), "alimentation")
	require.NoError(t, err)
	o.Add(steak)
	return o
}

func TestRecordSaleUpdatesAggregateAndArchive(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(t, dir)
	o := table3Order(t)

	rec, err := l.RecordSale(o, "Carte Bancaire")
	require.NoError(t, err)
	assert.True(t, o.Paid)
	assert.NotEmpty(t, rec.SaleID)
	assert.Equal(t, "35.00", rec.Total.StringFixed(2))

	day := l.CurrentDaySummary()
	assert.Equal(t, 1, day.TransactionCount)
	assert.Equal(t, "35.00", day.TotalInclusive.StringFixed(2))
	assert.Equal(t, "35.00", day.ByPaymentMethod["Carte Bancaire"].StringFixed(2))

	// Archive segment for August 2026, historical layout.
	archivePath := filepath.Join(dir, "Vente Août 2026", "vente.json")
	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	var records []domain.OrderRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Table 3", records[0].Table)
	assert.True(t, records[0].Paid)

	// Daily file persisted after the mutation.
	_, err = os.Stat(filepath.Join(dir, "ventes_jour_2026-08-31.json"))
	assert.NoError(t, err)
}

func TestRecordSaleRejectsEmptyOrder(t *testing.T) {
	l := newTestLedger(t, t.TempDir())
	_, err := l.RecordSale(domain.NewOrder("Table 1"), "Espèces")
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestAggregateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(t, dir)
	_, err := l.RecordSale(table3Order(t), "Espèces")
	require.NoError(t, err)

	restarted := newTestLedger(t, dir)
	day := restarted.CurrentDaySummary()
	assert.Equal(t, 1, day.TransactionCount)
	assert.Equal(t, "35.00", day.TotalInclusive.StringFixed(2))
	assert.Equal(t, "35.00", day.ByRate["10"].Inclusive.StringFixed(2))
}

func TestRecordSaleRetryDoesNotDoubleCount(t *testing.T) {
	// Simulate a crash after the archive write but before the aggregate
	// write: the archive entry exists, the aggregate does not know the sale.
	dir := t.TempDir()
	l := newTestLedger(t, dir)
	o := table3Order(t)
	o.SaleID = "sale-fixed"
	o.PaymentMethod = "Carte Bancaire"
	o.Paid = true
	require.NoError(t, l.archive.append(o.Record(), testTime))

	// The caller retries the whole RecordSale with the same order.
	_, err := l.RecordSale(o, "Carte Bancaire")
	require.NoError(t, err)

	records, err := l.MonthArchive(testTime)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, l.CurrentDaySummary().TransactionCount)
}

func TestRecordSaleCalledTwiceCountsOnce(t *testing.T) {
	l := newTestLedger(t, t.TempDir())
	o := table3Order(t)
	_, err := l.RecordSale(o, "Carte Bancaire")
	require.NoError(t, err)
	// Replaying the already-recorded order changes nothing.
	_, err = l.RecordSale(o, "Carte Bancaire")
	require.NoError(t, err)

	records, err := l.MonthArchive(testTime)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, l.CurrentDaySummary().TransactionCount)
}

func TestCorruptDailyFileFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ventes_jour_2026-08-31.json"), []byte("{broken"), 0o644))

	l := newTestLedger(t, dir)
	day := l.CurrentDaySummary()
	assert.Equal(t, 0, day.TransactionCount)
	assert.Equal(t, "2026-08-31", day.Date)
}

func TestGenerateZReportSnapshotsAndResets(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(t, dir)
	_, err := l.RecordSale(table3Order(t), "Carte Bancaire")
	require.NoError(t, err)
	before := l.CurrentDaySummary()

	report, err := l.GenerateZReport()
	require.NoError(t, err)
	assert.Equal(t, domain.ZReportType, report.Type)
	assert.Equal(t, 1, report.Number)
	assert.Equal(t, "2026-08-31", report.AccountingDate)
	assert.Equal(t, before.TransactionCount, report.TransactionCount)
	assert.True(t, report.TotalInclusive.Equal(before.TotalInclusive))
	assert.True(t, report.TotalTax.Equal(before.TotalTax))

	after := l.CurrentDaySummary()
	assert.Equal(t, 0, after.TransactionCount)
	assert.True(t, after.TotalInclusive.IsZero())
	assert.True(t, after.TotalTax.IsZero())
	assert.Empty(t, after.ByRate)

	// Report file named with the zero-padded number and the date.
	path := filepath.Join(dir, "rapports_z", "rapport_z_0001_2026-08-31.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "RAPPORT_Z", raw["type"])
	assert.Equal(t, float64(1), raw["numero_rapport"])
	assert.Equal(t, float64(1), raw["nombre_transactions"])
}

func TestZReportNumbersIncreaseAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	l := newTestLedger(t, dir)
	r1, err := l.GenerateZReport()
	require.NoError(t, err)
	r2, err := l.GenerateZReport()
	require.NoError(t, err)

	restarted := newTestLedger(t, dir)
	r3, err := restarted.GenerateZReport()
	require.NoError(t, err)

	assert.Equal(t, 1, r1.Number)
	assert.Equal(t, 2, r2.Number)
	assert.Equal(t, 3, r3.Number)
}

func TestZReportFilesAreNeverOverwritten(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(t, dir)
	r1, err := l.GenerateZReport()
	require.NoError(t, err)
	r2, err := l.GenerateZReport()
	require.NoError(t, err)
	assert.NotEqual(t, r1.Number, r2.Number)

	matches, err := filepath.Glob(filepath.Join(dir, "rapports_z", "rapport_z_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMonthFolderUsesFrenchMonths(t *testing.T) {
	assert.Equal(t, "Vente Janvier 2026", MonthFolder(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Vente Août 2026", MonthFolder(testTime))
	assert.Equal(t, "Vente Décembre 2025", MonthFolder(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestEndToEndDay(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(t, dir)

	// Table 3: 2x Salade César (8.50, 10%) + Steak (18.00, 10%).
	o := table3Order(t)
	assert.Equal(t, "35.00", o.Total().StringFixed(2))
	summary := o.VATSummary()
	assert.Equal(t, "35.00", summary["10"].Inclusive.StringFixed(2))
	assert.Equal(t, "3.18", summary["10"].Tax.StringFixed(2))

	_, err := l.RecordSale(o, "Carte Bancaire")
	require.NoError(t, err)
	day := l.CurrentDaySummary()
	assert.Equal(t, 1, day.TransactionCount)
	assert.Equal(t, "35.00", day.TotalInclusive.StringFixed(2))
	assert.Equal(t, "35.00", day.ByPaymentMethod["Carte Bancaire"].StringFixed(2))

	report, err := l.GenerateZReport()
	require.NoError(t, err)
	assert.True(t, report.TotalInclusive.Equal(day.TotalInclusive))
	assert.Equal(t, day.TransactionCount, report.TransactionCount)

	reset := l.CurrentDaySummary()
	assert.Equal(t, 0, reset.TransactionCount)
	assert.True(t, reset.TotalInclusive.IsZero())
}
