package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionEntry is one line of the daily transaction log.
type TransactionEntry struct {
	ID     string          `json:"id"`
	Time   string          `json:"heure"`
	Table  string          `json:"table"`
	Amount decimal.Decimal `json:"montant"`
	Method string          `json:"moyen_paiement"`
}

// DailySales accumulates one calendar day of completed sales. It is persisted
// wholesale after every mutation and reset only by Z-report generation.
// Field names match the historical daily file format.
type DailySales struct {
	Date             string                     `json:"date"`
	TotalExclusive   decimal.Decimal            `json:"total_ventes_ht"`
	TotalInclusive   decimal.Decimal            `json:"total_ventes_ttc"`
	TotalTax         decimal.Decimal            `json:"total_tva"`
	ByRate           map[string]VatBucket       `json:"ventes_par_taux"`
	TransactionCount int                        `json:"nombre_transactions"`
	ByPaymentMethod  map[string]decimal.Decimal `json:"ventes_par_moyen_paiement"`
	Transactions     []TransactionEntry         `json:"transactions"`
	// LastSaleID makes RecordSale idempotent against a retry of the same sale
	// after a crash between the archive write and the aggregate write.
	LastSaleID string `json:"dernier_vente_id,omitempty"`
}

// NewDailySales returns an empty aggregate for the given day (YYYY-MM-DD).
func NewDailySales(date string) *DailySales {
	return &DailySales{
		Date:            date,
		ByRate:          make(map[string]VatBucket),
		ByPaymentMethod: make(map[string]decimal.Decimal),
		Transactions:    []TransactionEntry{},
	}
}

// RecordSale folds one completed sale into the aggregate. Recording the same
// sale ID twice in a row is a no-op.
func (d *DailySales) RecordSale(rec OrderRecord, summary map[string]VatBucket, at time.Time) {
	if rec.SaleID != "" && rec.SaleID == d.LastSaleID {
		return
	}
	if d.ByRate == nil {
		d.ByRate = make(map[string]VatBucket)
	}
	if d.ByPaymentMethod == nil {
		d.ByPaymentMethod = make(map[string]decimal.Decimal)
	}

	exclusive := decimal.Zero
	for key, bucket := range summary {
		exclusive = exclusive.Add(bucket.Exclusive)
		agg := d.ByRate[key]
		agg.Rate = bucket.Rate
		agg.Exclusive = agg.Exclusive.Add(bucket.Exclusive)
		agg.Tax = agg.Tax.Add(bucket.Tax)
		agg.Inclusive = agg.Inclusive.Add(bucket.Inclusive)
		d.ByRate[key] = agg
	}

	d.TransactionCount++
	d.TotalExclusive = d.TotalExclusive.Add(exclusive)
	d.TotalInclusive = d.TotalInclusive.Add(rec.Total)
	d.TotalTax = d.TotalTax.Add(rec.Total.Sub(exclusive))
	d.ByPaymentMethod[rec.PaymentMethod] = d.ByPaymentMethod[rec.PaymentMethod].Add(rec.Total)
	d.Transactions = append(d.Transactions, TransactionEntry{
		ID:     rec.SaleID,
		Time:   at.Format("15:04:05"),
		Table:  rec.Table,
		Amount: rec.Total,
		Method: rec.PaymentMethod,
	})
	d.LastSaleID = rec.SaleID
}

// Clone returns a deep copy, used for read-only snapshots.
func (d *DailySales) Clone() *DailySales {
	cp := *d
	cp.ByRate = make(map[string]VatBucket, len(d.ByRate))
	for k, v := range d.ByRate {
		cp.ByRate[k] = v
	}
	cp.ByPaymentMethod = make(map[string]decimal.Decimal, len(d.ByPaymentMethod))
	for k, v := range d.ByPaymentMethod {
		cp.ByPaymentMethod[k] = v
	}
	cp.Transactions = append([]TransactionEntry(nil), d.Transactions...)
	return &cp
}

// ZReportType tags persisted Z-report files.
const ZReportType = "RAPPORT_Z"

// ZReport is an immutable fiscal closing report: a numbered snapshot of one
// day's aggregate. The embedded DailySales flattens into the persisted JSON,
// matching the historical report format.
type ZReport struct {
	Type           string `json:"type"`
	IssuedAt       string `json:"date_emission"`
	AccountingDate string `json:"date_comptable"`
	Number         int    `json:"numero_rapport"`
	DailySales
}
