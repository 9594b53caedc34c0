package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one line of an open order. Name is the unique key within an
// order; UnitPrice and LineTotal are tax-inclusive.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	VATRate   decimal.Decimal
	Category  string
}

// NewLineItem builds a line with quantity 1. The VAT rate is validated here,
// once, so the derived amounts below never fail.
func NewLineItem(name string, unitPrice, vatRate decimal.Decimal, category string) (LineItem, error) {
	if vatRate.IsNegative() {
		return LineItem{}, ErrInvalidRate
	}
	return LineItem{Name: name, UnitPrice: unitPrice, Quantity: 1, VATRate: vatRate, Category: category}, nil
}

// LineTotal is the tax-inclusive total for the line.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// TaxExclusive is the line total with VAT stripped.
func (li LineItem) TaxExclusive() decimal.Decimal {
	excl, _ := ExclusiveFromInclusive(li.LineTotal(), li.VATRate)
	return excl
}

// TaxAmount is the VAT portion of the line total.
func (li LineItem) TaxAmount() decimal.Decimal {
	return li.LineTotal().Sub(li.TaxExclusive())
}

// VatBucket aggregates amounts at one VAT rate: tax-exclusive (HT), tax (TVA)
// and tax-inclusive (TTC).
type VatBucket struct {
	Rate      decimal.Decimal `json:"-"`
	Exclusive decimal.Decimal `json:"ht"`
	Tax       decimal.Decimal `json:"tva"`
	Inclusive decimal.Decimal `json:"ttc"`
}

// RateKey is the canonical map key for a VAT rate ("10", "5.5").
func RateKey(rate decimal.Decimal) string { return rate.String() }

// Order is the open order of one table. Lines keep insertion order and have
// unique names. Once Paid is set the order is about to be archived and reset;
// it is never mutated again.
type Order struct {
	Table         string
	Lines         []LineItem
	CreatedAt     time.Time
	PaymentMethod string
	Paid          bool
	// SaleID is assigned once when the sale is first recorded and reused on
	// retries, so a replayed record cannot be counted twice.
	SaleID string
}

func NewOrder(table string) *Order {
	return &Order{Table: table, CreatedAt: time.Now()}
}

// Add merges the item into the order. When a line with the same name already
// exists only its quantity grows; the existing price, rate and category win.
func (o *Order) Add(item LineItem) {
	for i := range o.Lines {
		if o.Lines[i].Name == item.Name {
			o.Lines[i].Quantity += item.Quantity
			return
		}
	}
	o.Lines = append(o.Lines, item)
}

// UpdateQuantity adds delta (possibly negative) to the named line's quantity.
// A quantity of zero or less removes the line. An unknown name is a no-op,
// matching Remove.
func (o *Order) UpdateQuantity(name string, delta int) {
	for i := range o.Lines {
		if o.Lines[i].Name == name {
			o.Lines[i].Quantity += delta
			if o.Lines[i].Quantity <= 0 {
				o.Remove(name)
			}
			return
		}
	}
}

// Remove drops the named line; unknown names are a no-op.
func (o *Order) Remove(name string) {
	kept := o.Lines[:0]
	for _, li := range o.Lines {
		if li.Name != name {
			kept = append(kept, li)
		}
	}
	o.Lines = kept
}

func (o *Order) IsEmpty() bool { return len(o.Lines) == 0 }

// Total is the tax-inclusive grand total.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Lines {
		total = total.Add(li.LineTotal())
	}
	return total
}

// VATSummary groups the lines by VAT rate. Sums are accumulated at full
// precision; rounding happens only when formatting.
func (o *Order) VATSummary() map[string]VatBucket {
	summary := make(map[string]VatBucket)
	for _, li := range o.Lines {
		key := RateKey(li.VATRate)
		b, ok := summary[key]
		if !ok {
			b = VatBucket{Rate: li.VATRate}
		}
		excl := li.TaxExclusive()
		b.Exclusive = b.Exclusive.Add(excl)
		b.Tax = b.Tax.Add(li.LineTotal().Sub(excl))
		b.Inclusive = b.Inclusive.Add(li.LineTotal())
		summary[key] = b
	}
	return summary
}

// LineItemRecord and OrderRecord are the persisted forms written to the
// monthly sales archive. Field names match the historical file format.
type LineItemRecord struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	VATRate  decimal.Decimal `json:"tva_rate"`
	Category string          `json:"category"`
}

type OrderRecord struct {
	SaleID        string           `json:"vente_id,omitempty"`
	Table         string           `json:"table"`
	Items         []LineItemRecord `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Paid          bool             `json:"is_paid"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Record snapshots the order into its persisted form.
func (o *Order) Record() OrderRecord {
	items := make([]LineItemRecord, 0, len(o.Lines))
	for _, li := range o.Lines {
		items = append(items, LineItemRecord{
			Name:     li.Name,
			Price:    li.UnitPrice,
			Quantity: li.Quantity,
			VATRate:  li.VATRate,
			Category: li.Category,
		})
	}
	return OrderRecord{
		SaleID:        o.SaleID,
		Table:         o.Table,
		Items:         items,
		Total:         o.Total(),
		PaymentMethod: o.PaymentMethod,
		Paid:          o.Paid,
		CreatedAt:     o.CreatedAt,
	}
}

// OrderFromRecord rebuilds an order from its persisted form.
func OrderFromRecord(rec OrderRecord) *Order {
	o := &Order{
		Table:         rec.Table,
		CreatedAt:     rec.CreatedAt,
		PaymentMethod: rec.PaymentMethod,
		Paid:          rec.Paid,
		SaleID:        rec.SaleID,
	}
	for _, it := range rec.Items {
		o.Add(LineItem{
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			VATRate:   it.VATRate,
			Category:  it.Category,
		})
	}
	return o
}
