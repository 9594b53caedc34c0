// Package receipt renders orders and Z reports into ESC/POS byte documents.
// Formatting is pure: content in, bytes out. Delivering the bytes to a
// printer is the transport's job.
package receipt

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"caisse-system/internal/common/config"
	"caisse-system/internal/domain"
)

// ESC/POS control sequences understood by the thermal printers.
const (
	ctlInit        = "\x1B\x40" // initialize printer
	ctlAlignCenter = "\x1B\x61\x01"
	ctlAlignLeft   = "\x1B\x61\x00"
	ctlDoubleSize  = "\x1B\x21\x30" // double height and width
	ctlEmphasis    = "\x1B\x21\x10"
	ctlNormal      = "\x1B\x21\x00"
	ctlCut         = "\x1D\x56\x00"

	divider = "-----------------------------\n"
)

type Formatter struct {
	ident config.RestaurantConfig
}

func New(ident config.RestaurantConfig) *Formatter {
	return &Formatter{ident: ident}
}

// Receipt renders the customer ticket for an order. Item names are truncated
// to 16 columns, quantities right-aligned in 3.
func (f *Formatter) Receipt(o *domain.Order, ticketNumber int, now time.Time) []byte {
	var b bytes.Buffer

	b.WriteString(ctlInit)
	b.WriteString(ctlAlignCenter)
	b.WriteString(ctlDoubleSize)
	b.WriteString(f.ident.Name + "\n")
	b.WriteString(ctlNormal)
	for _, line := range f.ident.Address {
		b.WriteString(line + "\n")
	}
	b.WriteString("Siret: " + f.ident.Siret + "\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "TICKET N°: %06d\n", ticketNumber)
	fmt.Fprintf(&b, "Table: %s\n", o.Table)
	fmt.Fprintf(&b, "Date: %s\n", now.Format("02/01/2006 15:04"))
	b.WriteString(divider)
	b.WriteString(ctlAlignLeft)

	b.WriteString(ctlEmphasis)
	b.WriteString("ARTICLE          QTE   PRIX\n")
	b.WriteString(ctlNormal)
	b.WriteString(divider)
	for _, li := range o.Lines {
		fmt.Fprintf(&b, "%-16s %3d %6s\n", truncate(li.Name, 16), li.Quantity, li.LineTotal().StringFixed(2)+"EUR")
	}

	b.WriteString(divider)
	b.WriteString(ctlAlignLeft)
	fmt.Fprintf(&b, "TOTAL: %sEUR\n", o.Total().StringFixed(2))

	b.WriteString(divider)
	summary := o.VATSummary()
	for _, key := range sortedRateKeys(summary) {
		fmt.Fprintf(&b, "TVA %s%%: %sEUR\n", key, summary[key].Tax.StringFixed(2))
	}

	b.WriteString(divider)
	b.WriteString(ctlAlignCenter)
	b.WriteString(f.ident.Footer + "\n")
	fmt.Fprintf(&b, "Ticket: %06d\n", ticketNumber)
	b.WriteString("\n\n\n")
	b.WriteString(ctlCut)

	return b.Bytes()
}

// PreparationTicket renders a kitchen or bar ticket for a subset of an
// order's lines. destination is the printed banner, e.g. "CUISINE" or "BAR".
func (f *Formatter) PreparationTicket(o *domain.Order, items []domain.LineItem, destination string, ticketNumber int, now time.Time) []byte {
	var b bytes.Buffer

	b.WriteString(ctlInit)
	b.WriteString(ctlAlignCenter)
	b.WriteString(ctlDoubleSize)
	b.WriteString(destination + "\n")
	b.WriteString(ctlNormal)
	b.WriteString(divider)
	fmt.Fprintf(&b, "TICKET N°: %06d\n", ticketNumber)
	fmt.Fprintf(&b, "Table: %s\n", o.Table)
	fmt.Fprintf(&b, "Heure: %s\n", now.Format("15:04"))
	fmt.Fprintf(&b, "Commande: %d article(s)\n", len(items))
	b.WriteString(divider)
	b.WriteString(ctlAlignLeft)

	b.WriteString(ctlEmphasis)
	b.WriteString("ARTICLE          QTE\n")
	b.WriteString(ctlNormal)
	b.WriteString(divider)
	for _, li := range items {
		fmt.Fprintf(&b, "%-16s %3d\n", truncate(li.Name, 16), li.Quantity)
	}

	b.WriteString(divider)
	b.WriteString("NOTES:\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "Ticket: %06d\n", ticketNumber)
	b.WriteString("\n\n")
	b.WriteString(ctlCut)

	return b.Bytes()
}

// ZReportDocument renders the fiscal closing report.
func (f *Formatter) ZReportDocument(r *domain.ZReport) []byte {
	var b bytes.Buffer

	b.WriteString(ctlInit)
	b.WriteString(ctlAlignCenter)
	b.WriteString(ctlDoubleSize)
	b.WriteString("RAPPORT Z\n")
	b.WriteString(ctlNormal)
	b.WriteString(f.ident.Name + "\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "N°: %04d\n", r.Number)
	fmt.Fprintf(&b, "Date: %s\n", r.IssuedAt)
	b.WriteString(divider)

	b.WriteString(ctlEmphasis)
	b.WriteString("TOTAL GENERAL\n")
	b.WriteString(ctlNormal)
	fmt.Fprintf(&b, "HT:   %10s€\n", r.TotalExclusive.StringFixed(2))
	fmt.Fprintf(&b, "TVA:  %10s€\n", r.TotalTax.StringFixed(2))
	fmt.Fprintf(&b, "TTC:  %10s€\n", r.TotalInclusive.StringFixed(2))
	fmt.Fprintf(&b, "Transactions: %4d\n", r.TransactionCount)
	b.WriteString(divider)

	b.WriteString("DETAIL TVA\n")
	for _, key := range sortedRateKeys(r.ByRate) {
		fmt.Fprintf(&b, "TVA %s%%: %8s€\n", key, r.ByRate[key].Inclusive.StringFixed(2))
	}
	b.WriteString(divider)

	b.WriteString("MOYENS DE PAIEMENT\n")
	for _, method := range sortedMethods(r.ByPaymentMethod) {
		fmt.Fprintf(&b, "%-15s %8s€\n", method, r.ByPaymentMethod[method].StringFixed(2))
	}
	b.WriteString(divider)

	b.WriteString(ctlAlignCenter)
	b.WriteString("*** RAPPORT Z ***\n")
	b.WriteString("Fin de rapport\n\n\n")
	b.WriteString(ctlCut)

	return b.Bytes()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// sortedRateKeys orders bucket keys numerically so output is deterministic.
// Keys are parsed rather than read from the buckets, which carry no rate
// after a reload from disk.
func sortedRateKeys(buckets map[string]domain.VatBucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, _ := decimal.NewFromString(keys[i])
		rj, _ := decimal.NewFromString(keys[j])
		return ri.LessThan(rj)
	})
	return keys
}

func sortedMethods(byMethod map[string]decimal.Decimal) []string {
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}
