package printing

import (
	"time"

	"caisse-system/internal/common/config"
	"caisse-system/internal/common/logger"
	"caisse-system/internal/domain"
	"caisse-system/internal/receipt"
)

// Item categories that route to the preparation printers.
const (
	CategoryFood      = "alimentation"
	CategoryAlcohol   = "alcool"
	CategorySoftDrink = "boisson sans alcool"
)

// Dispatcher routes an order's documents to the configured printers: the
// customer receipt, a kitchen ticket for food lines and a bar ticket for
// drink lines. Disabled printers are skipped.
type Dispatcher struct {
	lg        *logger.Logger
	formatter *receipt.Formatter
	receiptT  Transport
	kitchenT  Transport
	barT      Transport
}

func NewDispatcher(cfg config.PrintersConfig, f *receipt.Formatter, lg *logger.Logger) *Dispatcher {
	d := &Dispatcher{lg: lg, formatter: f}
	if cfg.Receipt.Enabled {
		d.receiptT = NewTCP(cfg.Receipt)
	}
	if cfg.Kitchen.Enabled {
		d.kitchenT = NewTCP(cfg.Kitchen)
	}
	if cfg.Bar.Enabled {
		d.barT = NewTCP(cfg.Bar)
	}
	return d
}

// NewDispatcherWithTransports wires explicit transports; nil means disabled.
// Used by tests.
func NewDispatcherWithTransports(f *receipt.Formatter, lg *logger.Logger, receiptT, kitchenT, barT Transport) *Dispatcher {
	return &Dispatcher{lg: lg, formatter: f, receiptT: receiptT, kitchenT: kitchenT, barT: barT}
}

// PrintOrder prints the customer receipt and the preparation tickets. The
// receipt failing is an error for the caller; a preparation printer failing
// is logged and does not block the sale.
func (d *Dispatcher) PrintOrder(o *domain.Order, ticketNumber int, now time.Time) error {
	if d.receiptT != nil {
		if err := d.receiptT.Deliver(d.formatter.Receipt(o, ticketNumber, now)); err != nil {
			return err
		}
		d.lg.Info("receipt_printed", map[string]any{"ticket": ticketNumber, "table": o.Table})
	}

	if food := filterByCategory(o.Lines, CategoryFood); len(food) > 0 && d.kitchenT != nil {
		doc := d.formatter.PreparationTicket(o, food, "CUISINE", ticketNumber, now)
		if err := d.kitchenT.Deliver(doc); err != nil {
			d.lg.Error("kitchen_ticket_failed", err, map[string]any{"ticket": ticketNumber})
		}
	}
	if drinks := filterByCategory(o.Lines, CategoryAlcohol, CategorySoftDrink); len(drinks) > 0 && d.barT != nil {
		doc := d.formatter.PreparationTicket(o, drinks, "BAR", ticketNumber, now)
		if err := d.barT.Deliver(doc); err != nil {
			d.lg.Error("bar_ticket_failed", err, map[string]any{"ticket": ticketNumber})
		}
	}
	return nil
}

// PrintZReport delivers the closing report to the receipt printer.
func (d *Dispatcher) PrintZReport(r *domain.ZReport) error {
	if d.receiptT == nil {
		return nil
	}
	return d.receiptT.Deliver(d.formatter.ZReportDocument(r))
}

func filterByCategory(lines []domain.LineItem, categories ...string) []domain.LineItem {
	var out []domain.LineItem
	for _, li := range lines {
		for _, c := range categories {
			if li.Category == c {
				out = append(out, li)
				break
			}
		}
	}
	return out
}
