// Package ledger is the durable side of the till: the append-only monthly
// sales archive, the daily sales aggregate and the numbered Z-report files.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"caisse-system/internal/common/logger"
	"caisse-system/internal/counter"
	"caisse-system/internal/domain"
)

const (
	dailyFilePrefix = "ventes_jour_"
	reportsFolder   = "rapports_z"
	sequenceFile    = "dernier_rapport.txt"
	dateLayout      = "2006-01-02"
	issuedAtLayout  = "2006-01-02 15:04:05"
)

// Ledger owns the daily aggregate and the Z-report sequence. All durable
// state lives under one data directory; in-memory state is re-synced to disk
// after every mutation.
type Ledger struct {
	mu      sync.Mutex
	lg      *logger.Logger
	dataDir string
	archive *archive
	seq     *counter.Counter
	day     *domain.DailySales
	now     func() time.Time
}

func New(dataDir string, lg *logger.Logger) (*Ledger, error) {
	return NewWithClock(dataDir, lg, time.Now)
}

// NewWithClock loads today's persisted aggregate if one exists, otherwise
// starts a fresh empty aggregate for today. A leftover aggregate file from an
// earlier date is left untouched and logged; rolling it over is the job of an
// explicit Z report, never of startup.
func NewWithClock(dataDir string, lg *logger.Logger, now func() time.Time) (*Ledger, error) {
	l := &Ledger{
		lg:      lg,
		dataDir: dataDir,
		archive: &archive{dataDir: dataDir, lg: lg},
		seq:     counter.New(filepath.Join(dataDir, sequenceFile), counter.TextFormat{}),
		now:     now,
	}
	day, err := l.loadDay(now().Format(dateLayout))
	if err != nil {
		return nil, err
	}
	l.day = day
	l.warnStaleDailyFiles()
	return l, nil
}

func (l *Ledger) dailyPath(date string) string {
	return filepath.Join(l.dataDir, dailyFilePrefix+date+".json")
}

func (l *Ledger) loadDay(date string) (*domain.DailySales, error) {
	path := l.dailyPath(date)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.NewDailySales(date), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read daily sales %s: %w", path, err)
	}
	day := domain.NewDailySales(date)
	if err := json.Unmarshal(data, day); err != nil {
		corrupt := &domain.CorruptStateError{Path: path, Err: err}
		l.lg.Warn("daily_sales_corrupt", map[string]any{"path": path, "error": corrupt.Error()})
		return domain.NewDailySales(date), nil
	}
	return day, nil
}

func (l *Ledger) warnStaleDailyFiles() {
	today := l.dailyPath(l.day.Date)
	matches, err := filepath.Glob(filepath.Join(l.dataDir, dailyFilePrefix+"*.json"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if m != today {
			l.lg.Warn("stale_daily_file", map[string]any{"path": m})
		}
	}
}

func (l *Ledger) persistDay() error {
	data, err := json.MarshalIndent(l.day, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode daily sales: %w", err)
	}
	if err := os.MkdirAll(l.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return writeFileAtomic(l.dailyPath(l.day.Date), data)
}

// RecordSale finalizes the order: marks it paid, appends it to the monthly
// archive, folds it into the daily aggregate and persists the aggregate.
//
// Ordering and retry contract: the archive write happens first; the aggregate
// is only touched after it succeeds. Both writes are idempotent on the sale
// ID, so calling RecordSale again with the same order after a crash or a
// failed write cannot double-count the sale. The caller keeps the order until
// RecordSale returns nil.
func (l *Ledger) RecordSale(order *domain.Order, paymentMethod string) (domain.OrderRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if order.IsEmpty() {
		return domain.OrderRecord{}, domain.ErrEmptyOrder
	}
	if order.SaleID == "" {
		order.SaleID = uuid.NewString()
	}
	order.PaymentMethod = paymentMethod
	order.Paid = true

	now := l.now()
	rec := order.Record()
	summary := order.VATSummary()

	if err := l.archive.append(rec, now); err != nil {
		return domain.OrderRecord{}, err
	}
	l.day.RecordSale(rec, summary, now)
	if err := l.persistDay(); err != nil {
		return domain.OrderRecord{}, err
	}

	l.lg.Info("sale_recorded", map[string]any{
		"sale_id": rec.SaleID,
		"table":   rec.Table,
		"total":   rec.Total.StringFixed(2),
		"method":  paymentMethod,
	})
	return rec, nil
}

// CurrentDaySummary returns a read-only snapshot of the daily aggregate.
func (l *Ledger) CurrentDaySummary() *domain.DailySales {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.day.Clone()
}

// GenerateZReport snapshots the daily aggregate into a numbered immutable
// report file, then resets the aggregate. The sequence number is consumed and
// persisted before the report is written: a failure afterwards leaves a gap
// in the numbering, never a duplicate.
//
// This is the irreversible end-of-day closing. Confirmation belongs upstream.
func (l *Ledger) GenerateZReport() (*domain.ZReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	number, err := l.seq.Next()
	if err != nil {
		return nil, err
	}

	report := &domain.ZReport{
		Type:           domain.ZReportType,
		IssuedAt:       now.Format(issuedAtLayout),
		AccountingDate: now.Format(dateLayout),
		Number:         number,
		DailySales:     *l.day.Clone(),
	}
	if err := l.writeReport(report); err != nil {
		return nil, err
	}

	previousDate := l.day.Date
	today := now.Format(dateLayout)
	l.day = domain.NewDailySales(today)
	if err := l.persistDay(); err != nil {
		return nil, err
	}
	if previousDate != today {
		// The closed aggregate carried an older date; empty that file too so
		// a later restart on that date cannot resurrect the reported sales.
		stale := domain.NewDailySales(previousDate)
		data, err := json.MarshalIndent(stale, "", "  ")
		if err == nil {
			err = writeFileAtomic(l.dailyPath(previousDate), data)
		}
		if err != nil {
			l.lg.Warn("stale_daily_reset_failed", map[string]any{"date": previousDate, "error": err.Error()})
		}
	}

	l.lg.Info("z_report_generated", map[string]any{
		"number":       report.Number,
		"date":         report.AccountingDate,
		"transactions": report.TransactionCount,
		"total_ttc":    report.TotalInclusive.StringFixed(2),
	})
	return report, nil
}

func (l *Ledger) writeReport(report *domain.ZReport) error {
	dir := filepath.Join(l.dataDir, reportsFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports folder: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("rapport_z_%04d_%s.json", report.Number, report.AccountingDate))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("report file %s already exists", path)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode Z report: %w", err)
	}
	return writeFileAtomic(path, data)
}

// LastReportNumber reads the sequence without consuming a number.
func (l *Ledger) LastReportNumber() (int, error) {
	return l.seq.Last()
}

// MonthArchive returns the recorded sales of the month containing t.
func (l *Ledger) MonthArchive(t time.Time) ([]domain.OrderRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.archive.load(t)
}
