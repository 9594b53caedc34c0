package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"caisse-system/internal/common/logger"
	"caisse-system/internal/domain"
)

// The sales archive is one JSON list of completed orders per calendar month,
// kept in a folder named after the French month: "Vente Août 2026/vente.json".
// Appends re-read the list, add the record and rewrite the file atomically.

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthFolder returns the archive segment name for a point in time.
func MonthFolder(t time.Time) string {
	return fmt.Sprintf("Vente %s %d", frenchMonths[t.Month()-1], t.Year())
}

type archive struct {
	dataDir string
	lg      *logger.Logger
}

func (a *archive) path(t time.Time) string {
	return filepath.Join(a.dataDir, MonthFolder(t), "vente.json")
}

// load reads the month's records. A missing file is an empty archive; a
// corrupt file also reads as empty (the archive restarts, logged) so one bad
// byte cannot block the till.
func (a *archive) load(t time.Time) ([]domain.OrderRecord, error) {
	path := a.path(t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sales archive %s: %w", path, err)
	}
	var records []domain.OrderRecord
	if err := json.Unmarshal(data, &records); err != nil {
		corrupt := &domain.CorruptStateError{Path: path, Err: err}
		a.lg.Warn("sales_archive_corrupt", map[string]any{"path": path, "error": corrupt.Error()})
		return nil, nil
	}
	return records, nil
}

// append adds the record to the month's archive. Appending a sale ID that is
// already present is a no-op, which makes a retry after a crash safe.
func (a *archive) append(rec domain.OrderRecord, t time.Time) error {
	records, err := a.load(t)
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.SaleID != "" && existing.SaleID == rec.SaleID {
			return nil
		}
	}
	records = append(records, rec)

	path := a.path(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive folder: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sales archive: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes via a temp file and rename, so a failed write leaves
// the previous file intact.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
