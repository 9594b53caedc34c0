// Package ticket numbers customer receipts. The sequence is independent from
// the fiscal Z-report sequence and may be reset by an administrator, usually
// at the start of a day.
package ticket

import (
	"path/filepath"

	"caisse-system/internal/counter"
)

// counterFile keeps the historical location and JSON shape of the ticket
// counter: data/ticket_counter.json, {"last_ticket_number": N}.
const counterFile = "ticket_counter.json"

type Sequencer struct {
	c *counter.Counter
}

// NewSequencer stores the counter under <dataDir>/data/.
func NewSequencer(dataDir string) *Sequencer {
	path := filepath.Join(dataDir, "data", counterFile)
	return &Sequencer{c: counter.New(path, counter.JSONFormat{Key: "last_ticket_number"})}
}

// Next issues the next ticket number, persisting it before returning.
func (s *Sequencer) Next() (int, error) { return s.c.Next() }

// Last returns the last issued number without consuming one.
func (s *Sequencer) Last() (int, error) { return s.c.Last() }

// Reset restarts numbering; the next ticket is number 1.
func (s *Sequencer) Reset() error { return s.c.Reset() }
