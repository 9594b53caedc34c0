// Package counter implements the durable monotonic counters behind the
// Z-report sequence and the ticket numbering. A counter is one small file
// holding the last issued number; read-increment-persist runs under an OS
// file lock plus an in-process mutex, and the new value is persisted before
// it is handed out. A crash can therefore skip a number but never issue the
// same number twice.
package counter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
)

// Format encodes and decodes the on-disk representation of the last number.
type Format interface {
	Decode(data []byte) (int, error)
	Encode(n int) ([]byte, error)
}

// TextFormat stores the number as plain decimal text, the historical format
// of the Z-report sequence file.
type TextFormat struct{}

func (TextFormat) Decode(data []byte) (int, error) {
	return strconv.Atoi(string(bytes.TrimSpace(data)))
}

func (TextFormat) Encode(n int) ([]byte, error) {
	return []byte(strconv.Itoa(n)), nil
}

// JSONFormat stores the number under a single key in a JSON object, the
// historical format of the ticket counter file.
type JSONFormat struct{ Key string }

func (f JSONFormat) Decode(data []byte) (int, error) {
	var obj map[string]int
	if err := json.Unmarshal(data, &obj); err != nil {
		return 0, err
	}
	n, ok := obj[f.Key]
	if !ok {
		return 0, fmt.Errorf("missing key %q", f.Key)
	}
	return n, nil
}

func (f JSONFormat) Encode(n int) ([]byte, error) {
	return json.Marshal(map[string]int{f.Key: n})
}

type Counter struct {
	path   string
	format Format
	mu     sync.Mutex
	lock   *flock.Flock
}

func New(path string, format Format) *Counter {
	return &Counter{path: path, format: format, lock: flock.New(path + ".lock")}
}

// acquire takes the file lock, creating the counter directory first so the
// lock file has somewhere to live.
func (c *Counter) acquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create counter directory: %w", err)
	}
	if err := c.lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock counter %s: %w", c.path, err)
	}
	return func() { _ = c.lock.Unlock() }, nil
}

// Last returns the last issued number without consuming one. A missing or
// unparseable file reads as 0, matching Reset.
func (c *Counter) Last() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	release, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return c.readLocked()
}

// Next issues the next number: read, increment, persist, return. The persist
// happens before the number is returned, so an interrupted call loses the
// number instead of reissuing it.
func (c *Counter) Next() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	release, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	last, err := c.readLocked()
	if err != nil {
		return 0, err
	}
	next := last + 1
	if err := c.writeLocked(next); err != nil {
		return 0, err
	}
	return next, nil
}

// Reset persists 0; the following Next returns 1.
func (c *Counter) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()
	return c.writeLocked(0)
}

func (c *Counter) readLocked() (int, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", c.path, err)
	}
	n, err := c.format.Decode(data)
	if err != nil {
		// Corrupt counter file: restart numbering from 0 rather than refuse
		// to issue numbers.
		return 0, nil
	}
	return n, nil
}

func (c *Counter) writeLocked(n int) error {
	data, err := c.format.Encode(n)
	if err != nil {
		return fmt.Errorf("failed to encode counter value: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp counter file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write counter %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close counter %s: %w", c.path, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace counter %s: %w", c.path, err)
	}
	return nil
}
