// Package printing delivers formatted documents to the thermal printers.
// It owns the network side only: the ledger is persisted before anything is
// printed, so a transport failure never touches recorded sales.
package printing

import (
	"fmt"
	"net"
	"time"

	"caisse-system/internal/common/config"
)

// Transport delivers a formatted document to one printer, or fails.
type Transport interface {
	Deliver(content []byte) error
}

// TCPTransport sends raw bytes to an ESC/POS printer over a TCP socket.
type TCPTransport struct {
	addr    string
	timeout time.Duration
}

func NewTCP(cfg config.PrinterConfig) *TCPTransport {
	return &TCPTransport{addr: cfg.Addr(), timeout: cfg.Timeout}
}

func (t *TCPTransport) Deliver(content []byte) error {
	conn, err := net.DialTimeout("tcp", t.addr, t.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to printer %s: %w", t.addr, err)
	}
	defer conn.Close()
	if err := conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return fmt.Errorf("failed to set printer deadline: %w", err)
	}
	if _, err := conn.Write(content); err != nil {
		return fmt.Errorf("failed to send to printer %s: %w", t.addr, err)
	}
	return nil
}
