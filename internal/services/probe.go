package services

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Prober checks whether a service endpoint is accepting connections.
type Prober interface {
	// WaitReady blocks until the address accepts a TCP connection or the
	// timeout elapses.
	WaitReady(ctx context.Context, addr string, timeout time.Duration) error
}

// TCPProber polls an address with short TCP dials until it connects.
// A plain dial is enough here: the compose healthcheck gates the database
// process itself, the probe only confirms the published port is reachable
// from the installer's network namespace.
type TCPProber struct {
	// Interval is the pause between dial attempts.
	Interval time.Duration

	// DialTimeout bounds each individual dial.
	DialTimeout time.Duration
}

// NewTCPProber creates a prober with production polling intervals.
func NewTCPProber() *TCPProber {
	return &TCPProber{
		Interval:    2 * time.Second,
		DialTimeout: 3 * time.Second,
	}
}

// WaitReady implements Prober.
func (p *TCPProber) WaitReady(ctx context.Context, addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	dialer := &net.Dialer{Timeout: p.DialTimeout}

	var lastErr error
	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn.Close()
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("service at %s not ready after %s: %w", addr, timeout, lastErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Interval):
		}
	}
}
