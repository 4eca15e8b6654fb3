package services

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// TestTCPProberWaitReady tests readiness probing against real listeners.
func TestTCPProberWaitReady(t *testing.T) {
	t.Parallel()

	t.Run("succeeds against a listening address", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer ln.Close()
		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				conn.Close()
			}
		}()

		p := &TCPProber{Interval: 10 * time.Millisecond, DialTimeout: time.Second}
		if err := p.WaitReady(context.Background(), ln.Addr().String(), 2*time.Second); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("times out against a closed address", func(t *testing.T) {
		t.Parallel()

		// Reserve an address, then close it so nothing listens there.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		p := &TCPProber{Interval: 10 * time.Millisecond, DialTimeout: 50 * time.Millisecond}
		if err := p.WaitReady(context.Background(), addr, 150*time.Millisecond); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		p := &TCPProber{Interval: 10 * time.Millisecond, DialTimeout: 50 * time.Millisecond}
		err = p.WaitReady(ctx, addr, time.Minute)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})
}
