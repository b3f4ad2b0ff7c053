package orchestrator

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestHandleSignalsCancelsContext(t *testing.T) {
	sh := NewSignalHandler()
	defer sh.Stop()

	ctx, cancel := sh.Context(context.Background())
	defer cancel()

	sh.sigChan <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after SIGTERM")
	}
}

func TestHandleSignalsStopsWithContext(t *testing.T) {
	sh := NewSignalHandler()
	defer sh.Stop()

	ctx, cancel := sh.Context(context.Background())
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}
