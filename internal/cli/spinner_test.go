package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Computing layout...")
	time.Sleep(3 * spinnerInterval)
	s.Stop()
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Computing layout...") {
		t.Errorf("message never drawn: %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("line not cleared: %q", got)
	}
}

func TestSpinnerContextEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := startSpinner(ctx, &out, "Rendering svg...")
	cancel()

	stopped := make(chan struct{})
	go func() { s.Stop(); close(stopped) }()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after cancellation")
	}
}

func TestSpinnerFail(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Rendering pdf...")
	s.Fail("Render failed")
	if !strings.Contains(out.String(), "✗ Render failed") {
		t.Errorf("failure not reported: %q", out.String())
	}
}
