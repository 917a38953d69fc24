package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	// Only read buf after Stop, which waits for the drawing goroutine.
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, msg)
	s.w = &buf
	return s, &buf
}

func TestSpinnerDraws(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Routing 3 links...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("Rendering...")
	time.Sleep(200 * time.Millisecond)
	took := s.Stop()

	out := buf.String()
	for _, want := range []string{"Routing 3 links...", "Rendering..."} {
		if !strings.Contains(out, want) {
			t.Errorf("spinner never drew %q: %q", want, out)
		}
	}
	if took < 400*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 400ms", took)
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Routing...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation")
	}
	s.Stop()
}

func TestSpinnerStop(t *testing.T) {
	t.Run("repeated", func(t *testing.T) {
		s, _ := quietSpinner(context.Background(), "x")
		s.Start()
		first := s.Stop()
		if again := s.Stop(); again != first {
			t.Errorf("second Stop = %v, want %v", again, first)
		}
	})

	t.Run("without start", func(t *testing.T) {
		s, buf := quietSpinner(context.Background(), "x")
		if took := s.Stop(); took != 0 {
			t.Errorf("Stop = %v, want 0", took)
		}
		if buf.Len() != 0 {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}
