package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinner(context.Background(), &buf, "Parsing")
	time.Sleep(3 * spinnerInterval)
	s.update("Rendering svg")
	time.Sleep(3 * spinnerInterval)

	if s.stop() {
		t.Error("stop reported an interruption")
	}
	out := buf.String()
	for _, want := range []string{"Parsing", "Rendering svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("line not cleared: %q", out)
	}
}

func TestSpinnerInterrupted(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()
			s := startSpinner(ctx, io.Discard, "Waiting")
			time.Sleep(50 * time.Millisecond)
			if !s.stop() {
				t.Error("stop did not report the cancellation")
			}
		})
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := startSpinner(context.Background(), io.Discard, "Testing")
	s.stop()
	s.stop()
}

func TestSpinnerFail(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinner(context.Background(), &buf, "Rendering")
	s.fail("Render failed")

	if !strings.Contains(buf.String(), iconError+" Render failed") {
		t.Errorf("output = %q", buf.String())
	}
}
