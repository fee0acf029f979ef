package cli

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	status := quietStatus(t)

	s := startSpinner(t.Context(), "Rendering svg...")
	time.Sleep(3 * spinnerInterval)
	s.Update("Writing tree.svg")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := status.String()
	for _, want := range []string{"Rendering svg...", "Writing tree.svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q: %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("line not cleared after Stop: %q", out)
	}
	if s.Interrupted() {
		t.Error("Stop should not count as an interruption")
	}
}

func TestSpinnerInterrupted(t *testing.T) {
	quietStatus(t)

	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 10*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := startSpinner(ctx, "working")
			cancel()
			<-s.stopped
			if !s.Interrupted() {
				t.Error("spinner should report interruption")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	quietStatus(t)
	s := startSpinner(t.Context(), "working")
	s.Stop()
	s.Stop()
}

func TestSpinnerResult(t *testing.T) {
	tests := []struct {
		name string
		end  func(*spinner)
		want string
	}{
		{"succeed", func(s *spinner) { s.Succeed("%d archives", 3) }, "3 archives"},
		{"fail", func(s *spinner) { s.Fail("Rendering failed") }, "Rendering failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := quietStatus(t)
			tt.end(startSpinner(t.Context(), "working"))
			if !strings.Contains(status.String(), tt.want) {
				t.Errorf("status = %q, want %q", status.String(), tt.want)
			}
		})
	}
}
