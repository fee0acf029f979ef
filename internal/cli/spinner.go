package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on statusOut until stopped or until its
// context ends.
type spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context

	mu    sync.Mutex
	label string
	width int // widest line drawn so far

	cancel  context.CancelFunc
	once    sync.Once
	stopped chan struct{}
}

// startSpinner draws label next to an animated frame until the spinner is
// stopped or ctx is done.
func startSpinner(ctx context.Context, label string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       statusOut,
		parent:  ctx,
		ctx:     inner,
		label:   label,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.label)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.label))
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
	}
}

// Update replaces the label shown next to the frame.
func (s *spinner) Update(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// Succeed stops the spinner and prints a success line.
func (s *spinner) Succeed(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// Fail stops the spinner and prints an error line.
func (s *spinner) Fail(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}

// Interrupted reports whether the parent context ended, as opposed to a
// call to Stop.
func (s *spinner) Interrupted() bool {
	return s.parent.Err() != nil
}
