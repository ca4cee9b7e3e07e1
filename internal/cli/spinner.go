package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on w showing the current step and the
// time since it started. It stops when stop is called or ctx ends.
type spinner struct {
	w     io.Writer
	ctx   context.Context
	start time.Time

	mu    sync.Mutex
	msg   string
	drawn int // visible width of the last line, 0 when clear

	halt     context.CancelFunc
	exited   chan struct{}
	stopOnce sync.Once
}

func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	inner, halt := context.WithCancel(context.Background())
	s := &spinner{
		w:      w,
		ctx:    ctx,
		start:  time.Now(),
		msg:    msg,
		halt:   halt,
		exited: make(chan struct{}),
	}
	go s.loop(inner)
	return s
}

func (s *spinner) loop(inner context.Context) {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-inner.Done():
			return
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
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.msg+" "+elapsed.String())
	pad := max(s.drawn-lipgloss.Width(line), 0)
	fmt.Fprint(s.w, "\r"+line+strings.Repeat(" ", pad))
	s.drawn = lipgloss.Width(line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
	s.drawn = 0
}

// update replaces the step message.
func (s *spinner) update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// stop ends the animation and clears the line. It reports whether the
// context was cancelled before the work finished. Safe to call twice.
func (s *spinner) stop() (interrupted bool) {
	interrupted = s.ctx.Err() != nil
	s.stopOnce.Do(func() {
		s.halt()
		<-s.exited
		s.clear()
	})
	return interrupted
}

// fail stops the spinner and prints msg as a failure.
func (s *spinner) fail(msg string) {
	s.stop()
	newPrinter(s.w).failure("%s", msg)
}
