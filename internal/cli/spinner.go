package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerTick = 80 * time.Millisecond

// spinnerFrames is the braille animation shown while routing.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr until Stop is called or its
// context ends. After the first second the elapsed time is appended.
type Spinner struct {
	w      io.Writer
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	message string
	width   int
	began   time.Time

	started bool
	elapsed time.Duration
	quit    chan struct{}
	exited  chan struct{}
	stop    sync.Once
}

// newSpinnerWithContext creates a spinner that stops drawing when ctx is
// cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		ctx:     ctx,
		cancel:  cancel,
		message: message,
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start begins the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.began = time.Now()
	s.mu.Unlock()

	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-s.quit:
			return
		case <-ticker.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.message
	if d := time.Since(s.began); d >= time.Second {
		text += fmt.Sprintf(" %.1fs", d.Seconds())
	}
	s.width = max(s.width, len(text)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
}

// SetMessage replaces the text shown next to the animation.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation, clears the line and returns how long the spinner
// ran. Stop may be called repeatedly and without Start.
func (s *Spinner) Stop() time.Duration {
	s.stop.Do(func() {
		close(s.quit)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.exited
		}
		s.cancel()
		s.clear()

		s.mu.Lock()
		if started {
			s.elapsed = time.Since(s.began)
		}
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Cancelled reports whether the spinner's context ended before Stop.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.quit:
		return false
	default:
	}
	return s.ctx.Err() != nil
}
