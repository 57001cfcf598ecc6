package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner provides an animated loading indicator
type Spinner struct {
	frames   []string
	interval time.Duration
	out      io.Writer
	message  string
	stop     chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner drawing on w. Commands pass stderr so stdout
// stays clean for answers and documents.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		frames:   spinnerFrames,
		interval: 80 * time.Millisecond,
		out:      w,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the spinner animation with the given message
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.message = message
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		i := 0
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.draw(i)

		for {
			select {
			case <-s.stop:
				// Clear the spinner line
				fmt.Fprint(s.out, "\r\033[K")
				close(s.done)
				return
			case <-ticker.C:
				i = (i + 1) % len(s.frames)
				s.draw(i)
			}
		}
	}()
}

func (s *Spinner) draw(i int) {
	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	fmt.Fprintf(s.out, "\r\033[K%s %s", SpinnerStyle.Render(s.frames[i]), msg)
}

// Stop halts the spinner animation
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

// UpdateMessage changes the spinner message while running
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// IsRunning returns whether the spinner is currently active
func (s *Spinner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
