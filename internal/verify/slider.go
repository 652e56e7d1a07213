// Package verify implements the signup form's slide-to-verify widget state.
//
// The widget is cosmetic: it maps a completed drag gesture to a boolean and
// waits a fixed delay to feel like a server round-trip. It performs no actual
// bot or human discrimination and must not be treated as a security control.
package verify

import (
	"sync"
	"time"
)

// State is the slider's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateDragging  State = "dragging"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
)

// Threshold is the progress percentage a release must reach to verify.
const Threshold = 85.0

// VerifyingDelay is the cosmetic pause between release and verified.
const VerifyingDelay = 800 * time.Millisecond

// Slider tracks one form session's drag progress. Progress only moves
// forward during an active drag and is clamped to [0,100]. Safe for
// concurrent use.
type Slider struct {
	mu       sync.Mutex
	state    State
	progress float64
	deadline time.Time
	now      func() time.Time
}

// New creates an idle slider using the wall clock.
func New() *Slider {
	return NewWithClock(time.Now)
}

// NewWithClock creates an idle slider with an injected clock.
func NewWithClock(now func() time.Time) *Slider {
	return &Slider{state: StateIdle, now: now}
}

// Begin starts a drag. No-op unless the slider is idle.
func (s *Slider) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		s.state = StateDragging
	}
}

// Move updates the drag progress. Input is clamped to [0,100] and ignored
// when it would move the handle backwards or when no drag is active.
func (s *Slider) Move(progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDragging {
		return
	}
	if progress > 100 {
		progress = 100
	}
	if progress > s.progress {
		s.progress = progress
	}
}

// Release ends the drag. At or past the threshold the slider locks into
// verifying for the cosmetic delay; below it, the handle snaps back to idle
// with progress 0. Returns true when the release passed the threshold.
func (s *Slider) Release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDragging {
		return false
	}

	if s.progress >= Threshold {
		s.state = StateVerifying
		s.deadline = s.now().Add(VerifyingDelay)
		return true
	}

	s.state = StateIdle
	s.progress = 0
	return false
}

// Reset forces the slider back to idle, clearing any verification.
func (s *Slider) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.progress = 0
	s.deadline = time.Time{}
}

// State reports the current state, promoting verifying to verified once
// the delay has elapsed.
func (s *Slider) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateVerifying && !s.now().Before(s.deadline) {
		s.state = StateVerified
		s.progress = 100
	}
	return s.state
}

// Progress returns the current progress percentage.
func (s *Slider) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Verified reports whether the gesture has completed.
func (s *Slider) Verified() bool {
	return s.State() == StateVerified
}
