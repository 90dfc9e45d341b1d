package force

import (
	"sync"
	"time"
)

// FrameID identifies a scheduled frame.
type FrameID uint64

// FrameScheduler runs callbacks once per frame, like a browser's animation
// frame queue. A cancelled frame never runs.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// DefaultFrameInterval is the delay between frames of a [TimerScheduler].
const DefaultFrameInterval = 16 * time.Millisecond

// TimerScheduler schedules frames on timers.
type TimerScheduler struct {
	Interval time.Duration

	mu     sync.Mutex
	next   FrameID
	timers map[FrameID]*time.Timer
}

// NewTimerScheduler returns a scheduler firing frames every interval
// (DefaultFrameInterval when zero).
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerScheduler{Interval: interval, timers: make(map[FrameID]*time.Timer)}
}

// RequestFrame implements FrameScheduler.
func (s *TimerScheduler) RequestFrame(fn func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(s.Interval, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return id
}

// CancelFrame implements FrameScheduler.
func (s *TimerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// ManualScheduler runs frames only when stepped. It is meant for tests and
// for hosts that drive frames from their own loop.
type ManualScheduler struct {
	mu      sync.Mutex
	next    FrameID
	pending []manualFrame
}

type manualFrame struct {
	id FrameID
	fn func()
}

// RequestFrame implements FrameScheduler.
func (s *ManualScheduler) RequestFrame(fn func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending = append(s.pending, manualFrame{id: s.next, fn: fn})
	return s.next
}

// CancelFrame implements FrameScheduler.
func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.pending {
		if f.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the number of frames waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Step runs the frames that were pending when it was called and returns how
// many ran. Frames requested while stepping wait for the next Step.
func (s *ManualScheduler) Step() int {
	s.mu.Lock()
	frames := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range frames {
		f.fn()
	}
	return len(frames)
}

// RunUntilIdle steps until no frame is pending or limit steps have run, and
// returns the number of steps taken.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	steps := 0
	for steps < limit && s.Pending() > 0 {
		s.Step()
		steps++
	}
	return steps
}
