// Package anim is a small property animator for a single-threaded event loop.
//
// A Scheduler owns a fixed pool of running animations. The event loop calls
// Step on every frame; each animation writes its interpolated value through
// its Apply func. Animations that ask to be notified post a Stopped message
// on the scheduler's channel once they complete.
//
// Example usage:
//
//	s := anim.NewScheduler(8)
//	err := s.Schedule(&anim.Animation{
//	    From: 144, To: 0,
//	    Duration: 400 * time.Millisecond,
//	    Curve: anim.EaseOut,
//	    Apply: func(v int16) { x = v },
//	})
//	for s.Active() > 0 {
//	    s.Step(time.Now())
//	}
package anim

import (
	"errors"
	"time"
)

// ErrNoCapacity is returned by Schedule when the pool cannot hold the
// requested animations.
var ErrNoCapacity = errors.New("anim: no capacity")

// Curve maps linear progress in [0,1] to eased progress in [0,1].
type Curve func(t float32) float32

// Linear progresses at a constant rate.
func Linear(t float32) float32 { return t }

// EaseOut starts fast and decelerates into the end value.
func EaseOut(t float32) float32 {
	inv := 1 - t
	return 1 - inv*inv
}

// Stopped is posted when a notifying animation completes.
type Stopped struct {
	Key      int
	Finished bool // false when the animation was cancelled
}

// Animation moves an int16 property from From to To over Duration.
type Animation struct {
	From, To int16
	Duration time.Duration
	Curve    Curve // nil means Linear
	Apply    func(v int16)

	Notify bool // post a Stopped message keyed by Key on completion
	Key    int

	start   time.Time
	started bool
}

// value returns the property value at elapsed time d.
func (a *Animation) value(d time.Duration) int16 {
	if d >= a.Duration || a.Duration <= 0 {
		return a.To
	}
	if d <= 0 {
		return a.From
	}
	t := float32(d) / float32(a.Duration)
	if a.Curve != nil {
		t = a.Curve(t)
	}
	delta := float32(a.To-a.From) * t
	return a.From + int16(delta)
}

// Scheduler runs animations. It is not safe for concurrent use; all calls are
// expected from the event loop goroutine.
type Scheduler struct {
	active  []*Animation
	stopped chan Stopped
}

// NewScheduler creates a scheduler that runs at most capacity animations.
func NewScheduler(capacity int) *Scheduler {
	if capacity < 1 {
		capacity = 1
	}
	return &Scheduler{
		active:  make([]*Animation, 0, capacity),
		stopped: make(chan Stopped, capacity),
	}
}

// Schedule adds all anims or none of them. Running animations plus undrained
// Stopped messages never exceed capacity, so posting never blocks.
func (s *Scheduler) Schedule(anims ...*Animation) error {
	if len(anims) > s.Free() {
		return ErrNoCapacity
	}
	for _, a := range anims {
		if a == nil || a.Apply == nil {
			return errors.New("anim: animation without Apply")
		}
	}
	for _, a := range anims {
		a.started = false
		s.active = append(s.active, a)
	}
	return nil
}

// Free reports how many more animations can be scheduled.
func (s *Scheduler) Free() int {
	return cap(s.active) - len(s.active) - len(s.stopped)
}

// Active reports the number of running animations.
func (s *Scheduler) Active() int { return len(s.active) }

// Stopped returns the channel completion messages are posted on.
func (s *Scheduler) Stopped() <-chan Stopped { return s.stopped }

// Step advances every running animation to now and retires the completed
// ones. It returns true while animations remain.
func (s *Scheduler) Step(now time.Time) bool {
	kept := s.active[:0]
	for _, a := range s.active {
		if !a.started {
			a.start = now
			a.started = true
		}
		elapsed := now.Sub(a.start)
		a.Apply(a.value(elapsed))
		if elapsed < a.Duration {
			kept = append(kept, a)
			continue
		}
		if a.Notify {
			s.stopped <- Stopped{Key: a.Key, Finished: true}
		}
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept
	return len(s.active) > 0
}

// Cancel stops every running animation without applying its end value.
// Notifying animations still post, with Finished false.
func (s *Scheduler) Cancel() {
	for i, a := range s.active {
		if a.Notify {
			s.stopped <- Stopped{Key: a.Key}
		}
		s.active[i] = nil
	}
	s.active = s.active[:0]
}
