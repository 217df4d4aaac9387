package anim

import (
	"errors"
	"testing"
	"time"
)

func TestEaseOut(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{0.5, 0.75},
		{1, 1},
	}
	for _, tt := range tests {
		if got := EaseOut(tt.in); got != tt.want {
			t.Errorf("EaseOut(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStepAppliesFromThenTo(t *testing.T) {
	s := NewScheduler(2)
	var got []int16
	a := &Animation{
		From:     144,
		To:       0,
		Duration: 400 * time.Millisecond,
		Curve:    EaseOut,
		Apply:    func(v int16) { got = append(got, v) },
	}
	if err := s.Schedule(a); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	start := time.Unix(0, 0)
	if !s.Step(start) {
		t.Fatal("expected animation to keep running after first step")
	}
	s.Step(start.Add(200 * time.Millisecond))
	if s.Step(start.Add(400 * time.Millisecond)) {
		t.Fatal("expected animation to retire at its duration")
	}

	want := []int16{144, 36, 0}
	if len(got) != len(want) {
		t.Fatalf("applied %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("applied %v, want %v", got, want)
		}
	}
	if s.Active() != 0 {
		t.Fatalf("active = %d, want 0", s.Active())
	}
}

func TestNotifyPostsStopped(t *testing.T) {
	s := NewScheduler(2)
	quiet := &Animation{Duration: time.Millisecond, Apply: func(int16) {}}
	loud := &Animation{Duration: time.Millisecond, Apply: func(int16) {}, Notify: true, Key: 7}
	if err := s.Schedule(quiet, loud); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	now := time.Unix(10, 0)
	s.Step(now)
	s.Step(now.Add(time.Second))

	select {
	case st := <-s.Stopped():
		if st.Key != 7 || !st.Finished {
			t.Fatalf("stopped = %+v, want key 7 finished", st)
		}
	default:
		t.Fatal("expected a Stopped message")
	}
	select {
	case st := <-s.Stopped():
		t.Fatalf("unexpected second message %+v", st)
	default:
	}
}

func TestScheduleIsAllOrNothing(t *testing.T) {
	s := NewScheduler(3)
	noop := func(int16) {}
	if err := s.Schedule(&Animation{Apply: noop, Duration: time.Second}, &Animation{Apply: noop, Duration: time.Second}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	err := s.Schedule(&Animation{Apply: noop}, &Animation{Apply: noop})
	if !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
	if s.Active() != 2 {
		t.Fatalf("active = %d, want 2", s.Active())
	}
}

func TestUndrainedStoppedHoldsCapacity(t *testing.T) {
	s := NewScheduler(1)
	a := &Animation{Apply: func(int16) {}, Notify: true}
	if err := s.Schedule(a); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	s.Step(time.Unix(0, 0))
	if s.Free() != 0 {
		t.Fatalf("free = %d before draining, want 0", s.Free())
	}
	<-s.Stopped()
	if s.Free() != 1 {
		t.Fatalf("free = %d after draining, want 1", s.Free())
	}
}

func TestCancel(t *testing.T) {
	s := NewScheduler(2)
	var last int16 = -1
	a := &Animation{From: 0, To: 100, Duration: time.Second, Apply: func(v int16) { last = v }, Notify: true, Key: 2}
	if err := s.Schedule(a); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	s.Step(time.Unix(0, 0))
	s.Cancel()
	if last != 0 {
		t.Fatalf("last = %d, cancel must not apply the end value", last)
	}
	st := <-s.Stopped()
	if st.Finished || st.Key != 2 {
		t.Fatalf("stopped = %+v, want unfinished key 2", st)
	}
}
