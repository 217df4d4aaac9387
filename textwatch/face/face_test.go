package face

import (
	"testing"
	"time"

	"github.com/harveysanders/picowatch/textwatch/anim"
	"github.com/harveysanders/picowatch/textwatch/line"
	"github.com/harveysanders/picowatch/textwatch/words"
)

// tagFormatter makes each output identify its argument position.
type tagFormatter struct{}

func (tagFormatter) Format(hour, minute int) (a, b, c string) {
	return "first", "second", "third"
}

// countingScheduler accepts every animation and counts them.
type countingScheduler struct {
	calls int
}

func (s *countingScheduler) Schedule(anims ...*anim.Animation) error {
	s.calls++
	return nil
}

func TestColdStart(t *testing.T) {
	sched := &countingScheduler{}
	f := New(words.Turkish{}, sched, nil)
	f.Show(Clock{Hour: 3, Minute: 15})

	if !f.Started() {
		t.Fatal("face not started after first Show")
	}
	if sched.calls != 0 {
		t.Fatalf("cold start scheduled %d transitions, want 0", sched.calls)
	}
	want := [3]string{"üç", "on", "beş"}
	for i, l := range f.Lines() {
		vis := l.Visible()
		if l.Offset(vis) != 0 || l.Offset(vis.Other()) != line.Width {
			t.Errorf("line %d offsets = %d,%d", i, l.Offset(vis), l.Offset(vis.Other()))
		}
		if l.VisibleText() != want[i] {
			t.Errorf("line %d text = %q, want %q", i, l.VisibleText(), want[i])
		}
	}
}

func TestOnTheHourSwap(t *testing.T) {
	f := New(tagFormatter{}, &countingScheduler{}, nil)
	for h := 0; h < 24; h++ {
		got := f.Texts(Clock{Hour: h, Minute: 0})
		if got[0] != "second" || got[1] != "first" || got[2] != "third" {
			t.Fatalf("hour %d on the hour = %v, want second/first/third", h, got)
		}
		got = f.Texts(Clock{Hour: h, Minute: 1})
		if got[0] != "first" || got[1] != "second" {
			t.Fatalf("hour %d minute 1 = %v, want first/second/third", h, got)
		}
	}
}

func TestOnTheHourScenario(t *testing.T) {
	f := New(words.Turkish{}, &countingScheduler{}, nil)
	f.Show(Clock{Hour: 3, Minute: 0})
	want := [3]string{"saat", "üç", ""}
	for i, l := range f.Lines() {
		if l.VisibleText() != want[i] {
			t.Errorf("line %d = %q, want %q", i, l.VisibleText(), want[i])
		}
	}
}

func TestSteadyStateAnimatesOnlyChangedLines(t *testing.T) {
	sched := &countingScheduler{}
	f := New(words.Turkish{}, sched, nil)
	f.Show(Clock{Hour: 3, Minute: 15})
	f.Show(Clock{Hour: 3, Minute: 16})
	if sched.calls != 1 {
		t.Fatalf("scheduled %d transitions, want 1 (bottom line only)", sched.calls)
	}
	if !f.Line(line.Bottom).Busy() || f.Line(line.Top).Busy() || f.Line(line.Middle).Busy() {
		t.Fatal("only the bottom line should be in flight")
	}
}

func TestRepeatedUpdateIsIdempotent(t *testing.T) {
	sched := anim.NewScheduler(6)
	f := New(words.Turkish{}, sched, nil)
	f.Show(Clock{Hour: 9, Minute: 59})

	next := Clock{Hour: 10, Minute: 0}
	f.Show(next)
	first := sched.Active()
	if first != 6 {
		t.Fatalf("active = %d after hour change, want 6", first)
	}
	f.Show(next)
	if sched.Active() != first {
		t.Fatalf("second identical update started animations: %d -> %d", first, sched.Active())
	}

	runToRest(t, f, sched)
	if sched.Active() != 0 {
		t.Fatalf("active = %d after settling, want 0", sched.Active())
	}
	f.Show(next)
	if sched.Active() != 0 {
		t.Fatal("identical text after settling must not animate")
	}
}

func TestPendingTextAppliedAfterSettle(t *testing.T) {
	sched := anim.NewScheduler(6)
	f := New(words.Turkish{}, sched, nil)
	f.Show(Clock{Hour: 3, Minute: 15})

	f.Show(Clock{Hour: 3, Minute: 16})
	f.Show(Clock{Hour: 3, Minute: 17}) // bottom line busy; remembered
	if got := f.Line(line.Bottom).VisibleText(); got != "altı" {
		t.Fatalf("bottom = %q while busy, want %q", got, "altı")
	}

	runToRest(t, f, sched)
	if got := f.Line(line.Bottom).VisibleText(); got != "yedi" {
		t.Fatalf("bottom = %q after settle, want %q", got, "yedi")
	}
}

// runToRest steps sched until every animation settled.
func runToRest(t *testing.T, f *Face, sched *anim.Scheduler) {
	t.Helper()
	now := time.Unix(0, 0)
	for i := 0; i < 100; i++ {
		sched.Step(now)
		now = now.Add(100 * time.Millisecond)
	drain:
		for {
			select {
			case st := <-sched.Stopped():
				f.Settle(st.Key)
			default:
				break drain
			}
		}
		if sched.Active() == 0 {
			return
		}
	}
	t.Fatal("animations never settled")
}

func TestClockAdjust(t *testing.T) {
	tests := []struct {
		name string
		from Clock
		inc  bool
		want Clock
	}{
		{"inc within hour", Clock{3, 14}, true, Clock{3, 15}},
		{"inc from 59", Clock{3, 59}, true, Clock{4, 0}},
		{"inc wraps day", Clock{23, 59}, true, Clock{0, 0}},
		{"dec within hour", Clock{3, 15}, false, Clock{3, 14}},
		{"dec from 0", Clock{3, 0}, false, Clock{2, 59}},
		{"dec wraps day", Clock{0, 0}, false, Clock{23, 59}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.from
			if tt.inc {
				c.Inc()
			} else {
				c.Dec()
			}
			if c != tt.want {
				t.Fatalf("got %+v, want %+v", c, tt.want)
			}
		})
	}
}

func TestSettleUnknownKeyIgnored(t *testing.T) {
	f := New(words.Turkish{}, &countingScheduler{}, nil)
	f.Settle(9)
	f.Settle(-1)
}
