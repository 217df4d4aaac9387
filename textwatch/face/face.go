// Package face drives the three word lines from the clock.
package face

import (
	"errors"
	"io"
	"log/slog"

	"github.com/harveysanders/picowatch/textwatch/anim"
	"github.com/harveysanders/picowatch/textwatch/line"
	"github.com/harveysanders/picowatch/textwatch/words"
)

// Row tops of the three lines on a 144x168 panel.
var rows = [3]int16{16, 56, 95}

// Face owns the three lines. The first Show is a cold start; later calls
// animate only the lines whose text changed.
type Face struct {
	lines   [3]*line.Line
	format  words.Formatter
	sched   line.Scheduler
	log     *slog.Logger
	started bool

	// Text that arrived while a line was busy, re-checked when it settles.
	pending    [3]string
	hasPending [3]bool
}

// New creates a face. A nil logger discards output.
func New(format words.Formatter, sched line.Scheduler, logger *slog.Logger) *Face {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f := &Face{format: format, sched: sched, log: logger}
	for i := range f.lines {
		f.lines[i] = line.New(line.ID(i), rows[i])
	}
	return f
}

// Line returns the line with the given id.
func (f *Face) Line(id line.ID) *line.Line { return f.lines[id] }

// Lines returns all three lines, top first.
func (f *Face) Lines() [3]*line.Line { return f.lines }

// Started reports whether the cold start has happened.
func (f *Face) Started() bool { return f.started }

// Texts returns the formatted texts for c in line order. On the hour the
// formatter's first two outputs trade places.
func (f *Face) Texts(c Clock) [3]string {
	var t [3]string
	if c.Minute == 0 {
		t[1], t[0], t[2] = f.format.Format(c.Hour, c.Minute)
	} else {
		t[0], t[1], t[2] = f.format.Format(c.Hour, c.Minute)
	}
	return t
}

// Show displays c.
func (f *Face) Show(c Clock) {
	texts := f.Texts(c)
	if !f.started {
		for i, l := range f.lines {
			if err := l.SetInitial(texts[i]); err != nil {
				f.log.Error("face:initial", slog.String("line", l.ID().String()), slog.String("err", err.Error()))
			}
		}
		f.started = true
		return
	}
	for i := range f.lines {
		f.update(i, texts[i])
	}
}

func (f *Face) update(i int, text string) {
	l := f.lines[i]
	if l.Busy() {
		f.pending[i] = text
		f.hasPending[i] = true
		return
	}
	if !l.NeedsUpdate(text) {
		return
	}
	err := l.Transition(text, f.sched)
	switch {
	case err == nil:
		f.log.Debug("face:transition", slog.String("line", l.ID().String()), slog.String("text", text))
	case errors.Is(err, anim.ErrNoCapacity):
		// Retried on the next tick.
		f.log.Debug("face:transition-skipped", slog.String("line", l.ID().String()))
	default:
		f.log.Error("face:transition", slog.String("line", l.ID().String()), slog.String("err", err.Error()))
	}
}

// Settle handles the completion of a line's exit animation. key is the
// line id carried by anim.Stopped.
func (f *Face) Settle(key int) {
	if key < 0 || key >= len(f.lines) {
		f.log.Warn("face:settle-unknown", slog.Int("key", key))
		return
	}
	f.lines[key].Settle()
	if f.hasPending[key] {
		f.hasPending[key] = false
		f.update(key, f.pending[key])
	}
}
