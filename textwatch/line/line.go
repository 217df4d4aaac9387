// Package line holds the state of one row of word text and the slide
// transition that replaces it.
//
// Each Line owns two slots. The visible slot sits at x=0 and the hidden slot
// waits off-screen at x=Width. A transition writes the new text into the
// hidden slot's buffer and slides both slots left by Width; the hidden slot
// becomes visible and the old one is parked back at x=Width once its exit
// animation stops.
package line

import (
	"bytes"
	"errors"
	"time"

	"github.com/harveysanders/picowatch/textwatch/anim"
)

const (
	// Width is the slide distance and the parked offset of the hidden slot.
	Width = 144
	// BufferSize is the capacity of one slot's text buffer.
	BufferSize = 44
	// MaxText is the longest text a slot accepts; one byte is kept as a terminator.
	MaxText = BufferSize - 1

	// Duration of one slide.
	Duration = 400 * time.Millisecond
)

var (
	ErrTextTooLong = errors.New("line: text exceeds buffer")
	ErrBusy        = errors.New("line: transition in flight")
)

// ID identifies one of the three rows.
type ID uint8

const (
	Top ID = iota
	Middle
	Bottom
)

func (id ID) String() string {
	switch id {
	case Top:
		return "top"
	case Middle:
		return "middle"
	case Bottom:
		return "bottom"
	}
	return "unknown"
}

// Slot names one of a line's two text regions.
type Slot uint8

const (
	SlotA Slot = iota
	SlotB
)

// Other returns the opposite slot.
func (s Slot) Other() Slot { return s ^ 1 }

// Scheduler starts animations. Schedule must start all of them or none.
type Scheduler interface {
	Schedule(anims ...*anim.Animation) error
}

// Line is one row of text.
type Line struct {
	id       ID
	y        int16
	buf      [2][BufferSize]byte
	x        [2]int16
	visible  Slot
	inFlight bool
}

// New returns a line at row offset y with SlotA visible and SlotB parked.
func New(id ID, y int16) *Line {
	l := &Line{id: id, y: y, visible: SlotA}
	l.x[SlotB] = Width
	return l
}

func (l *Line) ID() ID   { return l.id }
func (l *Line) Y() int16 { return l.y }

// Visible returns the slot that holds the displayed text.
func (l *Line) Visible() Slot { return l.visible }

// Offset returns the current x offset of s.
func (l *Line) Offset(s Slot) int16 { return l.x[s] }

// Busy reports whether a transition has not yet settled.
func (l *Line) Busy() bool { return l.inFlight }

// Text returns the content of s's buffer up to its first zero byte.
func (l *Line) Text(s Slot) string {
	b := l.buf[s][:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// VisibleText returns the displayed text.
func (l *Line) VisibleText() string { return l.Text(l.visible) }

// NeedsUpdate reports whether text differs from the displayed text.
// Only the first len(text) bytes are compared: a displayed text that merely
// extends text is not reported as a change.
func (l *Line) NeedsUpdate(text string) bool {
	if len(text) > MaxText {
		return true
	}
	cur := l.buf[l.visible][:]
	if string(cur[:len(text)]) != text {
		return true
	}
	return len(text) == 0 && cur[0] != 0
}

// SetInitial writes text into the visible slot without animating.
func (l *Line) SetInitial(text string) error {
	if len(text) > MaxText {
		return ErrTextTooLong
	}
	l.write(l.visible, text)
	return nil
}

func (l *Line) write(s Slot, text string) {
	clear(l.buf[s][:])
	copy(l.buf[s][:], text)
}

// Transition slides text in from the right. The exit animation notifies s
// with the line's ID as key; the owner must call Settle when it arrives.
// When s has no room the transition does not run and the displayed text is
// unchanged.
func (l *Line) Transition(text string, s Scheduler) error {
	if l.inFlight {
		return ErrBusy
	}
	if len(text) > MaxText {
		return ErrTextTooLong
	}
	from := l.visible
	to := from.Other()
	l.write(to, text)

	enter := &anim.Animation{
		From:     l.x[to],
		To:       l.x[to] - Width,
		Duration: Duration,
		Curve:    anim.EaseOut,
		Apply:    func(v int16) { l.x[to] = v },
	}
	exit := &anim.Animation{
		From:     l.x[from],
		To:       l.x[from] - Width,
		Duration: Duration,
		Curve:    anim.EaseOut,
		Apply:    func(v int16) { l.x[from] = v },
		Notify:   true,
		Key:      int(l.id),
	}
	if err := s.Schedule(enter, exit); err != nil {
		return err
	}
	l.visible = to
	l.inFlight = true
	return nil
}

// Settle parks the slot that just exited at x=Width, ready to be written.
func (l *Line) Settle() {
	l.x[l.visible] = 0
	l.x[l.visible.Other()] = Width
	l.inFlight = false
}
