package indicator

import (
	"github.com/harveysanders/picowatch/textwatch/screen"
	"tinygo.org/x/tinydraw"
)

// Link shows a small rune-shaped glyph in the top right corner while the
// companion connection is up.
type Link struct {
	connected bool
	x, y      int16
}

// NewLink places the glyph with its top-left corner at x,y.
func NewLink(x, y int16) *Link {
	return &Link{x: x, y: y}
}

// Set records the connection state and reports whether it changed.
func (l *Link) Set(connected bool) bool {
	if l.connected == connected {
		return false
	}
	l.connected = connected
	return true
}

// Connected reports the state shown.
func (l *Link) Connected() bool { return l.connected }

// Draw paints the glyph: a vertical stem with two arrow loops, 7x12 pixels.
func (l *Link) Draw(fb *screen.Framebuffer) {
	if !l.connected {
		return
	}
	x, y := l.x, l.y
	c := screen.White
	tinydraw.Line(fb, x+3, y, x+3, y+11, c)
	tinydraw.Line(fb, x+3, y, x+6, y+3, c)
	tinydraw.Line(fb, x+6, y+3, x, y+8, c)
	tinydraw.Line(fb, x+3, y+11, x+6, y+8, c)
	tinydraw.Line(fb, x+6, y+8, x, y+3, c)
}
