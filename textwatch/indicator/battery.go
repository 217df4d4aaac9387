// Package indicator draws the peripheral status marks around the word lines:
// a battery bar along one screen edge and a link glyph in the corner.
package indicator

import (
	"image/color"

	"github.com/harveysanders/picowatch/textwatch/screen"
	"tinygo.org/x/tinydraw"
)

// Position is the screen edge the battery bar runs along.
type Position uint8

const (
	PositionTop Position = iota
	PositionBottom
	PositionLeft
	PositionRight
)

// Direction is where a partially filled bar is anchored. Down anchors a
// horizontal bar at the right edge and a vertical bar at the top; Up anchors
// at the left edge and the bottom.
type Direction uint8

const (
	DirectionUp Direction = iota
	DirectionDown
)

// BarColor picks the colour of the filled part.
type BarColor uint8

const (
	ColorWhite BarColor = iota
	ColorBlack
)

// statusBarHeight is reserved at the top when the face is not a full-screen
// watch app.
const statusBarHeight = 16

// Thickness of the battery bar in pixels.
const Thickness = 2

// BatteryOptions configures the battery bar.
type BatteryOptions struct {
	Position   Position
	Direction  Direction
	Color      BarColor
	IsWatchApp bool
}

// DefaultBatteryOptions is a white bar along the top edge of a watch app.
var DefaultBatteryOptions = BatteryOptions{
	Position:   PositionTop,
	Direction:  DirectionDown,
	Color:      ColorWhite,
	IsWatchApp: true,
}

// Battery is a layer showing the charge level as a bar.
type Battery struct {
	opts     BatteryOptions
	percent  uint8
	charging bool
}

// NewBattery creates a battery bar showing a full charge until the first
// reading arrives.
func NewBattery(opts BatteryOptions) *Battery {
	return &Battery{opts: opts, percent: 100}
}

// Set updates the level and reports whether anything changed.
func (b *Battery) Set(percent uint8, charging bool) bool {
	if percent > 100 {
		percent = 100
	}
	if percent == b.percent && charging == b.charging {
		return false
	}
	b.percent = percent
	b.charging = charging
	return true
}

// Percent returns the level shown.
func (b *Battery) Percent() uint8 { return b.percent }

// Rect returns the filled rectangle for a screen of size w x h.
func (b *Battery) Rect(w, h int16) (x, y, rw, rh int16) {
	top := int16(0)
	if !b.opts.IsWatchApp {
		top = statusBarHeight
	}
	switch b.opts.Position {
	case PositionTop, PositionBottom:
		rw = int16(int32(w) * int32(b.percent) / 100)
		rh = Thickness
		y = top
		if b.opts.Position == PositionBottom {
			y = h - Thickness
		}
		if b.opts.Direction == DirectionDown {
			x = w - rw
		}
	default:
		span := h - top
		rw = Thickness
		rh = int16(int32(span) * int32(b.percent) / 100)
		y = top
		if b.opts.Direction == DirectionUp {
			y = h - rh
		}
		if b.opts.Position == PositionRight {
			x = w - Thickness
		}
	}
	return x, y, rw, rh
}

func (b *Battery) Draw(fb *screen.Framebuffer) {
	w, h := fb.Size()
	x, y, rw, rh := b.Rect(w, h)
	if rw <= 0 || rh <= 0 {
		return
	}
	tinydraw.FilledRectangle(fb, x, y, rw, rh, b.color())
}

func (b *Battery) color() color.RGBA {
	if b.opts.Color == ColorBlack {
		return screen.Black
	}
	return screen.White
}

// Battery voltage span of a single Li-ion cell.
const (
	EmptyMillivolts = 3300
	FullMillivolts  = 4200
)

// Percent converts a cell voltage into a charge level in 10% steps.
func Percent(millivolts uint16) uint8 {
	switch {
	case millivolts <= EmptyMillivolts:
		return 0
	case millivolts >= FullMillivolts:
		return 100
	}
	p := uint32(millivolts-EmptyMillivolts) * 100 / (FullMillivolts - EmptyMillivolts)
	return uint8(p / 10 * 10)
}
