// Package screen composes layers into a monochrome framebuffer and pushes it
// to a panel.
//
// Example usage:
//
//	scr := screen.New(&display, 144, 168)
//	scr.Add(textLayer)
//	scr.Add(screen.NewInverter(scr.Bounds()))
//	err := scr.Render()
package screen

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pixel"
)

var (
	Black = color.RGBA{0, 0, 0, 255}
	White = color.RGBA{255, 255, 255, 255}
)

var (
	on  = pixel.NewMonochrome(255, 255, 255)
	off = pixel.NewMonochrome(0, 0, 0)
)

// Framebuffer is a 1-bit image that layers draw into. It satisfies
// drivers.Displayer so tinyfont and tinydraw can target it directly.
type Framebuffer struct {
	img           pixel.Image[pixel.Monochrome]
	width, height int16
}

// NewFramebuffer allocates a width x height framebuffer.
func NewFramebuffer(width, height int16) *Framebuffer {
	return &Framebuffer{
		img:    pixel.NewImage[pixel.Monochrome](int(width), int(height)),
		width:  width,
		height: height,
	}
}

func (fb *Framebuffer) Size() (x, y int16) { return fb.width, fb.height }

// SetPixel ignores coordinates outside the framebuffer, so text can slide
// past the edges.
func (fb *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	fb.img.Set(int(x), int(y), pixel.NewMonochrome(c.R, c.G, c.B))
}

// Display is a no-op; Screen.Render pushes the framebuffer.
func (fb *Framebuffer) Display() error { return nil }

// Lit reports whether the pixel at x,y is white.
func (fb *Framebuffer) Lit(x, y int16) bool {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return false
	}
	return fb.img.Get(int(x), int(y)) == on
}

// Fill paints every pixel with c.
func (fb *Framebuffer) Fill(c color.RGBA) {
	v := pixel.NewMonochrome(c.R, c.G, c.B)
	for y := 0; y < int(fb.height); y++ {
		for x := 0; x < int(fb.width); x++ {
			fb.img.Set(x, y, v)
		}
	}
}

// Invert flips every pixel inside r.
func (fb *Framebuffer) Invert(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, int(fb.width), int(fb.height)))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if fb.img.Get(x, y) == on {
				fb.img.Set(x, y, off)
			} else {
				fb.img.Set(x, y, on)
			}
		}
	}
}

var _ drivers.Displayer = (*Framebuffer)(nil)

// Layer draws itself into a framebuffer. Layers are drawn in the order they
// were added, so later layers paint over earlier ones.
type Layer interface {
	Draw(fb *Framebuffer)
}

// Screen owns the layer stack and the panel.
type Screen struct {
	dev        drivers.Displayer
	fb         *Framebuffer
	layers     []Layer
	background color.RGBA
}

// New creates a screen for dev with a black background.
func New(dev drivers.Displayer, width, height int16) *Screen {
	return &Screen{
		dev:        dev,
		fb:         NewFramebuffer(width, height),
		background: Black,
	}
}

// Bounds is the full screen rectangle.
func (s *Screen) Bounds() image.Rectangle {
	w, h := s.fb.Size()
	return image.Rect(0, 0, int(w), int(h))
}

// Framebuffer returns the composition target.
func (s *Screen) Framebuffer() *Framebuffer { return s.fb }

// Add puts l on top of the stack. Adding a layer that is already present
// does nothing.
func (s *Screen) Add(l Layer) {
	if s.Contains(l) {
		return
	}
	s.layers = append(s.layers, l)
}

// Remove takes l off the stack and reports whether it was present.
func (s *Screen) Remove(l Layer) bool {
	for i, have := range s.layers {
		if have == l {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether l is on the stack.
func (s *Screen) Contains(l Layer) bool {
	for _, have := range s.layers {
		if have == l {
			return true
		}
	}
	return false
}

// Len returns the number of layers.
func (s *Screen) Len() int { return len(s.layers) }

// Render composes all layers and sends the result to the panel.
func (s *Screen) Render() error {
	s.fb.Fill(s.background)
	for _, l := range s.layers {
		l.Draw(s.fb)
	}
	w, h := s.fb.Size()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			if s.fb.Lit(x, y) {
				s.dev.SetPixel(x, y, White)
			} else {
				s.dev.SetPixel(x, y, Black)
			}
		}
	}
	return s.dev.Display()
}

// Inverter flips the colours of everything drawn beneath it.
type Inverter struct {
	Bounds image.Rectangle
}

// NewInverter returns an inverter covering r.
func NewInverter(r image.Rectangle) *Inverter {
	return &Inverter{Bounds: r}
}

func (inv *Inverter) Draw(fb *Framebuffer) { fb.Invert(inv.Bounds) }
