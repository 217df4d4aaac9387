package screen

import (
	"image/color"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"tinygo.org/x/tinyfont"
)

// dotless maps the Turkish letters that have no decomposition.
var dotless = runes.Map(func(r rune) rune {
	switch r {
	case 'ı':
		return 'i'
	case 'İ':
		return 'I'
	}
	return r
})

// Fold rewrites s with the ASCII letters the 7-bit fonts carry: marks are
// stripped after decomposition and dotless i becomes i.
func Fold(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), dotless, norm.NFC)
			out, _, err := transform.String(t, s)
			if err != nil {
				return s
			}
			return out
		}
	}
	return s
}

// TextCache remembers the folded form of the last string it saw so a layer
// redrawn every frame does not re-run the transform.
type TextCache struct {
	src, folded string
}

// Fold returns Fold(s), reusing the previous result when s is unchanged.
func (c *TextCache) Fold(s string) string {
	if s != c.src {
		c.src = s
		c.folded = Fold(s)
	}
	return c.folded
}

// DrawText writes s with its baseline at y, starting at x.
func DrawText(fb *Framebuffer, font tinyfont.Fonter, x, y int16, s string, c color.RGBA) {
	tinyfont.WriteLine(fb, font, x, y, s, c)
}
