package app

import (
	"github.com/harveysanders/picowatch/textwatch/face"
	"github.com/harveysanders/picowatch/textwatch/line"
	"github.com/harveysanders/picowatch/textwatch/screen"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
)

// baseline is the distance from a line's row top to its text baseline.
const baseline = 30

// linesLayer draws both slots of every line at their current offsets.
type linesLayer struct {
	face  *face.Face
	fonts [3]tinyfont.Fonter
	cache [3][2]screen.TextCache
}

func newLinesLayer(f *face.Face) *linesLayer {
	return &linesLayer{
		face: f,
		fonts: [3]tinyfont.Fonter{
			&freesans.Bold18pt7b,
			&freesans.Regular18pt7b,
			&freesans.Regular18pt7b,
		},
	}
}

func (ll *linesLayer) Draw(fb *screen.Framebuffer) {
	for i, l := range ll.face.Lines() {
		for _, s := range [2]line.Slot{line.SlotA, line.SlotB} {
			x := l.Offset(s)
			if x <= -line.Width || x >= line.Width {
				continue
			}
			text := ll.cache[i][s].Fold(l.Text(s))
			if text == "" {
				continue
			}
			screen.DrawText(fb, ll.fonts[i], x, l.Y()+baseline, text, screen.White)
		}
	}
}
