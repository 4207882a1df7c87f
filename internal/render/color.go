package render

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	FieldGreen     = color.NRGBA{R: 0x2d, G: 0x50, B: 0x16, A: 0xff}
	LineWhite      = color.NRGBA(colornames.White)
	LabelBlack     = color.NRGBA(colornames.Black)
	HighlightColor = color.NRGBA(colornames.Yellow)
)

// ParseColor accepts "#rgb", "#rrggbb" or a CSS color name. Anything else
// falls back to white.
func ParseColor(s string) color.NRGBA {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && len(s) == 4 {
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	if c, err := colorful.Hex(s); err == nil {
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return color.NRGBA(c)
	}
	return LineWhite
}

// WithAlpha returns c with its alpha replaced by a (0..1).
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}

// Hex formats c as "#rrggbb".
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
