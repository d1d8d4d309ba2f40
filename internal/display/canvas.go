package display

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/overlay"
)

// styleColors maps the built-in styles to fill colours.
var styleColors = map[overlay.StyleID]color.RGBA{
	overlay.StyleGreen:  {R: 0, G: 128, B: 0, A: 255},
	overlay.StyleBlue:   {R: 0, G: 0, B: 255, A: 255},
	overlay.StyleOrange: {R: 255, G: 165, B: 0, A: 255},
	overlay.StylePink:   {R: 255, G: 192, B: 203, A: 255},
	overlay.StyleAqua:   {R: 0, G: 255, B: 255, A: 255},
	overlay.StyleYellow: {R: 255, G: 255, B: 0, A: 255},
	overlay.StyleGray:   {R: 128, G: 128, B: 128, A: 255},
	overlay.StyleRed:    {R: 255, G: 0, B: 0, A: 255},
}

// Canvas paints overlay draw commands onto frames with GoCV.
type Canvas struct {
	colors map[overlay.StyleID]color.RGBA
}

// NewCanvas creates a Canvas using the built-in style colours.
func NewCanvas() *Canvas {
	colors := make(map[overlay.StyleID]color.RGBA, len(styleColors))
	for k, v := range styleColors {
		colors[k] = v
	}
	return &Canvas{colors: colors}
}

// SetColor registers or replaces the colour for a style.
func (c *Canvas) SetColor(style overlay.StyleID, clr color.RGBA) {
	c.colors[style] = clr
}

// Color returns the colour for a style.
func (c *Canvas) Color(style overlay.StyleID) (color.RGBA, bool) {
	clr, ok := c.colors[style]
	return clr, ok
}

// Paint draws cmds onto img in order, so earlier commands end up behind
// later ones. Shapes are filled.
func (c *Canvas) Paint(img *gocv.Mat, cmds []overlay.DrawCommand) error {
	for _, cmd := range cmds {
		clr, ok := c.colors[cmd.Style]
		if !ok {
			return fmt.Errorf("no colour for style %q", cmd.Style)
		}

		center := image.Pt(int(math.Round(cmd.Center.X)), int(math.Round(cmd.Center.Y)))
		half := int(math.Round(cmd.Size / 2))

		switch cmd.Shape {
		case overlay.ShapeSquare:
			rect := image.Rect(center.X-half, center.Y-half, center.X+half, center.Y+half)
			gocv.Rectangle(img, rect, clr, -1)
		case overlay.ShapeEllipse:
			gocv.Ellipse(img, center, image.Pt(half, half), 0, 0, 360, clr, -1)
		default:
			return fmt.Errorf("unknown shape %v", cmd.Shape)
		}
	}
	return nil
}

// Compose returns a copy of frame with cmds painted on it. The caller owns
// the returned Mat.
func (c *Canvas) Compose(frame gocv.Mat, cmds []overlay.DrawCommand) (gocv.Mat, error) {
	out := frame.Clone()
	if err := c.Paint(&out, cmds); err != nil {
		out.Close()
		return gocv.NewMat(), err
	}
	return out, nil
}
