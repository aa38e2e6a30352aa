package sim

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette holds the colours creatures are painted with at birth.
var Palette = []Color{
	{R: 255, G: 0, B: 0},
	{R: 0, G: 255, B: 0},
	{R: 0, G: 0, B: 255},
	{R: 255, G: 0, B: 255},
	{R: 0, G: 255, B: 255},
}

// colorPair draws two distinct palette colours.
func colorPair(rng *rand.Rand) [2]Color {
	primary := rng.IntN(len(Palette))
	secondary := rng.IntN(len(Palette) - 1)
	if secondary >= primary {
		secondary++
	}
	return [2]Color{Palette[primary], Palette[secondary]}
}

// speciesColor spreads species hues by the golden angle.
func speciesColor(id int) Color {
	const goldenAngle = 137.508
	hue := math.Mod(float64(id)*goldenAngle, 360.0)
	r, g, b := hsvToRGB(hue, 0.7, 0.9)
	return Color{R: r, G: g, B: b}
}

// hsvToRGB converts HSV to RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// ShapeKind selects the primitive a renderer draws.
type ShapeKind int

const (
	Disc ShapeKind = iota
	Ring
)

func (k ShapeKind) String() string {
	switch k {
	case Disc:
		return "Disc"
	case Ring:
		return "Ring"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Shape is one drawable layer of a creature. Offsets and radius are in
// creature units; the renderer multiplies them by Info.Scale.
type Shape struct {
	Kind    ShapeKind
	OffsetX float64
	OffsetY float64
	Radius  float64
	Color   Color
}

// Shapes returns the layers of the creature, outermost first: a body disc in
// the primary colour followed by one concentric ring per hidden node,
// alternating secondary and primary colours. The sequence is computed from
// the genome at iteration time and can be ranged over any number of times.
func (c *Creature) Shapes() iter.Seq[Shape] {
	return func(yield func(Shape) bool) {
		if !yield(Shape{Kind: Disc, Radius: 1, Color: c.Colors[0]}) {
			return
		}
		rings := c.Dna.HiddenCount()
		for i := 0; i < rings; i++ {
			shape := Shape{
				Kind:   Ring,
				Radius: 1 - float64(i+1)/float64(rings+1),
				Color:  c.Colors[(i+1)%2],
			}
			if !yield(shape) {
				return
			}
		}
	}
}
