// Package surface provides the floating-point RGB drawables shared by
// patterns and the feedback compositor.
//
// Channels are linear and unbounded: drawing adds light, and values above 1
// are kept until export, where they are clamped to 8 bits. This lets the
// compositor accumulate trails without saturating early.
package surface

import (
	"fmt"
	"math"
)

// Channels is the number of float values per pixel.
const Channels = 3

// Color is a linear RGB triple. It has the same layout as
// colorful.Color, so palettes convert with a plain conversion.
type Color struct {
	R, G, B float64
}

// Scale returns c with every channel multiplied by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Surface is a Width x Height RGB buffer stored row-major in Pix, three
// values per pixel.
type Surface struct {
	Width  int
	Height int
	Pix    []float64
}

// New allocates a cleared surface.
func New(width, height int) (*Surface, error) {
	if err := validateSize(width, height); err != nil {
		return nil, err
	}
	return &Surface{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*Channels),
	}, nil
}

func validateSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface size must be > 0: %dx%d", width, height)
	}
	return nil
}

// Clear sets every channel to zero.
func (s *Surface) Clear() {
	clear(s.Pix)
}

// Resize changes the dimensions and clears the contents. The backing array
// is reused when large enough.
func (s *Surface) Resize(width, height int) error {
	if err := validateSize(width, height); err != nil {
		return err
	}
	n := width * height * Channels
	if cap(s.Pix) >= n {
		s.Pix = s.Pix[:n]
	} else {
		s.Pix = make([]float64, n)
	}
	s.Width = width
	s.Height = height
	s.Clear()
	return nil
}

// SameSize reports whether s and o have equal dimensions.
func (s *Surface) SameSize(o *Surface) bool {
	return o != nil && s.Width == o.Width && s.Height == o.Height
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c Color) {
	for i := 0; i < len(s.Pix); i += Channels {
		s.Pix[i] = c.R
		s.Pix[i+1] = c.G
		s.Pix[i+2] = c.B
	}
}

// At returns the pixel at (x, y), or black outside the surface.
func (s *Surface) At(x, y int) Color {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return Color{}
	}
	i := (y*s.Width + x) * Channels
	return Color{s.Pix[i], s.Pix[i+1], s.Pix[i+2]}
}

// Add adds c to the pixel at (x, y). Writes outside the surface are
// dropped.
func (s *Surface) Add(x, y int, c Color) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return
	}
	i := (y*s.Width + x) * Channels
	s.Pix[i] += c.R
	s.Pix[i+1] += c.G
	s.Pix[i+2] += c.B
}

// Splat adds a soft disc centred on (cx, cy). Intensity falls off as
// (1 - d²/r²)², reaching zero at radius. A radius below one pixel adds c to
// the nearest pixel.
func (s *Surface) Splat(cx, cy, radius float64, c Color) {
	if math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}
	if !(radius >= 1) {
		s.Add(int(math.Floor(cx)), int(math.Floor(cy)), c)
		return
	}

	x0 := max(int(math.Floor(cx-radius)), 0)
	x1 := min(int(math.Ceil(cx+radius)), s.Width-1)
	y0 := max(int(math.Floor(cy-radius)), 0)
	y1 := min(int(math.Ceil(cy+radius)), s.Height-1)
	inv := 1 / (radius * radius)

	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			q := 1 - (dx*dx+dy*dy)*inv
			if q <= 0 {
				continue
			}
			s.Add(x, y, c.Scale(q*q))
		}
	}
}

// Line adds a one-pixel line from (x0, y0) to (x1, y1), stepping once per
// pixel along the major axis.
func (s *Surface) Line(x0, y0, x1, y1 float64, c Color) {
	dx, dy := x1-x0, y1-y0
	steps := math.Ceil(math.Max(math.Abs(dx), math.Abs(dy)))
	if math.IsNaN(steps) || math.IsInf(steps, 0) {
		return
	}
	if steps == 0 {
		s.Add(int(math.Floor(x0)), int(math.Floor(y0)), c)
		return
	}
	// Runaway simulations can produce absurd lengths.
	if steps > float64(2*(s.Width+s.Height)) {
		return
	}
	sx, sy := dx/steps, dy/steps
	for i := 0.0; i < steps; i++ {
		s.Add(int(math.Floor(x0+sx*i)), int(math.Floor(y0+sy*i)), c)
	}
	s.Add(int(math.Floor(x1)), int(math.Floor(y1)), c)
}

// WriteRGBA writes the surface as 8-bit RGBA into dst, which must hold
// 4*Width*Height bytes. Channels are clamped to [0, 1] and alpha is opaque.
func (s *Surface) WriteRGBA(dst []byte) error {
	n := s.Width * s.Height
	if len(dst) < n*4 {
		return fmt.Errorf("rgba buffer too small: %d < %d", len(dst), n*4)
	}
	for p := 0; p < n; p++ {
		i := p * Channels
		o := p * 4
		dst[o] = to8(s.Pix[i])
		dst[o+1] = to8(s.Pix[i+1])
		dst[o+2] = to8(s.Pix[i+2])
		dst[o+3] = 0xff
	}
	return nil
}

func to8(v float64) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return byte(v*255 + 0.5)
}
