// Package raster draws the sky into an in-memory image with an
// anti-aliasing vector rasteriser, for PNG snapshots and thumbnails.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/tomz197/nightsky/internal/draw"
	"github.com/tomz197/nightsky/internal/sky"
)

// minSegments is the fewest polygon edges used to approximate a circle.
const minSegments = 12

// Surface is a sky.Surface backed by an RGBA image. One pixel is one
// logical unit.
type Surface struct {
	img *image.RGBA
	z   *vector.Rasterizer
	pts []vertex // Polygon being filled, in image coordinates
}

type vertex struct{ x, y float64 }

// New creates a surface of width x height pixels, filled opaque black.
func New(width, height int) *Surface {
	width, height = max(width, 0), max(height, 0)
	s := &Surface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)
	return s
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size implements sky.Surface.
func (s *Surface) Size() (width, height float64) {
	b := s.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear implements sky.Surface. A translucent bg is composited over the
// previous frame.
func (s *Surface) Clear(bg draw.Color) {
	op := xdraw.Over
	if bg.A >= 1 {
		op = xdraw.Src
	}
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(nrgba(bg)), image.Point{}, op)
}

// FillCircle implements sky.Surface.
func (s *Surface) FillCircle(x, y, radius float64, c draw.Color) {
	if radius <= 0 || c.A <= 0 {
		return
	}
	s.circle(x, y, radius)
	s.fill(image.NewUniform(nrgba(c)))
}

// FillRadial implements sky.Surface.
func (s *Surface) FillRadial(x, y, radius float64, stops []draw.GradientStop) {
	if radius <= 0 || !draw.Visible(stops) {
		return
	}
	s.circle(x, y, radius)
	s.fill(&radialGradient{cx: x, cy: y, r: radius, stops: stops})
}

// StrokeLine implements sky.Surface. The segment is filled as a quad of the
// given width with a linear gradient along its length.
func (s *Surface) StrokeLine(x1, y1, x2, y2, width float64, stops []draw.GradientStop) {
	if width <= 0 || !draw.Visible(stops) {
		return
	}
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Perpendicular half-width offset.
	nx, ny := -dy/length*width/2, dx/length*width/2

	s.pts = append(s.pts[:0],
		vertex{x1 + nx, y1 + ny},
		vertex{x2 + nx, y2 + ny},
		vertex{x2 - nx, y2 - ny},
		vertex{x1 - nx, y1 - ny},
	)
	if c, ok := solid(stops); ok {
		s.fill(image.NewUniform(nrgba(c)))
		return
	}
	s.fill(&linearGradient{x1: x1, y1: y1, dx: dx, dy: dy, len2: length * length, stops: stops})
}

// circle loads a polygon approximating a circle.
func (s *Surface) circle(x, y, radius float64) {
	n := max(minSegments, int(math.Ceil(2*math.Pi*radius/2)))
	s.pts = s.pts[:0]
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		s.pts = append(s.pts, vertex{x + radius*math.Cos(a), y + radius*math.Sin(a)})
	}
}

// fill rasterises the loaded polygon over src. Only the polygon's bounding
// box, clipped to the image, is scanned.
func (s *Surface) fill(src image.Image) {
	if len(s.pts) < 3 {
		return
	}
	minX, minY := s.pts[0].x, s.pts[0].y
	maxX, maxY := minX, minY
	for _, p := range s.pts[1:] {
		minX, maxX = min(minX, p.x), max(maxX, p.x)
		minY, maxY = min(minY, p.y), max(maxY, p.y)
	}
	box := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(s.img.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	s.z.Reset(box.Dx(), box.Dy())
	s.z.DrawOp = xdraw.Over
	s.z.MoveTo(float32(s.pts[0].x-ox), float32(s.pts[0].y-oy))
	for _, p := range s.pts[1:] {
		s.z.LineTo(float32(p.x-ox), float32(p.y-oy))
	}
	s.z.ClosePath()
	s.z.Draw(s.img, box, src, box.Min)
}

// solid reports whether every stop has the same colour.
func solid(stops []draw.GradientStop) (draw.Color, bool) {
	for _, st := range stops[1:] {
		if st.Color != stops[0].Color {
			return draw.Color{}, false
		}
	}
	return stops[0].Color, true
}

// Encode writes the image in the named format ("png", "jpg", "jpeg", "gif",
// "bmp" or "tiff").
func (s *Surface) Encode(w io.Writer, format string) error {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("encode %q: %w", format, err)
	}
	return imaging.Encode(w, s.img, f)
}

// Thumbnail returns the image scaled down to fit within maxWidth x maxHeight,
// keeping its aspect ratio. Images that already fit are returned as they are.
func (s *Surface) Thumbnail(maxWidth, maxHeight int) image.Image {
	return imaging.Fit(s.img, maxWidth, maxHeight, imaging.Lanczos)
}

// nrgba converts a straight-alpha colour for the image package.
func nrgba(c draw.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(c.A * 255))}
}

// radialGradient is an unbounded image whose colour depends on the distance
// from a centre, relative to r.
type radialGradient struct {
	cx, cy, r float64
	stops     []draw.GradientStop
}

func (g *radialGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *radialGradient) Bounds() image.Rectangle { return infinite }

func (g *radialGradient) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-g.cx, float64(y)+0.5-g.cy) / g.r
	return nrgba(draw.SampleGradient(g.stops, d))
}

// linearGradient samples stops along the segment from (x1,y1) to (x1+dx,y1+dy).
type linearGradient struct {
	x1, y1, dx, dy, len2 float64
	stops                []draw.GradientStop
}

func (g *linearGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *linearGradient) Bounds() image.Rectangle { return infinite }

func (g *linearGradient) At(x, y int) color.Color {
	t := ((float64(x)+0.5-g.x1)*g.dx + (float64(y)+0.5-g.y1)*g.dy) / g.len2
	return nrgba(draw.SampleGradient(g.stops, t))
}

var infinite = image.Rect(-1e9, -1e9, 1e9, 1e9)

var _ sky.Surface = (*Surface)(nil)
