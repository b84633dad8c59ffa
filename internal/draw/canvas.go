package draw

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// Canvas is a colour drawing buffer with 2x vertical resolution using half-block characters.
// Drawing happens in logical coordinates which are scaled to sub-pixels.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x]
	prev           []cell  // Cells emitted by the last Render, for diffing
	dirty          bool    // Emit every cell on next Render

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight
	unit          float64 // Logical units per sub-pixel

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	profile   termenv.Profile
	renderBuf strings.Builder
	numBuf    [20]byte
}

// cell is one terminal character: two stacked sub-pixels.
type cell struct {
	top, bottom Color
}

// NewUnitCanvas creates a canvas whose logical size follows the terminal:
// every sub-pixel covers unit x unit logical units. A terminal cell is
// therefore unit wide and 2*unit tall.
func NewUnitCanvas(termWidth, termHeight int, unit float64) *Canvas {
	if unit <= 0 {
		unit = 1
	}
	c := &Canvas{unit: unit, profile: termenv.TrueColor}
	c.Resize(termWidth, termHeight)
	return c
}

// SetProfile selects the colour profile used by Render.
// termenv.Ascii renders with shade characters instead of colours.
func (c *Canvas) SetProfile(p termenv.Profile) {
	if p != c.profile {
		c.profile = p
		c.dirty = true
	}
}

// Profile returns the colour profile used by Render.
func (c *Canvas) Profile() termenv.Profile {
	return c.profile
}

// Resize updates the canvas for new terminal dimensions. The logical size
// grows with the terminal.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		// Pixels start opaque black so translucent clears composite onto a backdrop
		c.pixels = make([]Color, subPixelHeight*termWidth)
		for i := range c.pixels {
			c.pixels[i] = Black
		}
		c.prev = make([]cell, termWidth*termHeight)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
		c.dirty = true
	}

	c.logicalWidth = float64(termWidth) * c.unit
	c.logicalHeight = float64(subPixelHeight) * c.unit

	// Update scale factors
	c.scaleX, c.scaleY = 0, 0
	if c.logicalWidth > 0 {
		c.scaleX = float64(termWidth) / c.logicalWidth
	}
	if c.logicalHeight > 0 {
		c.scaleY = float64(subPixelHeight) / c.logicalHeight
	}
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.dirty = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.dirty = true
}

// Size returns the logical dimensions of the canvas.
func (c *Canvas) Size() (width, height float64) {
	return c.logicalWidth, c.logicalHeight
}

// Clear paints the whole canvas with bg. A translucent bg is composited over
// the previous contents, leaving faint afterimages.
func (c *Canvas) Clear(bg Color) {
	if bg.A >= 1 {
		for i := range c.pixels {
			c.pixels[i] = bg
		}
		return
	}
	for i := range c.pixels {
		c.pixels[i] = bg.Over(c.pixels[i])
	}
}

// At returns the colour of the sub-pixel at pixel coordinates.
func (c *Canvas) At(x, y int) Color {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		return c.pixels[y*c.termWidth+x]
	}
	return Transparent
}

// blend composites col over a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) blend(x, y int, col Color) {
	if col.A <= 0 {
		return
	}
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		i := y*c.termWidth + x
		c.pixels[i] = col.Over(c.pixels[i])
	}
}

// FillCircle fills a disc given in logical coordinates. Discs smaller than a
// sub-pixel still light the sub-pixel containing their centre.
func (c *Canvas) FillCircle(x, y, radius float64, col Color) {
	c.fillRadial(x, y, radius, func(float64) Color { return col })
}

// FillRadial fills a disc with a radial gradient running from the centre
// (offset 0) to the rim (offset 1).
func (c *Canvas) FillRadial(x, y, radius float64, stops []GradientStop) {
	c.fillRadial(x, y, radius, func(t float64) Color { return SampleGradient(stops, t) })
}

func (c *Canvas) fillRadial(x, y, radius float64, colorAt func(t float64) Color) {
	if radius <= 0 {
		return
	}
	px, py := x*c.scaleX, y*c.scaleY
	rx, ry := radius*c.scaleX, radius*c.scaleY
	if rx <= 0 || ry <= 0 {
		return
	}

	x0, x1 := int(math.Floor(px-rx)), int(math.Ceil(px+rx))
	y0, y1 := int(math.Floor(py-ry)), int(math.Ceil(py+ry))
	covered := false
	for iy := y0; iy <= y1; iy++ {
		dy := (float64(iy) + 0.5 - py) / ry
		for ix := x0; ix <= x1; ix++ {
			dx := (float64(ix) + 0.5 - px) / rx
			d := math.Sqrt(dx*dx + dy*dy)
			if d > 1 {
				continue
			}
			covered = true
			c.blend(ix, iy, colorAt(d))
		}
	}
	if !covered {
		c.blend(int(math.Floor(px)), int(math.Floor(py)), colorAt(0))
	}
}

// StrokeLine draws a one sub-pixel wide line using Bresenham's algorithm.
// The colour follows stops from (x1,y1) (offset 0) to (x2,y2) (offset 1).
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) StrokeLine(x1, y1, x2, y2, width float64, stops []GradientStop) {
	if width <= 0 || !Visible(stops) {
		return
	}
	c.drawLine(Point{X: x1, Y: y1}, Point{X: x2, Y: y2}, stops)
}

// drawLine rasterises a line in pixel space.
func (c *Canvas) drawLine(p1, p2 Point, stops []GradientStop) {
	// Scale to pixel coordinates for drawing
	x1 := int(math.Floor(p1.X * c.scaleX))
	y1 := int(math.Floor(p1.Y * c.scaleY))
	x2 := int(math.Floor(p2.X * c.scaleX))
	y2 := int(math.Floor(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	steps := max(dx, dy)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for i := 0; ; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c.blend(x1, y1, SampleGradient(stops, t))

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1400 bytes stays under a typical MTU for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render outputs the canvas to the writer using half-block characters.
// Only cells that changed since the previous Render are written.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 8)

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !c.dirty && cur == c.prev[idx] {
				continue
			}
			c.prev[idx] = cur
			c.moveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			c.writeCell(&c.renderBuf, cur)
		}
	}
	if c.renderBuf.Len() > 0 {
		c.renderBuf.WriteString("\033[0m")
	}
	c.dirty = false

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// String renders the whole canvas as rows separated by newlines, without
// cursor addressing. Used by Bubble Tea views.
func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.termWidth * c.termHeight * 24)
	for row := 0; row < c.termHeight; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth
		for col := 0; col < c.termWidth; col++ {
			c.writeCell(&b, cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]})
		}
		b.WriteString("\033[0m")
	}
	return b.String()
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

// writeCell appends the SGR sequence and glyph for one cell.
func (c *Canvas) writeCell(b *strings.Builder, cl cell) {
	if c.profile == termenv.Ascii {
		b.WriteRune(ShadeLevel(math.Max(cl.top.Luminance()*cl.top.A, cl.bottom.Luminance()*cl.bottom.A)))
		return
	}
	fg := c.profile.Color(cl.top.Hex())
	bg := c.profile.Color(cl.bottom.Hex())
	b.WriteString("\033[")
	b.WriteString(fg.Sequence(false))
	b.WriteByte(';')
	b.WriteString(bg.Sequence(true))
	b.WriteByte('m')
	b.WriteRune(BlockUpperHalf)
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return
	}

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	move := func(col, row int) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
	}
	line := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			move(left, top)
			buf.WriteString("┌" + line + "┐")
			move(left, bottom)
			buf.WriteString("└" + line + "┘")
		} else {
			move(c.offsetCol+1, top)
			buf.WriteString(line)
			move(c.offsetCol+1, bottom)
			buf.WriteString(line)
		}
	}

	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			move(left, row)
			buf.WriteString("│")
			move(right, row)
			buf.WriteString("│")
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// TerminalToLogical converts a 1-based terminal position (col, row) to the
// logical coordinates of the centre of that cell.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64) {
	col -= c.offsetCol
	row -= c.offsetRow
	if c.scaleX > 0 {
		x = (float64(col-1) + 0.5) / c.scaleX
	}
	if c.scaleY > 0 {
		y = (float64(row-1)*2 + 1) / c.scaleY
	}
	return x, y
}
