package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/nightsky/internal/draw"
	"github.com/tomz197/nightsky/internal/sky"
)

func TestNewIsOpaqueBlack(t *testing.T) {
	s := New(4, 3)
	if w, h := s.Size(); w != 4 || h != 3 {
		t.Fatalf("Size() = %vx%v", w, h)
	}
	if got := s.Image().RGBAAt(2, 2); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel = %v, want opaque black", got)
	}
}

func TestClear(t *testing.T) {
	s := New(2, 2)
	s.Clear(draw.RGB(10, 20, 30))
	if got := s.Image().RGBAAt(1, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("opaque clear = %v", got)
	}

	s.Clear(draw.White)
	s.Clear(draw.RGBA(0, 0, 0, 0.5))
	if got := s.Image().RGBAAt(0, 0); got.R < 120 || got.R > 135 {
		t.Errorf("translucent clear over white = %v, want mid grey", got)
	}
}

func TestFillCircle(t *testing.T) {
	s := New(20, 20)
	s.FillCircle(10, 10, 5, draw.White)

	if got := s.Image().RGBAAt(10, 10); got.R != 255 {
		t.Errorf("centre = %v, want white", got)
	}
	if got := s.Image().RGBAAt(1, 1); got.R != 0 {
		t.Errorf("corner = %v, want untouched", got)
	}
}

func TestFillRadialFades(t *testing.T) {
	s := New(40, 40)
	s.FillRadial(20, 20, 15, []draw.GradientStop{
		{Offset: 0, Color: draw.White},
		{Offset: 1, Color: draw.White.WithAlpha(0)},
	})
	centre := s.Image().RGBAAt(20, 20).R
	edge := s.Image().RGBAAt(31, 20).R
	if centre <= edge {
		t.Errorf("centre %d not brighter than edge %d", centre, edge)
	}
}

func TestStrokeLineGradient(t *testing.T) {
	s := New(100, 10)
	s.StrokeLine(0, 5, 100, 5, 2, []draw.GradientStop{
		{Offset: 0, Color: draw.RGB(255, 0, 0)},
		{Offset: 1, Color: draw.RGB(0, 0, 255)},
	})

	left := s.Image().RGBAAt(5, 5)
	right := s.Image().RGBAAt(95, 5)
	if left.R <= left.B || right.B <= right.R {
		t.Errorf("gradient left=%v right=%v", left, right)
	}
	if got := s.Image().RGBAAt(50, 0); got.R != 0 || got.B != 0 {
		t.Errorf("pixel off the line = %v", got)
	}

	// Zero-length and zero-width strokes draw nothing.
	before := append([]byte(nil), s.Image().Pix...)
	white := []draw.GradientStop{{Color: draw.White}, {Offset: 1, Color: draw.White}}
	s.StrokeLine(3, 3, 3, 3, 2, white)
	s.StrokeLine(0, 1, 100, 1, 0, white)
	s.StrokeLine(0, 1, 100, 1, 2, []draw.GradientStop{{Color: draw.White.WithAlpha(0)}})
	if !bytes.Equal(before, s.Image().Pix) {
		t.Error("degenerate strokes changed the image")
	}
}

func TestStrokeLineMidStop(t *testing.T) {
	s := New(100, 10)
	s.StrokeLine(0, 5, 100, 5, 2, []draw.GradientStop{
		{Offset: 0, Color: draw.RGB(255, 0, 0)},
		{Offset: 0.5, Color: draw.RGB(0, 255, 0)},
		{Offset: 1, Color: draw.RGB(0, 0, 255)},
	})
	mid := s.Image().RGBAAt(50, 5)
	if mid.G <= mid.R || mid.G <= mid.B {
		t.Errorf("midpoint = %v, want green", mid)
	}
}

func TestPrimitivesClipToImage(t *testing.T) {
	s := New(20, 20)
	// Shapes hanging over every edge, and one entirely outside.
	s.FillCircle(0, 0, 6, draw.White)
	s.FillCircle(20, 20, 6, draw.White)
	s.FillRadial(-50, -50, 10, []draw.GradientStop{{Color: draw.White}, {Offset: 1, Color: draw.White}})
	s.StrokeLine(-10, 10, 30, 10, 2, []draw.GradientStop{{Color: draw.White}})

	img := s.Image()
	for _, p := range [][2]int{{0, 0}, {19, 19}, {10, 10}} {
		if got := img.RGBAAt(p[0], p[1]); got.R != 255 {
			t.Errorf("pixel %v = %v, want white", p, got)
		}
	}
	if got := img.RGBAAt(10, 3); got.R != 0 {
		t.Errorf("pixel (10,3) = %v, want untouched", got)
	}
}

func TestEncodeAndThumbnail(t *testing.T) {
	s := New(64, 32)
	var buf bytes.Buffer
	if err := s.Encode(&buf, "png"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("decoded bounds %v", b)
	}

	if err := s.Encode(io.Discard, "webm"); err == nil {
		t.Error("unknown format accepted")
	}

	th := s.Thumbnail(16, 16)
	if b := th.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("thumbnail bounds %v", b)
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	opts := sky.DefaultOptions(sky.ProfileRealistic)
	logger := log.New(io.Discard)

	a, _, err := Snapshot(opts, 320, 180, 5, 42, logger)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	b, _, err := Snapshot(opts, 320, 180, 5, 42, logger)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !bytes.Equal(a.Image().Pix, b.Image().Pix) {
		t.Error("same seed produced different images")
	}

	lit := 0
	for i := 0; i < len(a.Image().Pix); i += 4 {
		if a.Image().Pix[i] > 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("snapshot has no stars")
	}
}

func TestSnapshotRejectsBadSize(t *testing.T) {
	opts := sky.DefaultOptions(sky.ProfileClassic)
	for _, size := range [][2]int{{0, 10}, {10, -1}, {MaxSize + 1, 10}} {
		if _, _, err := Snapshot(opts, size[0], size[1], 1, 1, nil); err == nil {
			t.Errorf("size %v accepted", size)
		}
	}

	bad := opts
	bad.StarColor = "not a colour"
	if _, _, err := Snapshot(bad, 10, 10, 1, 1, log.New(io.Discard)); err == nil {
		t.Error("invalid options accepted")
	}
}

func TestSnapshotShowsMeteor(t *testing.T) {
	for _, p := range []sky.Profile{sky.ProfileClassic, sky.ProfileRealistic} {
		_, st, err := Snapshot(sky.DefaultOptions(p), 1280, 720, 60, 7, log.New(io.Discard))
		if err != nil {
			t.Fatalf("%v: Snapshot: %v", p, err)
		}
		if st.Meteors == 0 {
			t.Errorf("%v: no meteor in the last frame", p)
		}
	}

	opts := sky.DefaultOptions(sky.ProfileClassic)
	opts.EnableMeteors = false
	if _, st, _ := Snapshot(opts, 320, 180, 30, 7, nil); st.Meteors != 0 {
		t.Errorf("meteors disabled, got %d", st.Meteors)
	}
}

func TestSnapshotFullSizeIsFast(t *testing.T) {
	if testing.Short() {
		t.Skip("renders full-size frames")
	}
	start := time.Now()
	if _, _, err := Snapshot(sky.DefaultOptions(sky.ProfileClassic), 1280, 720, 10, 1, log.New(io.Discard)); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Errorf("10 frames at 1280x720 took %v", took)
	}
}
