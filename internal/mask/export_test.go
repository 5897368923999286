package mask

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestExportMask_NotLoaded(t *testing.T) {
	l := NewLayer(DefaultStyle())

	if _, err := l.ExportMask(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("ExportMask: got %v, want ErrNotLoaded", err)
	}
	if _, err := l.ExportMaskPNG(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("ExportMaskPNG: got %v, want ErrNotLoaded", err)
	}
}

func TestExportMask_ThresholdBoundary(t *testing.T) {
	l := newLoadedLayer(t, 4, 1)

	// Write alphas 0, 10, 11, 255 straight into the drawing buffer.
	for x, a := range []uint8{0, 10, 11, 255} {
		l.drawing.SetRGBA(x, 0, color.RGBA{A: a})
	}

	m, err := l.ExportMask()
	if err != nil {
		t.Fatalf("ExportMask failed: %v", err)
	}

	want := []uint8{0, 0, 255, 255}
	for x, w := range want {
		if got := m.GrayAt(x, 0).Y; got != w {
			t.Errorf("pixel %d: got %d, want %d", x, got, w)
		}
	}
}

func TestExportMask_OnlyBlackAndWhite(t *testing.T) {
	l := newLoadedLayer(t, 120, 90)
	stroke(l, ModeAdd, Point{10, 10}, Point{110, 80})
	stroke(l, ModeErase, Point{60, 0}, Point{60, 90})
	stroke(l, ModeAdd, Point{0, 45}, Point{120, 45})

	m, err := l.ExportMask()
	if err != nil {
		t.Fatalf("ExportMask failed: %v", err)
	}

	var white int
	for _, v := range m.Pix {
		switch v {
		case 0:
		case 255:
			white++
		default:
			t.Fatalf("gray value %d in mask", v)
		}
	}
	if white == 0 {
		t.Error("mask has no white pixels")
	}
}

func TestExportMask_MatchesAlpha(t *testing.T) {
	l := newLoadedLayer(t, 80, 60)
	stroke(l, ModeAdd, Point{20, 20}, Point{60, 40})

	m, err := l.ExportMask()
	if err != nil {
		t.Fatalf("ExportMask failed: %v", err)
	}
	if m.Bounds() != l.Bounds() {
		t.Fatalf("mask bounds %v != layer bounds %v", m.Bounds(), l.Bounds())
	}

	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			wantWhite := l.AlphaAt(x, y) > AlphaThreshold
			gotWhite := m.GrayAt(x, y).Y == 255
			if wantWhite != gotWhite {
				t.Fatalf("pixel (%d,%d): white=%v, alpha=%d", x, y, gotWhite, l.AlphaAt(x, y))
			}
		}
	}
}

func TestExportMaskPNG_Deterministic(t *testing.T) {
	l := newLoadedLayer(t, 100, 100)
	stroke(l, ModeAdd, Point{10, 90}, Point{50, 10}, Point{90, 90})

	first, err := l.ExportMaskPNG()
	if err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	second, err := l.ExportMaskPNG()
	if err != nil {
		t.Fatalf("second export failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("two exports without drawing in between differ")
	}
}

func TestExportMaskPNG_ClearGivesBlackMask(t *testing.T) {
	l := newLoadedLayer(t, 70, 30)
	stroke(l, ModeAdd, Point{0, 15}, Point{70, 15})
	l.Clear()

	data, err := l.ExportMaskPNG()
	if err != nil {
		t.Fatalf("ExportMaskPNG failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode mask: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 70, 30) {
		t.Fatalf("mask bounds: got %v, want 70x30", img.Bounds())
	}

	for y := 0; y < 30; y++ {
		for x := 0; x < 70; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			_, _, _, a := img.At(x, y).RGBA()
			if g.Y != 0 || a != 0xffff {
				t.Fatalf("pixel (%d,%d): got gray %d alpha %d, want opaque black", x, y, g.Y, a)
			}
		}
	}
}
