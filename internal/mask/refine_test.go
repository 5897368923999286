package mask

import (
	"image"
	"testing"
)

func TestRefine_Expand(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 41, 41))
	m.Pix[20*m.Stride+20] = 255

	out := Refine(m, 3, 0)

	if out.GrayAt(20, 20).Y != 255 {
		t.Error("original white pixel should stay white")
	}
	if out.GrayAt(22, 20).Y != 255 {
		t.Error("neighbour within the expand radius should become white")
	}
	if out.GrayAt(35, 20).Y != 0 {
		t.Error("distant pixel should stay black")
	}
	if m.GrayAt(22, 20).Y != 0 {
		t.Error("Refine must not modify its input")
	}
}

func TestRefine_FeatherProducesGradient(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 60, 60))
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			m.Pix[y*m.Stride+x] = 255
		}
	}

	out := Refine(m, 0, 4)

	v := out.GrayAt(19, 30).Y
	if v == 0 || v == 255 {
		t.Errorf("edge pixel after feathering: got %d, want an intermediate value", v)
	}
	if out.Bounds() != m.Bounds() {
		t.Errorf("bounds: got %v, want %v", out.Bounds(), m.Bounds())
	}
}

func TestRefine_NoOpCopies(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 5, 5))
	m.Pix[0] = 255

	out := Refine(m, 0, 0)
	out.Pix[0] = 0

	if m.Pix[0] != 255 {
		t.Error("Refine should return a copy")
	}
}
