package pointer

import (
	"math"
	"testing"
)

func TestMap_CenterMapsToCenter(t *testing.T) {
	tests := []struct {
		name       string
		box        Box
		bufW, bufH int
	}{
		{"downscaled 2x", Box{Width: 500, Height: 500}, 1000, 1000},
		{"upscaled", Box{Width: 800, Height: 600}, 400, 300},
		{"identity", Box{Width: 640, Height: 480}, 640, 480},
		{"non-uniform", Box{Width: 300, Height: 900}, 1200, 450},
		{"offset box", Box{Left: 37, Top: 112, Width: 250, Height: 125}, 1000, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				ClientX: tt.box.Left + tt.box.Width/2,
				ClientY: tt.box.Top + tt.box.Height/2,
			}
			got := Map(in, tt.box, tt.bufW, tt.bufH)
			wantX := float64(tt.bufW) / 2
			wantY := float64(tt.bufH) / 2
			if math.Abs(got.X-wantX) > 1e-9 || math.Abs(got.Y-wantY) > 1e-9 {
				t.Errorf("center: got (%v,%v), want (%v,%v)", got.X, got.Y, wantX, wantY)
			}
		})
	}
}

func TestMap_SpecExample(t *testing.T) {
	got := Map(Input{ClientX: 250, ClientY: 250}, Box{Width: 500, Height: 500}, 1000, 1000)
	if got.X != 500 || got.Y != 500 {
		t.Errorf("got (%v,%v), want (500,500)", got.X, got.Y)
	}
}

func TestMap_NotClamped(t *testing.T) {
	box := Box{Left: 10, Top: 10, Width: 100, Height: 100}

	got := Map(Input{ClientX: 0, ClientY: 200}, box, 200, 200)
	if got.X != -20 {
		t.Errorf("X: got %v, want -20", got.X)
	}
	if got.Y != 380 {
		t.Errorf("Y: got %v, want 380", got.Y)
	}
}

func TestMap_BoxChangesBetweenEvents(t *testing.T) {
	in := Input{ClientX: 100, ClientY: 100}

	before := Map(in, Box{Width: 200, Height: 200}, 400, 400)
	after := Map(in, Box{Width: 400, Height: 400}, 400, 400)

	if before.X != 200 || after.X != 100 {
		t.Errorf("resize not honoured: before %v, after %v", before, after)
	}
}

func TestMap_ZeroSizedBox(t *testing.T) {
	got := Map(Input{ClientX: 30, ClientY: 40}, Box{Left: 10, Top: 10}, 500, 500)
	if math.IsInf(got.X, 0) || math.IsNaN(got.X) || math.IsInf(got.Y, 0) || math.IsNaN(got.Y) {
		t.Fatalf("expected finite coordinates, got %v", got)
	}
	if got.X != 20 || got.Y != 30 {
		t.Errorf("got (%v,%v), want (20,30)", got.X, got.Y)
	}
}

func TestFromTouches(t *testing.T) {
	in, ok := FromTouches([]Touch{{ClientX: 5, ClientY: 6}, {ClientX: 50, ClientY: 60}})
	if !ok {
		t.Fatal("FromTouches reported no input")
	}
	if in.ClientX != 5 || in.ClientY != 6 {
		t.Errorf("got (%v,%v), want first touch (5,6)", in.ClientX, in.ClientY)
	}
	if in.Kind != KindTouch {
		t.Errorf("Kind: got %v, want touch", in.Kind)
	}

	if _, ok := FromTouches(nil); ok {
		t.Error("FromTouches(nil) should report false")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindMouse, false},
		{"mouse", KindMouse, false},
		{"touch", KindTouch, false},
		{"pen", KindMouse, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
