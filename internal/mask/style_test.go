package mask

import (
	"image/color"
	"testing"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		opacity float64
		want    color.NRGBA
		wantErr bool
	}{
		{"default red", "#FF0000", 0.7, color.NRGBA{255, 0, 0, 179}, false},
		{"no hash", "00ff00", 0.5, color.NRGBA{0, 255, 0, 128}, false},
		{"short form", "#00f", 1, color.NRGBA{0, 0, 255, 255}, false},
		{"bad hex", "#GG0000", 0.7, color.NRGBA{}, true},
		{"zero opacity", "#FF0000", 0, color.NRGBA{}, true},
		{"too opaque", "#FF0000", 1.5, color.NRGBA{}, true},
		{"below threshold", "#FF0000", 0.02, color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStyle(tt.hex, tt.opacity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Color != tt.want {
				t.Errorf("Color: got %v, want %v", got.Color, tt.want)
			}
			if got.Width != DefaultWidth {
				t.Errorf("Width: got %v, want %v", got.Width, DefaultWidth)
			}
		})
	}
}

func TestDefaultStyleMatchesParsedDefault(t *testing.T) {
	parsed, err := ParseStyle(DefaultColor, DefaultOpacity)
	if err != nil {
		t.Fatalf("ParseStyle failed: %v", err)
	}
	if parsed != DefaultStyle() {
		t.Errorf("got %v, want %v", parsed, DefaultStyle())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"draw", ModeAdd, false},
		{"add", ModeAdd, false},
		{"ERASE", ModeErase, false},
		{"smudge", ModeAdd, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
