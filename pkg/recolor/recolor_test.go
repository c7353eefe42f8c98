package recolor

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"
)

var (
	sepia = &RGB{R: 244, G: 241, B: 234}
	brown = &RGB{R: 93, G: 64, B: 55}
)

func randomImage(w, h int, seed int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(seed))
	rng.Read(img.Pix)
	return img
}

func TestApplyIdentity(t *testing.T) {
	img := randomImage(64, 64, 1)
	before := bytes.Clone(img.Pix)

	Apply(img, Targets{})

	if !bytes.Equal(before, img.Pix) {
		t.Error("Apply with original/original modified the buffer")
	}
}

func TestApplyPixel(t *testing.T) {
	tests := []struct {
		name    string
		in      color.RGBA
		targets Targets
		want    color.RGBA
	}{
		{
			name:    "light pixel becomes background",
			in:      color.RGBA{250, 250, 250, 17},
			targets: Targets{Background: sepia},
			want:    color.RGBA{244, 241, 234, 17},
		},
		{
			name:    "dark pixel becomes text",
			in:      color.RGBA{10, 12, 8, 200},
			targets: Targets{Text: brown},
			want:    color.RGBA{93, 64, 55, 200},
		},
		{
			name:    "light pixel kept without background target",
			in:      color.RGBA{255, 255, 255, 255},
			targets: Targets{Text: brown},
			want:    color.RGBA{255, 255, 255, 255},
		},
		{
			name:    "dark pixel kept without text target",
			in:      color.RGBA{0, 0, 0, 255},
			targets: Targets{Background: sepia},
			want:    color.RGBA{0, 0, 0, 255},
		},
		{
			name:    "midtone untouched",
			in:      color.RGBA{150, 150, 150, 255},
			targets: Targets{Background: sepia, Text: brown},
			want:    color.RGBA{150, 150, 150, 255},
		},
		{
			name:    "exactly 200 is midtone",
			in:      color.RGBA{200, 200, 200, 255},
			targets: Targets{Background: sepia, Text: brown},
			want:    color.RGBA{200, 200, 200, 255},
		},
		{
			name:    "exactly 100 is midtone",
			in:      color.RGBA{100, 100, 100, 255},
			targets: Targets{Background: sepia, Text: brown},
			want:    color.RGBA{100, 100, 100, 255},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			img.SetRGBA(0, 0, test.in)

			Apply(img, test.targets)

			if got := img.RGBAAt(0, 0); got != test.want {
				t.Errorf("Apply() pixel = %v, expected %v", got, test.want)
			}
		})
	}
}

func TestApplyProperties(t *testing.T) {
	img := randomImage(97, 300, 7)
	orig := bytes.Clone(img.Pix)
	targets := Targets{Background: sepia, Text: brown}

	Apply(img, targets)

	for i := 0; i < len(orig); i += 4 {
		l := Luminance(orig[i], orig[i+1], orig[i+2])
		got := img.Pix[i : i+4]
		if got[3] != orig[i+3] {
			t.Fatalf("alpha changed at byte %d: %d -> %d", i, orig[i+3], got[3])
		}
		switch {
		case l > LightThreshold:
			if got[0] != sepia.R || got[1] != sepia.G || got[2] != sepia.B {
				t.Fatalf("light pixel at byte %d not recolored: %v", i, got)
			}
		case l < DarkThreshold:
			if got[0] != brown.R || got[1] != brown.G || got[2] != brown.B {
				t.Fatalf("dark pixel at byte %d not recolored: %v", i, got)
			}
		default:
			if !bytes.Equal(got[:3], orig[i:i+3]) {
				t.Fatalf("midtone pixel at byte %d changed: %v -> %v", i, orig[i:i+3], got[:3])
			}
		}
	}
}

func TestApplyParallelMatchesSerial(t *testing.T) {
	// Tall enough to take the parallel path.
	img := randomImage(33, parallelRows*3+5, 3)
	flat := bytes.Clone(img.Pix)
	targets := Targets{Background: &RGB{45, 45, 45}, Text: &RGB{255, 255, 255}}

	Apply(img, targets)
	remapRow(flat, targets)

	if !bytes.Equal(img.Pix, flat) {
		t.Error("parallel Apply and a single serial pass disagree")
	}
}

func TestApplySubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	Apply(sub, Targets{Background: sepia})

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			inside := x >= 1 && x < 3 && y >= 1 && y < 3
			got := img.RGBAAt(x, y)
			recolored := got.R == sepia.R && got.G == sepia.G && got.B == sepia.B
			if inside != recolored {
				t.Errorf("pixel (%d,%d) recolored=%v, expected %v", x, y, recolored, inside)
			}
		}
	}
}

func TestRGBHex(t *testing.T) {
	if got := (RGB{244, 241, 234}).Hex(); got != "#f4f1ea" {
		t.Errorf("Hex() = %q, expected %q", got, "#f4f1ea")
	}
}
