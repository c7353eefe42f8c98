package pagination

import (
	"math"
	"testing"
)

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name        string
		window      Size
		page        Size
		zoom        float64
		scale       float64
		backing     [2]int
		constrained bool
	}{
		{
			// Height bound: 920/800 = 1.15 < 980/600.
			name:        "height bound",
			window:      Size{Width: 1000, Height: 1000},
			page:        Size{Width: 600, Height: 800},
			zoom:        1,
			scale:       1.15,
			backing:     [2]int{1380, 1840},
			constrained: true,
		},
		{
			// Width bound: 980/1000 = 0.98 < 920/500.
			name:        "width bound zoomed",
			window:      Size{Width: 1000, Height: 1000},
			page:        Size{Width: 1000, Height: 500},
			zoom:        2,
			scale:       1.96,
			backing:     [2]int{3920, 1960},
			constrained: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ComputeLayout(test.window, test.page, test.zoom)
			if err != nil {
				t.Fatalf("ComputeLayout() error = %v", err)
			}
			if math.Abs(got.Scale-test.scale) > 1e-9 {
				t.Errorf("Scale = %v, expected %v", got.Scale, test.scale)
			}
			if math.Abs(got.RenderScale-2*test.scale) > 1e-9 {
				t.Errorf("RenderScale = %v, expected %v", got.RenderScale, 2*test.scale)
			}
			if d := got.BackingWidth - test.backing[0]; d < -1 || d > 0 {
				t.Errorf("BackingWidth = %d, expected %d", got.BackingWidth, test.backing[0])
			}
			if d := got.BackingHeight - test.backing[1]; d < -1 || d > 0 {
				t.Errorf("BackingHeight = %d, expected %d", got.BackingHeight, test.backing[1])
			}
			if math.Abs(got.DisplayWidth-test.page.Width*test.scale) > 1e-6 {
				t.Errorf("DisplayWidth = %v, expected %v", got.DisplayWidth, test.page.Width*test.scale)
			}
			if got.Constrained != test.constrained {
				t.Errorf("Constrained = %v, expected %v", got.Constrained, test.constrained)
			}
		})
	}
}

func TestComputeLayoutInvalid(t *testing.T) {
	if _, err := ComputeLayout(Size{Width: 100, Height: 100}, Size{}, 1); err == nil {
		t.Error("expected error for empty page")
	}
	if _, err := ComputeLayout(Size{}, Size{Width: 100, Height: 100}, 1); err == nil {
		t.Error("expected error for empty window")
	}
}
