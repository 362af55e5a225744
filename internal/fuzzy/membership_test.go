package fuzzy

import (
	"math"
	"testing"
)

func TestTriangle_Degree(t *testing.T) {
	tri := Triangle{A: 22, B: 25.5, C: 28}

	tests := []struct {
		name     string
		x        float64
		expected float64
	}{
		{"left foot", 22, 0},
		{"below left foot", 10, 0},
		{"right foot", 28, 0},
		{"above right foot", 40, 0},
		{"peak", 25.5, 1},
		{"rising edge midpoint", 23.75, 0.5},
		{"falling edge midpoint", 26.75, 0.5},
		{"rising edge", 23, (23.0 - 22.0) / 3.5},
		{"falling edge", 27, (28.0 - 27.0) / 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tri.Degree(tt.x)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Degree(%v) = %v, expected %v", tt.x, got, tt.expected)
			}
		})
	}
}

func TestTriangle_DegreeMonotonic(t *testing.T) {
	tri := Triangle{A: 18, B: 21, C: 25}

	// Non-decreasing on [a, b]
	prev := tri.Degree(tri.A)
	for x := tri.A; x <= tri.B; x += 0.05 {
		d := tri.Degree(x)
		if d < prev {
			t.Fatalf("Degree decreased on rising edge at x=%v: %v -> %v", x, prev, d)
		}
		prev = d
	}

	// Non-increasing on [b, c]
	prev = tri.Degree(tri.B)
	for x := tri.B; x <= tri.C; x += 0.05 {
		d := tri.Degree(x)
		if d > prev {
			t.Fatalf("Degree increased on falling edge at x=%v: %v -> %v", x, prev, d)
		}
		prev = d
	}
}

func TestTriangle_DegreeRange(t *testing.T) {
	tri := Triangle{A: -10, B: 10, C: 18}
	for x := -50.0; x <= 80; x += 0.37 {
		d := tri.Degree(x)
		if d < 0 || d > 1 {
			t.Fatalf("Degree(%v) = %v, outside [0, 1]", x, d)
		}
	}
}

func TestTriangle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tri     Triangle
		wantErr bool
	}{
		{"valid", Triangle{18, 21, 25}, false},
		{"a equals b", Triangle{18, 18, 25}, true},
		{"b equals c", Triangle{18, 25, 25}, true},
		{"reversed", Triangle{25, 21, 18}, true},
		{"all equal", Triangle{20, 20, 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tri.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
