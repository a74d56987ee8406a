package utils

import (
	"math"
	"testing"
)

func TestCalculateDistance(t *testing.T) {
	// Berlin to Munich, roughly 504 km
	got := CalculateDistance(52.5200, 13.4050, 48.1351, 11.5820)
	if math.Abs(got-504) > 10 {
		t.Errorf("Berlin-Munich distance = %.1f km, want ~504 km", got)
	}

	if d := CalculateDistance(48.0, 11.0, 48.0, 11.0); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}
