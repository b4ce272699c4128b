package domain

import (
	"errors"
	"math"
	"testing"
)

// mustNoError simplifies tests that expect helper methods to succeed.
func mustNoError(t *testing.T, label string, err error) {
	t.Helper()
	if err != nil {
		if label == "" {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Fatalf("%s: %v", label, err)
	}
}

func expectErrorIs(t *testing.T, label string, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("%s: expected %v, got %v", label, target, err)
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func newBody(t *testing.T, capacity float64) *WaterBody {
	t.Helper()
	w, err := NewWaterBody(DefaultEnvelopes(), capacity, 0)
	mustNoError(t, "new water body", err)
	return w
}

// newFishTank returns the 400x150x100 cm fish tank: 6000 L, 6 m² surface.
func newFishTank(t *testing.T) *Tank {
	t.Helper()
	tank, err := NewTank(DefaultEnvelopes(), TankConfig{Name: "main", Length: 400, Width: 150, Depth: 100, Kind: "Fish Tank"})
	mustNoError(t, "new tank", err)
	return tank
}

func aquariumElements() map[string]ElementConfig {
	return map[string]ElementConfig{
		"ammonia":          {Min: 0.1, Max: 1, Initial: 0.2},
		"nitrate":          {Min: 0.1, Max: 50, Initial: 10},
		"nitrite":          {Min: 0.1, Max: 0.5, Initial: 0.2},
		"phosphate":        {Min: 0.1, Max: 2, Initial: 0.5},
		"potassium":        {Min: 1, Max: 5, Initial: 2},
		"iron":             {Min: 0.1, Max: 0.5, Initial: 0.2},
		"magnesium":        {Min: 2, Max: 10, Initial: 5},
		"calcium":          {Min: 20, Max: 150, Initial: 40},
		"hydrogen_sulfide": {Min: 0.1, Max: 0.5, Initial: 0.2},
		"organic_debris":   {Min: 0.1, Max: 100, Initial: 5},
		"oxygen":           {Min: 0.1, Max: 100, Initial: 50},
		"carbon_dioxide":   {Min: 0.1, Max: 100, Initial: 10},
	}
}
