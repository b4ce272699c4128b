package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewPropertyRangeValidatesAgainstEnvelope(t *testing.T) {
	env := DefaultEnvelopes()
	cases := []struct {
		name   string
		prop   string
		lower  float64
		upper  float64
		target error
	}{
		{"valid temperature", PropertyTemperature, 10, 30, nil},
		{"lower below envelope", PropertyTemperature, -31, 30, ErrRangeViolation},
		{"upper above envelope", PropertyPH, 1, 15, ErrRangeViolation},
		{"inverted", PropertyPH, 8, 6, ErrRangeViolation},
		{"equal bounds", PropertyTDS, 5, 5, ErrRangeViolation},
		{"unknown property", "salinity", 0, 1, ErrConfiguration},
		{"empty name", "", 0, 1, ErrConfiguration},
		{"nan bound", PropertyTurbidity, math.NaN(), 1, ErrTypeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewPropertyRange(env, tc.prop, tc.lower, tc.upper)
			if tc.target == nil {
				mustNoError(t, "new range", err)
				if r.Lower() != tc.lower || r.Upper() != tc.upper || r.Name() != tc.prop {
					t.Fatalf("unexpected range %v", r)
				}
				return
			}
			expectErrorIs(t, tc.name, err, tc.target)
		})
	}
}

func TestPropertyRangeSettersKeepOrdering(t *testing.T) {
	r := MustPropertyRange(DefaultEnvelopes(), PropertyTemperature, 10, 30)
	if err := r.SetLower(30); !errors.Is(err, ErrRangeViolation) {
		t.Fatalf("expected lower == upper to fail, got %v", err)
	}
	if err := r.SetUpper(5); !errors.Is(err, ErrRangeViolation) {
		t.Fatalf("expected upper below lower to fail, got %v", err)
	}
	if err := r.SetUpper(101); !errors.Is(err, ErrRangeViolation) {
		t.Fatalf("expected upper outside envelope to fail, got %v", err)
	}
	mustNoError(t, "set lower", r.SetLower(-5))
	mustNoError(t, "set upper", r.SetUpper(40))
	if r.Lower() != -5 || r.Upper() != 40 {
		t.Fatalf("unexpected bounds %v", r.Bounds())
	}
}

func TestPropertyRangeCheck(t *testing.T) {
	r := MustPropertyRange(DefaultEnvelopes(), PropertyPH, 6.5, 8.5)
	mustNoError(t, "inclusive lower", r.Check(6.5))
	mustNoError(t, "inclusive upper", r.Check(8.5))
	err := r.Check(9)
	var rangeErr RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if rangeErr.Property != PropertyPH || rangeErr.Value != 9 {
		t.Fatalf("unexpected range error %+v", rangeErr)
	}
	if got := rangeErr.Error(); got != "9 must be less than or equal to 8.5 for ph." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestEnvelopesAreIndependentPerRun(t *testing.T) {
	a := DefaultEnvelopes()
	b := a.Clone()
	mustNoError(t, "define", b.Define("nitrate", Bounds{Lower: 0, Upper: 50}))
	if _, ok := a.Lookup("nitrate"); ok {
		t.Fatalf("clone must not leak definitions into the original")
	}
	if _, ok := b.Lookup("nitrate"); !ok {
		t.Fatalf("expected definition in clone")
	}
	if err := b.Define("bad", Bounds{Lower: 2, Upper: 1}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(DefaultEnvelopes().Names()) != 7 {
		t.Fatalf("expected seven default envelopes, got %v", DefaultEnvelopes().Names())
	}
}

func TestPropertyRangeString(t *testing.T) {
	r := MustPropertyRange(DefaultEnvelopes(), PropertyTemperature, 10, 30)
	if got := r.String(); got != "Temperature_range(lower=10, upper=30)" {
		t.Fatalf("unexpected string %q", got)
	}
}
