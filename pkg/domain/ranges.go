package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Property names with a default physical envelope.
const (
	PropertyTemperature      = "temperature"
	PropertyPH               = "ph"
	PropertyTurbidity        = "turbidity"
	PropertyViscosity        = "viscosity"
	PropertyTDS              = "tds"
	PropertySurfaceArea      = "surface_area"
	PropertyRelativeHumidity = "relative_humidity"
)

// Bounds is a closed numeric interval.
type Bounds struct {
	Lower float64 `json:"lower_bound" yaml:"lower_bound"`
	Upper float64 `json:"upper_bound" yaml:"upper_bound"`
}

// Contains reports whether v lies in [Lower, Upper].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Envelopes holds the physically valid bounds per property. A run owns one
// instance and passes it to every component that constructs ranges.
type Envelopes struct {
	bounds map[string]Bounds
}

// DefaultEnvelopes returns the built-in physical envelopes.
func DefaultEnvelopes() *Envelopes {
	return &Envelopes{bounds: map[string]Bounds{
		PropertyTemperature:      {Lower: -30, Upper: 100},
		PropertyPH:               {Lower: 0, Upper: 14},
		PropertyTurbidity:        {Lower: 0, Upper: 1000},
		PropertyViscosity:        {Lower: 0, Upper: 1.79},
		PropertyTDS:              {Lower: 0, Upper: 10000},
		PropertySurfaceArea:      {Lower: 0, Upper: 10000},
		PropertyRelativeHumidity: {Lower: 0, Upper: 100},
	}}
}

// Lookup returns the envelope registered for name.
func (e *Envelopes) Lookup(name string) (Bounds, bool) {
	if e == nil {
		return Bounds{}, false
	}
	b, ok := e.bounds[name]
	return b, ok
}

// Define registers or replaces the envelope for name.
func (e *Envelopes) Define(name string, b Bounds) error {
	if strings.TrimSpace(name) == "" {
		return ConfigurationError{Component: "envelopes", Message: "property name cannot be empty"}
	}
	if err := checkFinite(name, b.Lower); err != nil {
		return err
	}
	if err := checkFinite(name, b.Upper); err != nil {
		return err
	}
	if b.Lower > b.Upper {
		return ConfigurationError{Component: "envelopes", Message: fmt.Sprintf("%s lower bound %s exceeds upper bound %s", name, formatValue(b.Lower), formatValue(b.Upper))}
	}
	if e.bounds == nil {
		e.bounds = make(map[string]Bounds)
	}
	e.bounds[name] = b
	return nil
}

// Names lists the registered property names in sorted order.
func (e *Envelopes) Names() []string {
	names := make([]string, 0, len(e.bounds))
	for name := range e.bounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (e *Envelopes) Clone() *Envelopes {
	out := &Envelopes{bounds: make(map[string]Bounds, len(e.bounds))}
	for k, v := range e.bounds {
		out.bounds[k] = v
	}
	return out
}

// PropertyRange is a named [Lower, Upper] interval validated against its envelope.
type PropertyRange struct {
	name      string
	lower     float64
	upper     float64
	envelopes *Envelopes
}

// NewPropertyRange validates name and bounds against env and returns the range.
func NewPropertyRange(env *Envelopes, name string, lower, upper float64) (PropertyRange, error) {
	if strings.TrimSpace(name) == "" {
		return PropertyRange{}, ConfigurationError{Component: "property range", Message: "property name cannot be empty"}
	}
	if _, ok := env.Lookup(name); !ok {
		return PropertyRange{}, ConfigurationError{Component: "property range", Message: fmt.Sprintf("%s is not a valid property name", name)}
	}
	r := PropertyRange{name: name, lower: math.Inf(-1), upper: math.Inf(1), envelopes: env}
	if err := r.SetLower(lower); err != nil {
		return PropertyRange{}, err
	}
	if err := r.SetUpper(upper); err != nil {
		return PropertyRange{}, err
	}
	return r, nil
}

// MustPropertyRange panics when the range is invalid. Intended for fixed literals.
func MustPropertyRange(env *Envelopes, name string, lower, upper float64) PropertyRange {
	r, err := NewPropertyRange(env, name, lower, upper)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the property the range applies to.
func (r PropertyRange) Name() string { return r.name }

// Lower returns the inclusive lower bound.
func (r PropertyRange) Lower() float64 { return r.lower }

// Upper returns the inclusive upper bound.
func (r PropertyRange) Upper() float64 { return r.upper }

// Bounds returns the range as a Bounds value.
func (r PropertyRange) Bounds() Bounds { return Bounds{Lower: r.lower, Upper: r.upper} }

// SetLower updates the lower bound. It must stay below the upper bound and inside the envelope.
func (r *PropertyRange) SetLower(v float64) error {
	if err := checkFinite("lower bound", v); err != nil {
		return err
	}
	if v >= r.upper {
		return RangeError{Property: r.name, Value: v, Lower: math.Inf(-1), Upper: r.upper, Message: "Lower bound must be less than the upper bound."}
	}
	env, _ := r.envelopes.Lookup(r.name)
	if !env.Contains(v) {
		return RangeError{Property: r.name, Value: v, Lower: env.Lower, Upper: env.Upper,
			Message: fmt.Sprintf("Lower bound must be between %s and %s for %s.", formatValue(env.Lower), formatValue(env.Upper), r.name)}
	}
	r.lower = v
	return nil
}

// SetUpper updates the upper bound. It must stay above the lower bound and inside the envelope.
func (r *PropertyRange) SetUpper(v float64) error {
	if err := checkFinite("upper bound", v); err != nil {
		return err
	}
	if v <= r.lower {
		return RangeError{Property: r.name, Value: v, Lower: r.lower, Upper: math.Inf(1), Message: "Upper bound must be greater than the lower bound."}
	}
	env, _ := r.envelopes.Lookup(r.name)
	if !env.Contains(v) {
		return RangeError{Property: r.name, Value: v, Lower: env.Lower, Upper: env.Upper,
			Message: fmt.Sprintf("Upper bound must be between %s and %s for %s.", formatValue(env.Lower), formatValue(env.Upper), r.name)}
	}
	r.upper = v
	return nil
}

// Contains reports whether v lies inside the range.
func (r PropertyRange) Contains(v float64) bool {
	return v >= r.lower && v <= r.upper
}

// Check returns a RangeError when v is outside the range.
func (r PropertyRange) Check(v float64) error {
	if err := checkFinite(r.name, v); err != nil {
		return err
	}
	if !r.Contains(v) {
		return RangeError{Property: r.name, Value: v, Lower: r.lower, Upper: r.upper}
	}
	return nil
}

func (r PropertyRange) String() string {
	if r.name == "" {
		return "Range(lower=0, upper=0)"
	}
	return fmt.Sprintf("%s_range(lower=%s, upper=%s)", strings.ToUpper(r.name[:1])+r.name[1:], formatValue(r.lower), formatValue(r.upper))
}

func checkFinite(property string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return TypeError{Property: property, Value: v}
	}
	return nil
}
