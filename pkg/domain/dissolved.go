package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ElementConfig bounds one dissolved element and gives its starting concentration.
type ElementConfig struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Initial float64 `json:"initial" yaml:"initial"`
}

// DissolvedElement is one tracked solute.
type DissolvedElement struct {
	Name          string
	Concentration float64
	Range         PropertyRange
}

// DissolvedElementsTracker keeps solute concentrations consistent with the
// volume of the tank it wraps. Volume-changing calls must go through the
// tracker; calling the tank directly bypasses the rebalance.
type DissolvedElementsTracker struct {
	tank     *Tank
	elements map[string]*DissolvedElement
	baseline float64
}

// NewDissolvedElementsTracker attaches a tracker to tank. Element bounds are
// registered in env (the tank's envelopes when env is nil). A tank accepts a
// single tracker.
func NewDissolvedElementsTracker(tank *Tank, env *Envelopes, elements map[string]ElementConfig) (*DissolvedElementsTracker, error) {
	const component = "dissolved elements"
	if tank == nil {
		return nil, ConfigurationError{Component: component, Message: "tank is required"}
	}
	if tank.tracked {
		return nil, ConfigurationError{Component: component, Message: fmt.Sprintf("tank %s already has a tracker attached", tank.Name())}
	}
	if len(elements) == 0 {
		return nil, ConfigurationError{Component: component, Message: "The dissolved_elements dictionary cannot be empty."}
	}
	if env == nil {
		env = tank.Envelopes()
	}
	reserved := DefaultEnvelopes()
	tracker := &DissolvedElementsTracker{tank: tank, elements: make(map[string]*DissolvedElement, len(elements))}
	for _, name := range sortedKeys(elements) {
		cfg := elements[name]
		if strings.TrimSpace(name) == "" {
			return nil, ConfigurationError{Component: component, Message: "element name cannot be empty"}
		}
		if _, clash := reserved.Lookup(name); clash {
			return nil, ConfigurationError{Component: component, Message: fmt.Sprintf("element %s collides with a water property", name)}
		}
		for _, v := range []float64{cfg.Min, cfg.Max, cfg.Initial} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ConfigurationError{Component: component, Message: fmt.Sprintf("Element '%s' must have numeric 'min', 'max' and 'initial' values.", name)}
			}
		}
		if cfg.Min > cfg.Max {
			return nil, ConfigurationError{Component: component, Message: fmt.Sprintf("Element '%s' has 'min' greater than 'max'.", name)}
		}
		if err := env.Define(name, Bounds{Lower: cfg.Min, Upper: cfg.Max}); err != nil {
			return nil, ConfigurationError{Component: component, Message: err.Error()}
		}
		r, err := NewPropertyRange(env, name, cfg.Min, cfg.Max)
		if err != nil {
			return nil, ConfigurationError{Component: component, Message: fmt.Sprintf("element %s: %v", name, err)}
		}
		el := &DissolvedElement{Name: name, Range: r}
		if err := el.check(cfg.Initial); err != nil {
			return nil, err
		}
		el.Concentration = cfg.Initial
		tracker.elements[name] = el
	}
	tracker.baseline = tank.Volume()
	tank.tracked = true
	return tracker, nil
}

func (e *DissolvedElement) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ElementError{Element: e.Name, Err: TypeError{Property: e.Name + " concentration", Value: v}}
	}
	if v < 0 {
		return ElementError{Element: e.Name, Err: RangeError{Property: e.Name, Value: v, Lower: 0, Upper: math.Inf(1),
			Message: fmt.Sprintf("%s concentration must be non-negative.", e.Name)}}
	}
	if err := e.Range.Check(v); err != nil {
		return ElementError{Element: e.Name, Err: err}
	}
	return nil
}

// Tank returns the wrapped tank.
func (d *DissolvedElementsTracker) Tank() *Tank { return d.tank }

// Baseline returns the volume the next rebalance compares against.
func (d *DissolvedElementsTracker) Baseline() float64 { return d.baseline }

// Elements lists the tracked element names in sorted order.
func (d *DissolvedElementsTracker) Elements() []string {
	return sortedKeys(d.elements)
}

// Concentrations returns a copy of every tracked concentration.
func (d *DissolvedElementsTracker) Concentrations() map[string]float64 {
	out := make(map[string]float64, len(d.elements))
	for name, el := range d.elements {
		out[name] = el.Concentration
	}
	return out
}

func (d *DissolvedElementsTracker) lookup(name string) (*DissolvedElement, error) {
	el, ok := d.elements[name]
	if !ok {
		return nil, ConfigurationError{Component: "dissolved elements", Message: fmt.Sprintf("%s is not a tracked element", name)}
	}
	return el, nil
}

// Concentration returns the current concentration of name.
func (d *DissolvedElementsTracker) Concentration(name string) (float64, error) {
	el, err := d.lookup(name)
	if err != nil {
		return 0, err
	}
	return el.Concentration, nil
}

// SetConcentration assigns a concentration after range validation.
func (d *DissolvedElementsTracker) SetConcentration(name string, v float64) error {
	el, err := d.lookup(name)
	if err != nil {
		return err
	}
	if err := el.check(v); err != nil {
		return err
	}
	el.Concentration = v
	return nil
}

// Range returns the valid range of name.
func (d *DissolvedElementsTracker) Range(name string) (PropertyRange, error) {
	el, err := d.lookup(name)
	if err != nil {
		return PropertyRange{}, err
	}
	return el.Range, nil
}

// SetRange replaces the valid range of name. The range must be built for the same element.
func (d *DissolvedElementsTracker) SetRange(name string, r PropertyRange) error {
	el, err := d.lookup(name)
	if err != nil {
		return err
	}
	if r.Name() != name {
		return ConfigurationError{Component: "dissolved elements", Message: fmt.Sprintf("%s range must match the corresponding element.", name)}
	}
	el.Range = r
	return nil
}

// Evaporate evaporates through the tank and re-concentrates every element.
func (d *DissolvedElementsTracker) Evaporate(in EvaporationInput) (float64, error) {
	liters, err := d.tank.Evaporate(in)
	if err != nil {
		return 0, err
	}
	return liters, d.rebalance()
}

// ManagePrecipitation applies p through the tank and dilutes every element.
func (d *DissolvedElementsTracker) ManagePrecipitation(p Precipitation) (float64, error) {
	liters, err := d.tank.ManagePrecipitation(p)
	if err != nil {
		return 0, err
	}
	return liters, d.rebalance()
}

// AddWater adds through the tank and dilutes every element.
func (d *DissolvedElementsTracker) AddWater(amount float64) (float64, error) {
	liters, err := d.tank.AddWater(amount)
	if err != nil {
		return 0, err
	}
	return liters, d.rebalance()
}

// ExtractWater drains solution, which leaves concentrations unchanged; only the baseline moves.
func (d *DissolvedElementsTracker) ExtractWater(amount float64, force bool) (float64, error) {
	liters, err := d.tank.ExtractWater(amount, force)
	if err != nil {
		return 0, err
	}
	d.baseline = d.tank.Volume()
	return liters, nil
}

// Rebalanced returns c + c·(1 − newVolume/oldVolume). An empty result volume
// yields zero; an empty starting volume leaves c unchanged.
func Rebalanced(c, oldVolume, newVolume float64) float64 {
	if newVolume == 0 {
		return 0
	}
	if oldVolume == 0 {
		return c
	}
	return c + c*(1-newVolume/oldVolume)
}

// rebalance validates every recomputed concentration before committing any.
// A drained tank zeroes all elements regardless of their ranges.
func (d *DissolvedElementsTracker) rebalance() error {
	current := d.tank.Volume()
	if current == 0 {
		for _, el := range d.elements {
			el.Concentration = 0
		}
		d.baseline = 0
		return nil
	}
	next := make(map[string]float64, len(d.elements))
	for _, name := range d.Elements() {
		el := d.elements[name]
		v := Rebalanced(el.Concentration, d.baseline, current)
		if err := el.check(v); err != nil {
			return err
		}
		next[name] = v
	}
	for name, v := range next {
		d.elements[name].Concentration = v
	}
	d.baseline = current
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
