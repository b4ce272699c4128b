package domain

import (
	"fmt"
	"math"
	"strings"
)

// Default water-body thresholds and properties.
const (
	DefaultUnderflowFraction = 0.2
	DefaultOverflowFraction  = 0.1
	DefaultTemperature       = 25.0
	DefaultPH                = 7.0
)

// State is the fill state derived from volume and thresholds.
type State int

const (
	StateEmpty State = iota
	StateNormal
	StateFull
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFull:
		return "full"
	default:
		return "normal"
	}
}

// WaterBody owns the volume and physical properties of the water held in one container.
// It is not safe for concurrent mutation.
type WaterBody struct {
	envelopes *Envelopes

	volume            float64
	capacity          float64
	overflowVolume    float64
	underflowFraction float64
	overflowFraction  float64

	temperature float64
	ph          float64
	turbidity   float64
	viscosity   float64
	tds         float64

	snowAccumulation float64
	nutrients        float64
	currentNutrients float64

	empty bool
	full  bool
}

// NewWaterBody returns an empty body of water for a container of capacity liters.
// A nil env selects DefaultEnvelopes.
func NewWaterBody(env *Envelopes, capacity, nutrients float64) (*WaterBody, error) {
	if env == nil {
		env = DefaultEnvelopes()
	}
	if err := checkFinite("tank capacity", capacity); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, RangeError{Property: "tank capacity", Value: capacity, Lower: 0, Upper: math.Inf(1), Message: "Tank capacity must be positive."}
	}
	if err := checkFinite("nutrients", nutrients); err != nil {
		return nil, err
	}
	if nutrients < 0 {
		return nil, RangeError{Property: "nutrients", Value: nutrients, Lower: 0, Upper: math.Inf(1), Message: "Nutrients cannot be negative."}
	}
	w := &WaterBody{
		envelopes:         env,
		capacity:          capacity,
		underflowFraction: DefaultUnderflowFraction,
		overflowFraction:  DefaultOverflowFraction,
		temperature:       DefaultTemperature,
		ph:                DefaultPH,
		viscosity:         DefaultViscosity,
		nutrients:         nutrients,
		currentNutrients:  nutrients,
	}
	w.refreshFlags()
	return w, nil
}

// Envelopes returns the envelope set the body validates against.
func (w *WaterBody) Envelopes() *Envelopes { return w.envelopes }

// Volume returns the current volume in liters.
func (w *WaterBody) Volume() float64 { return w.volume }

// Capacity returns the maximum volume in liters.
func (w *WaterBody) Capacity() float64 { return w.capacity }

// OverflowVolume returns the liters rejected by the last overflowing write.
func (w *WaterBody) OverflowVolume() float64 { return w.overflowVolume }

// Temperature returns the water temperature in °C.
func (w *WaterBody) Temperature() float64 { return w.temperature }

// PH returns the pH.
func (w *WaterBody) PH() float64 { return w.ph }

// Turbidity returns the turbidity in NTU.
func (w *WaterBody) Turbidity() float64 { return w.turbidity }

// Viscosity returns the dynamic viscosity in Pa·s.
func (w *WaterBody) Viscosity() float64 { return w.viscosity }

// TDS returns total dissolved solids in ppm.
func (w *WaterBody) TDS() float64 { return w.tds }

// SnowAccumulation returns snow that has fallen but not yet melted, in liters.
func (w *WaterBody) SnowAccumulation() float64 { return w.snowAccumulation }

// Nutrients returns the nutrient load the body was created with.
func (w *WaterBody) Nutrients() float64 { return w.nutrients }

// CurrentNutrients returns the current nutrient load.
func (w *WaterBody) CurrentNutrients() float64 { return w.currentNutrients }

// IsEmpty reports whether the volume is at or below the underflow threshold.
func (w *WaterBody) IsEmpty() bool { return w.empty }

// IsFull reports whether the volume is within the overflow margin of capacity.
func (w *WaterBody) IsFull() bool { return w.full }

// UnderflowThreshold returns the underflow margin in liters.
func (w *WaterBody) UnderflowThreshold() float64 { return w.capacity * w.underflowFraction }

// OverflowThreshold returns the overflow margin in liters, measured down from capacity.
func (w *WaterBody) OverflowThreshold() float64 { return w.capacity * w.overflowFraction }

// State reports Empty, Normal or Full from the current flags.
func (w *WaterBody) State() State {
	switch {
	case w.empty:
		return StateEmpty
	case w.full:
		return StateFull
	default:
		return StateNormal
	}
}

func (w *WaterBody) refreshFlags() {
	w.empty = w.volume <= w.UnderflowThreshold()
	w.full = w.volume >= w.capacity-w.OverflowThreshold()
}

// SetVolume assigns the current volume. Values above capacity are rejected and
// the excess is recorded as the overflow volume.
func (w *WaterBody) SetVolume(v float64) error {
	return w.setVolume("set volume", v)
}

func (w *WaterBody) setVolume(op string, v float64) error {
	if err := checkFinite("current volume", v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError{Property: "current volume", Value: v, Lower: 0, Upper: w.capacity, Message: "Current volume must be non-negative."}
	}
	if v > w.capacity {
		w.overflowVolume = v - w.capacity
		w.refreshFlags()
		return CapacityError{
			Operation: op,
			Requested: v,
			Capacity:  w.capacity,
			Overflow:  w.overflowVolume,
			Message:   fmt.Sprintf("volume %s exceeds the tank capacity %s liters", formatValue(v), formatValue(w.capacity)),
		}
	}
	w.volume = v
	w.refreshFlags()
	return nil
}

// thresholdLiters normalises a threshold given as a fraction (<= 1) or liters (> 1).
func (w *WaterBody) thresholdLiters(v float64) float64 {
	if v > 1 {
		return v
	}
	return v * w.capacity
}

// Threshold names accepted by SetProperty in addition to the status keys.
const (
	ThresholdUnderflow = "underflow_threshold"
	ThresholdOverflow  = "overflow_threshold"
)

// SetProperty assigns a settable property or threshold by name.
func (w *WaterBody) SetProperty(name string, v float64) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StatusTemperature:
		return w.SetTemperature(v)
	case StatusPH:
		return w.SetPH(v)
	case StatusTurbidity:
		return w.SetTurbidity(v)
	case StatusViscosity:
		return w.SetViscosity(v)
	case StatusTDS:
		return w.SetTDS(v)
	case StatusNutrients, StatusCurrentNutrients:
		return w.SetNutrients(v)
	case ThresholdUnderflow, StatusUnderflowThreshold:
		return w.SetUnderflowThreshold(v)
	case ThresholdOverflow, StatusOverflowThreshold:
		return w.SetOverflowThreshold(v)
	default:
		return ConfigurationError{Component: "water body", Message: fmt.Sprintf("property %s cannot be set", name)}
	}
}

// SetUnderflowThreshold accepts a fraction of capacity or an absolute liter value.
func (w *WaterBody) SetUnderflowThreshold(v float64) error {
	if err := checkFinite("underflow threshold", v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError{Property: "underflow threshold", Value: v, Lower: 0, Upper: w.capacity, Message: "Underflow threshold cannot be negative."}
	}
	liters := w.thresholdLiters(v)
	limit := w.capacity - w.OverflowThreshold()
	if liters >= limit {
		return RangeError{Property: "underflow threshold", Value: liters, Lower: 0, Upper: limit,
			Message: fmt.Sprintf("Underflow threshold %s must be less than %s liters.", formatValue(liters), formatValue(limit))}
	}
	w.underflowFraction = liters / w.capacity
	w.refreshFlags()
	return nil
}

// SetOverflowThreshold accepts a fraction of capacity or an absolute liter value.
func (w *WaterBody) SetOverflowThreshold(v float64) error {
	if err := checkFinite("overflow threshold", v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError{Property: "overflow threshold", Value: v, Lower: 0, Upper: w.capacity, Message: "Overflow threshold cannot be negative."}
	}
	liters := w.thresholdLiters(v)
	limit := w.capacity - w.UnderflowThreshold()
	if liters >= limit {
		return RangeError{Property: "overflow threshold", Value: liters, Lower: 0, Upper: limit,
			Message: fmt.Sprintf("Overflow threshold %s must be less than %s liters.", formatValue(liters), formatValue(limit))}
	}
	w.overflowFraction = liters / w.capacity
	w.refreshFlags()
	return nil
}

// SetThresholds assigns both thresholds at once, checking them against each
// other rather than against the current values. Each accepts a fraction of
// capacity or liters.
func (w *WaterBody) SetThresholds(underflow, overflow float64) error {
	for _, t := range []struct {
		name  string
		value float64
	}{{"underflow threshold", underflow}, {"overflow threshold", overflow}} {
		if err := checkFinite(t.name, t.value); err != nil {
			return err
		}
		if t.value < 0 {
			return RangeError{Property: t.name, Value: t.value, Lower: 0, Upper: w.capacity, Message: "Thresholds cannot be negative."}
		}
	}
	under, over := w.thresholdLiters(underflow), w.thresholdLiters(overflow)
	if limit := w.capacity - over; under >= limit {
		return RangeError{Property: "underflow threshold", Value: under, Lower: 0, Upper: limit,
			Message: fmt.Sprintf("Underflow threshold %s must be less than %s liters.", formatValue(under), formatValue(limit))}
	}
	w.underflowFraction = under / w.capacity
	w.overflowFraction = over / w.capacity
	w.refreshFlags()
	return nil
}

// SetTemperature assigns the water temperature in °C and recomputes viscosity.
func (w *WaterBody) SetTemperature(v float64) error {
	if err := checkFinite(PropertyTemperature, v); err != nil {
		return err
	}
	if v < 0 || v > 100 {
		return RangeError{Property: PropertyTemperature, Value: v, Lower: 0, Upper: 100, Message: "Temperature must be between 0 and 100 degrees Celsius."}
	}
	w.temperature = v
	w.recomputeViscosity()
	return nil
}

// SetPH assigns the pH, which must lie in [0, 14].
func (w *WaterBody) SetPH(v float64) error {
	if err := checkFinite(PropertyPH, v); err != nil {
		return err
	}
	if v < 0 || v > 14 {
		return RangeError{Property: PropertyPH, Value: v, Lower: 0, Upper: 14, Message: "pH must be between 0 and 14."}
	}
	w.ph = v
	return nil
}

// SetTurbidity assigns a non-negative turbidity in NTU.
func (w *WaterBody) SetTurbidity(v float64) error {
	if err := checkFinite(PropertyTurbidity, v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError{Property: PropertyTurbidity, Value: v, Lower: 0, Upper: math.Inf(1), Message: "Turbidity cannot be negative."}
	}
	w.turbidity = v
	return nil
}

// SetViscosity overrides the derived viscosity until the next temperature or TDS write.
func (w *WaterBody) SetViscosity(v float64) error {
	if err := checkFinite(PropertyViscosity, v); err != nil {
		return err
	}
	if v <= 0 {
		return RangeError{Property: PropertyViscosity, Value: v, Lower: 0, Upper: math.Inf(1), Message: "Viscosity must be positive and non-zero."}
	}
	w.viscosity = v
	return nil
}

// SetTDS assigns total dissolved solids in ppm and recomputes viscosity.
func (w *WaterBody) SetTDS(v float64) error {
	if err := checkFinite(PropertyTDS, v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError{Property: PropertyTDS, Value: v, Lower: 0, Upper: math.Inf(1), Message: "TDS cannot be negative."}
	}
	w.tds = v
	w.recomputeViscosity()
	return nil
}

// SetNutrients updates the current nutrient load. The initial load is kept.
func (w *WaterBody) SetNutrients(v float64) error {
	if err := checkFinite("nutrients", v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError{Property: "nutrients", Value: v, Lower: 0, Upper: math.Inf(1), Message: "Nutrients cannot be negative."}
	}
	w.currentNutrients = v
	return nil
}

// AddWater pours amount liters into the container and returns the amount added.
func (w *WaterBody) AddWater(amount float64) (float64, error) {
	if err := checkFinite("amount", amount); err != nil {
		return 0, err
	}
	reject := func(msg string) (float64, error) {
		return 0, CapacityError{Operation: "add water", Requested: amount, Capacity: w.capacity, Message: msg}
	}
	switch {
	case amount <= 0:
		return reject("amount must be greater than zero")
	case amount > w.capacity:
		return reject(fmt.Sprintf("amount must be less than or equal to the tank capacity %s liters", formatValue(w.capacity)))
	case amount > w.capacity-w.volume:
		return reject("amount exceeds the tank capacity when added to the current volume")
	}
	if err := w.setVolume("add water", w.volume+amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// ExtractWater drains amount liters. Unless force is set the volume may not drop
// below the underflow threshold.
func (w *WaterBody) ExtractWater(amount float64, force bool) (float64, error) {
	if err := checkFinite("amount", amount); err != nil {
		return 0, err
	}
	reject := func(msg string) (float64, error) {
		return 0, CapacityError{Operation: "extract water", Requested: amount, Capacity: w.capacity, Message: msg}
	}
	switch {
	case amount < 0:
		return reject("amount must be non-negative")
	case amount > w.volume:
		return reject("amount must be less than or equal to the current volume")
	case !force && amount > w.volume-w.UnderflowThreshold():
		return reject("amount must be less than or equal to the current volume minus the underflow threshold")
	}
	if err := w.setVolume("extract water", w.volume-amount); err != nil {
		return 0, err
	}
	return amount, nil
}
