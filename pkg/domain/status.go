package domain

import (
	"sort"
	"strconv"
)

// Status keys reported by WaterBody and Tank.
const (
	StatusTemperature          = "temperature"
	StatusPH                   = "ph"
	StatusTurbidity            = "turbidity"
	StatusViscosity            = "viscosity"
	StatusTDS                  = "tds"
	StatusCurrentVolume        = "current_volume"
	StatusUnderflowThreshold   = "underflow_capacity_threshold"
	StatusOverflowThreshold    = "overflow_capacity_threshold"
	StatusIsEmpty              = "is_empty"
	StatusIsFull               = "is_full"
	StatusTankCapacity         = "tank_capacity"
	StatusOverflowVolume       = "overflow_volume"
	StatusSnowAccumulation     = "snow_accumulation"
	StatusNutrients            = "nutrients"
	StatusCurrentNutrients     = "current_nutrients"
	StatusTankName             = "tank_name"
	StatusTankLength           = "tank_length"
	StatusTankWidth            = "tank_width"
	StatusTankDepth            = "tank_depth"
	StatusTankType             = "tank_type"
	StatusSurfaceArea          = "water_surface_area"
	StatusCumulativeEvaporated = "total_water_evaporated"
)

// Status is a flat snapshot of scalar properties keyed by name.
type Status map[string]any

// Float returns the numeric value stored under key.
func (s Status) Float(key string) (float64, bool) {
	return toFloat(s[key])
}

// Bool returns the boolean value stored under key.
func (s Status) Bool(key string) (bool, bool) {
	b, ok := s[key].(bool)
	return b, ok
}

// Keys returns the status keys in sorted order.
func (s Status) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy; values are scalars so the copy is independent.
func (s Status) Clone() Status {
	out := make(Status, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Format renders the value under key the way logs and alerts print it.
func (s Status) Format(key string) string {
	return FormatScalar(s[key])
}

// FormatScalar renders a status value: numbers without trailing zeros, booleans and strings as-is.
func FormatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := toFloat(v); ok {
		return formatValue(f)
	}
	return ""
}

// toFloat accepts every Go numeric kind. Booleans and strings are not numeric.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Status reports every scalar property of the body.
func (w *WaterBody) Status() Status {
	return Status{
		StatusTemperature:        w.temperature,
		StatusPH:                 w.ph,
		StatusTurbidity:          w.turbidity,
		StatusViscosity:          w.viscosity,
		StatusTDS:                w.tds,
		StatusCurrentVolume:      w.volume,
		StatusUnderflowThreshold: w.UnderflowThreshold(),
		StatusOverflowThreshold:  w.OverflowThreshold(),
		StatusIsEmpty:            w.empty,
		StatusIsFull:             w.full,
		StatusTankCapacity:       w.capacity,
		StatusOverflowVolume:     w.overflowVolume,
		StatusSnowAccumulation:   w.snowAccumulation,
		StatusNutrients:          w.nutrients,
		StatusCurrentNutrients:   w.currentNutrients,
	}
}
