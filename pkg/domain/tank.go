package domain

import (
	"math"
	"strings"
	"time"
)

// Container kinds whose water surface is open to the air.
const (
	KindFishTank        = "fish tank"
	KindLiquidComposter = "liquid composter"
	KindPond            = "pond"
)

var openSurfaceKinds = map[string]struct{}{
	KindFishTank:        {},
	KindLiquidComposter: {},
	KindPond:            {},
}

// TankConfig describes a rectangular container. Dimensions are centimetres.
type TankConfig struct {
	Name      string  `json:"name" yaml:"name"`
	Length    float64 `json:"length" yaml:"length"`
	Width     float64 `json:"width" yaml:"width"`
	Depth     float64 `json:"depth" yaml:"depth"`
	Kind      string  `json:"kind" yaml:"kind"`
	Nutrients float64 `json:"nutrients" yaml:"nutrients"`
}

// Tank is a WaterBody with geometry and evaporation bookkeeping.
type Tank struct {
	*WaterBody

	name        string
	length      float64
	width       float64
	depth       float64
	kind        string
	surfaceArea float64

	cumulativeEvaporated float64
	evaporationRates     map[float64]float64

	tracked bool
}

// TankCapacity returns the liters held by a box of the given centimetre dimensions.
func TankCapacity(length, width, depth float64) float64 {
	return (length / 100) * (width / 100) * (depth / 100) * 1000
}

// ExposedSurfaceArea returns the open water surface in m², zero for sealed kinds.
func ExposedSurfaceArea(kind string, length, width float64) float64 {
	if _, ok := openSurfaceKinds[strings.ToLower(kind)]; !ok {
		return 0
	}
	return (length / 100) * (width / 100)
}

// NewTank derives capacity and surface area from cfg and returns an empty tank.
func NewTank(env *Envelopes, cfg TankConfig) (*Tank, error) {
	for _, dim := range []struct {
		name  string
		value float64
	}{{"tank length", cfg.Length}, {"tank width", cfg.Width}, {"tank depth", cfg.Depth}} {
		if err := checkFinite(dim.name, dim.value); err != nil {
			return nil, err
		}
		if dim.value <= 0 {
			return nil, RangeError{Property: dim.name, Value: dim.value, Lower: 0, Upper: math.Inf(1), Message: dim.name + " must be positive."}
		}
	}
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		return nil, ConfigurationError{Component: "tank", Message: "tank kind cannot be empty"}
	}
	body, err := NewWaterBody(env, TankCapacity(cfg.Length, cfg.Width, cfg.Depth), cfg.Nutrients)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = strings.ReplaceAll(kind, " ", "_")
	}
	return &Tank{
		WaterBody:        body,
		name:             name,
		length:           cfg.Length,
		width:            cfg.Width,
		depth:            cfg.Depth,
		kind:             kind,
		surfaceArea:      ExposedSurfaceArea(kind, cfg.Length, cfg.Width),
		evaporationRates: make(map[float64]float64),
	}, nil
}

// Name returns the configured tank name, or one derived from its kind.
func (t *Tank) Name() string    { return t.name }
func (t *Tank) Length() float64 { return t.length }
func (t *Tank) Width() float64  { return t.width }
func (t *Tank) Depth() float64  { return t.depth }
func (t *Tank) Kind() string    { return t.kind }

// SurfaceArea returns the exposed water surface in m², zero for sealed kinds.
func (t *Tank) SurfaceArea() float64          { return t.surfaceArea }
func (t *Tank) CumulativeEvaporated() float64 { return t.cumulativeEvaporated }

// EvaporationRates returns a copy of the last rate (L/m²/s) observed per air temperature.
func (t *Tank) EvaporationRates() map[float64]float64 {
	out := make(map[float64]float64, len(t.evaporationRates))
	for k, v := range t.evaporationRates {
		out[k] = v
	}
	return out
}

// Exposure builds an evaporation input over the tank's own surface.
func (t *Tank) Exposure(airTemp, relativeHumidity float64, elapsed time.Duration) EvaporationInput {
	return EvaporationInput{
		AirTemp:          airTemp,
		SurfaceArea:      t.surfaceArea,
		RelativeHumidity: relativeHumidity,
		Elapsed:          elapsed,
	}
}

// Evaporate delegates to the water body over the tank's own exposed surface,
// whatever in.SurfaceArea says, and records cumulative loss and the
// per-air-temperature rate. Sealed tanks never lose water.
func (t *Tank) Evaporate(in EvaporationInput) (float64, error) {
	in.SurfaceArea = t.surfaceArea
	liters, err := t.WaterBody.Evaporate(in)
	if err != nil {
		return 0, err
	}
	t.cumulativeEvaporated += liters
	if t.surfaceArea > 0 && liters > 0 && in.Elapsed > 0 {
		t.evaporationRates[in.AirTemp] = liters / t.surfaceArea / in.Elapsed.Seconds()
	}
	return liters, nil
}

// Status reports the water status plus geometry and evaporation totals.
func (t *Tank) Status() Status {
	s := t.WaterBody.Status()
	s[StatusTankName] = t.name
	s[StatusTankLength] = t.length
	s[StatusTankWidth] = t.width
	s[StatusTankDepth] = t.depth
	s[StatusTankType] = t.kind
	s[StatusSurfaceArea] = t.surfaceArea
	s[StatusCumulativeEvaporated] = t.cumulativeEvaporated
	return s
}
