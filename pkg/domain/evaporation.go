package domain

import (
	"math"
	"time"
)

// Antoine coefficients for water, pressure in mmHg, temperature in °C.
const (
	antoineA = 8.07131
	antoineB = 1730.63
	antoineC = 233.426
)

// Validation envelopes for evaporation inputs.
var (
	airTemperatureBounds   = Bounds{Lower: -10, Upper: 50}
	evaporationAreaBounds  = Bounds{Lower: 0, Upper: 100}
	relativeHumidityBounds = Bounds{Lower: 0, Upper: 100}
)

// EvaporationInput carries the environmental forcing of one evaporation step.
type EvaporationInput struct {
	AirTemp          float64 // °C
	SurfaceArea      float64 // m²
	RelativeHumidity float64 // percent, 0..100
	Elapsed          time.Duration
}

// SaturationVaporPressure returns the Antoine saturation vapour pressure at celsius.
func SaturationVaporPressure(celsius float64) float64 {
	return math.Pow(10, antoineA-antoineB/(antoineC+celsius))
}

// EvaporationRate returns grams of water lost per hour from area m² of water
// at waterTemp, exposed to air at airTemp with the given relative humidity.
// Condensation is not modelled, so the rate never drops below zero.
func EvaporationRate(waterTemp, airTemp, area, relativeHumidity float64) float64 {
	pSat := SaturationVaporPressure(waterTemp)
	pAir := relativeHumidity / 100 * pSat
	k := 0.1 + 0.01*(airTemp-waterTemp)
	rate := k * area * (pSat - pAir)
	if rate < 0 {
		return 0
	}
	return rate
}

// EvaporatedLiters converts a grams-per-hour rate over elapsed into liters.
func EvaporatedLiters(gramsPerHour float64, elapsed time.Duration) float64 {
	return gramsPerHour * elapsed.Hours() / 1000
}

func (w *WaterBody) validateEvaporation(in EvaporationInput) error {
	checks := []struct {
		name   string
		value  float64
		bounds Bounds
	}{
		{PropertyTemperature, in.AirTemp, airTemperatureBounds},
		{PropertySurfaceArea, in.SurfaceArea, evaporationAreaBounds},
		{PropertyRelativeHumidity, in.RelativeHumidity, relativeHumidityBounds},
	}
	for _, c := range checks {
		r, err := NewPropertyRange(w.envelopes, c.name, c.bounds.Lower, c.bounds.Upper)
		if err != nil {
			return err
		}
		if err := r.Check(c.value); err != nil {
			return err
		}
	}
	if in.Elapsed < 0 {
		return RangeError{Property: "elapsed", Value: in.Elapsed.Seconds(), Lower: 0, Upper: math.Inf(1),
			Message: "Elapsed time must be non-negative."}
	}
	return nil
}

// Evaporate removes the water lost to the air over in.Elapsed and returns the
// liters removed. A zero surface area is a sealed container and evaporates nothing.
func (w *WaterBody) Evaporate(in EvaporationInput) (float64, error) {
	if err := w.validateEvaporation(in); err != nil {
		return 0, err
	}
	if in.SurfaceArea == 0 {
		return 0, nil
	}
	liters := EvaporatedLiters(EvaporationRate(w.temperature, in.AirTemp, in.SurfaceArea, in.RelativeHumidity), in.Elapsed)
	if liters > w.volume {
		w.refreshFlags()
		return 0, CapacityError{
			Operation: "evaporate",
			Requested: liters,
			Capacity:  w.capacity,
			Message:   "evaporated volume " + formatValue(liters) + " exceeds the current volume " + formatValue(w.volume),
		}
	}
	if err := w.setVolume("evaporate", w.volume-liters); err != nil {
		return 0, err
	}
	return liters, nil
}
