package domain

import "math"

// Empirical constants of the temperature term, fit to pure-water viscosity in Pa·s.
const (
	viscosityA = 8.569944981455998e+155
	viscosityB = 8101783.244249629
	viscosityC = 22428.609592644887

	// solute correction: (1 + k·TDS^n)
	viscosityTDSCoefficient = 0.001
	viscosityTDSExponent    = 0.5

	// MinViscosity is pure water near boiling; the model never reports less.
	MinViscosity = 0.000282

	// DefaultViscosity is pure water at 25 °C.
	DefaultViscosity = 0.00089

	kelvinOffset = 273.15
)

// Viscosity returns the dynamic viscosity (Pa·s) of water at temperature
// celsius carrying tds ppm of dissolved solids.
func Viscosity(celsius, tds float64) float64 {
	base := viscosityA * math.Exp(viscosityB/(celsius+kelvinOffset-viscosityC))
	eta := base * (1 + viscosityTDSCoefficient*math.Pow(tds, viscosityTDSExponent))
	return math.Max(eta, MinViscosity)
}

func (w *WaterBody) recomputeViscosity() {
	w.viscosity = Viscosity(w.temperature, w.tds)
}
