package domain

import (
	"math"
	"strings"
)

// PrecipitationKind is rain or snow.
type PrecipitationKind string

const (
	Rain PrecipitationKind = "rain"
	Snow PrecipitationKind = "snow"
)

// PrecipitationPattern distinguishes continuous from broken precipitation.
type PrecipitationPattern string

const (
	Steady       PrecipitationPattern = "steady"
	Intermittent PrecipitationPattern = "intermittent"
)

// intermittentShare is the fraction of an intermittent rain event that reaches the water.
const intermittentShare = 0.5

// Precipitation is one precipitation event. Amount is in liters; AirTemp (°C)
// drives snow melt.
type Precipitation struct {
	Kind    PrecipitationKind    `json:"kind" yaml:"kind"`
	Amount  float64              `json:"amount" yaml:"amount"`
	Pattern PrecipitationPattern `json:"pattern" yaml:"pattern"`
	AirTemp float64              `json:"air_temp" yaml:"air_temp"`
}

// Normalize lower-cases kind and pattern and defaults an empty pattern to steady.
func (p Precipitation) Normalize() Precipitation {
	p.Kind = PrecipitationKind(strings.ToLower(strings.TrimSpace(string(p.Kind))))
	p.Pattern = PrecipitationPattern(strings.ToLower(strings.TrimSpace(string(p.Pattern))))
	if p.Pattern == "" {
		p.Pattern = Steady
	}
	return p
}

// Validate checks kind, pattern and amount.
func (p Precipitation) Validate() error {
	switch p.Kind {
	case Rain, Snow:
	default:
		return TypeError{Property: "precipitation kind", Value: string(p.Kind)}
	}
	switch p.Pattern {
	case Steady, Intermittent:
	default:
		return TypeError{Property: "precipitation pattern", Value: string(p.Pattern)}
	}
	if err := checkFinite("precipitation amount", p.Amount); err != nil {
		return err
	}
	if p.Amount < 0 {
		return RangeError{Property: "precipitation amount", Value: p.Amount, Lower: 0, Upper: math.Inf(1), Message: "Amount must be non-negative."}
	}
	return checkFinite("air temperature", p.AirTemp)
}

// SnowMelt returns the liters of an accumulation of snow that melt at airTemp.
// The melt grows with temperature and never exceeds the accumulation.
func SnowMelt(snow, airTemp float64) float64 {
	if airTemp <= 0 || snow <= 0 {
		return 0
	}
	return math.Min(snow, 0.01*snow*airTemp/(airTemp+5))
}

// ManagePrecipitation applies p to the body and returns the liters that reached
// the water. Snow accumulates first and only its melted share is added.
func (w *WaterBody) ManagePrecipitation(p Precipitation) (float64, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return 0, err
	}
	const op = "manage precipitation"
	switch p.Kind {
	case Rain:
		added := p.Amount
		if p.Pattern == Intermittent {
			added *= intermittentShare
		}
		if err := w.setVolume(op, w.volume+added); err != nil {
			return 0, err
		}
		return added, nil
	default:
		w.snowAccumulation += p.Amount
		melted := SnowMelt(w.snowAccumulation, p.AirTemp)
		if melted == 0 {
			return 0, nil
		}
		if err := w.setVolume(op, w.volume+melted); err != nil {
			return 0, err
		}
		w.snowAccumulation -= melted
		return melted, nil
	}
}
