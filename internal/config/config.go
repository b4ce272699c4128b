// Package config loads scenario files: a tank, its initial water state and
// the environmental steps to replay against it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"aquacore/pkg/domain"
)

// EnvConfigPath names the scenario file used when no path is given.
const EnvConfigPath = "AQUACORE_CONFIG"

// Scenario is the root of a scenario file.
type Scenario struct {
	Name          string                          `yaml:"name"`
	RunID         string                          `yaml:"run_id,omitempty"`
	Tank          TankSpec                        `yaml:"tank"`
	Thresholds    Thresholds                      `yaml:"thresholds,omitempty"`
	Properties    map[string]float64              `yaml:"properties,omitempty"`
	Elements      map[string]domain.ElementConfig `yaml:"elements,omitempty"`
	QualityRanges map[string]RangeSpec            `yaml:"quality_ranges,omitempty"`
	Recorder      RecorderSpec                    `yaml:"recorder,omitempty"`
	Steps         []Step                          `yaml:"steps"`
}

// TankSpec is the tank geometry plus the volume it starts with.
type TankSpec struct {
	domain.TankConfig `yaml:",inline"`
	InitialVolume     float64 `yaml:"initial_volume,omitempty"`
}

// Thresholds are fractions of capacity (<= 1) or liters (> 1). Zero keeps the default.
type Thresholds struct {
	Underflow float64 `yaml:"underflow,omitempty"`
	Overflow  float64 `yaml:"overflow,omitempty"`
}

// RangeSpec bounds one monitored property.
type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// RecorderSpec configures the status log. A zero interval disables it.
type RecorderSpec struct {
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Step is one slice of simulated weather, optionally with manual water changes.
// Repeat replays the step; zero means once.
type Step struct {
	AirTemp          float64               `yaml:"air_temp"`
	RelativeHumidity float64               `yaml:"relative_humidity"`
	Elapsed          time.Duration         `yaml:"elapsed"`
	Precipitation    *domain.Precipitation `yaml:"precipitation,omitempty"`
	AddWater         float64               `yaml:"add_water,omitempty"`
	ExtractWater     float64               `yaml:"extract_water,omitempty"`
	Force            bool                  `yaml:"force,omitempty"`
	Repeat           int                   `yaml:"repeat,omitempty"`
}

// Times returns how often the step is applied.
func (s Step) Times() int {
	if s.Repeat < 1 {
		return 1
	}
	return s.Repeat
}

// ValidationError lists every problem found in a scenario.
type ValidationError struct {
	Problems []string
}

func (e ValidationError) Error() string {
	return "invalid scenario: " + strings.Join(e.Problems, "; ")
}

// Unwrap exposes the domain configuration category.
func (e ValidationError) Unwrap() error { return domain.ErrConfiguration }

// ResolvePath returns path, or the AQUACORE_CONFIG value when path is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no scenario file given and %s is unset", EnvConfigPath)
}

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a scenario document. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the fields that can be judged without building the tank.
// Physical envelopes are enforced by Build.
func (s *Scenario) Validate() error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if strings.TrimSpace(s.Tank.Kind) == "" {
		add("tank.kind is required")
	}
	for name, v := range map[string]float64{"length": s.Tank.Length, "width": s.Tank.Width, "depth": s.Tank.Depth} {
		if !(v > 0) || math.IsInf(v, 0) {
			add("tank.%s must be positive", name)
		}
	}
	if s.Tank.InitialVolume < 0 {
		add("tank.initial_volume cannot be negative")
	}
	if s.Recorder.Interval < 0 {
		add("recorder.interval cannot be negative")
	}
	for _, key := range sortedKeys(s.QualityRanges) {
		if r := s.QualityRanges[key]; r.Min > r.Max {
			add("quality_ranges.%s: min %v greater than max %v", key, r.Min, r.Max)
		}
	}
	if len(s.Steps) == 0 {
		add("at least one step is required")
	}
	for i, st := range s.Steps {
		if st.Elapsed < 0 {
			add("steps[%d].elapsed cannot be negative", i)
		}
		if st.AirTemp > 0 && st.Elapsed == 0 {
			add("steps[%d].elapsed is required when air_temp is above zero", i)
		}
		if st.RelativeHumidity < 0 || st.RelativeHumidity > 100 {
			add("steps[%d].relative_humidity must be within [0, 100]", i)
		}
		if st.AddWater < 0 || st.ExtractWater < 0 {
			add("steps[%d]: water amounts cannot be negative", i)
		}
		if st.Repeat < 0 {
			add("steps[%d].repeat cannot be negative", i)
		}
		if st.Precipitation != nil {
			if err := st.Precipitation.Normalize().Validate(); err != nil {
				add("steps[%d].precipitation: %v", i, err)
			}
		}
	}
	if len(problems) > 0 {
		return ValidationError{Problems: problems}
	}
	return nil
}

// Setup is the domain state a scenario describes.
type Setup struct {
	Tank    *domain.Tank
	Tracker *domain.DissolvedElementsTracker
	Monitor *domain.QualityRangeMonitor
}

// Build creates the tank, applies thresholds, properties and the initial
// volume, then attaches the tracker and monitor when configured.
func (s *Scenario) Build() (Setup, error) {
	tank, err := domain.NewTank(domain.DefaultEnvelopes(), s.Tank.TankConfig)
	if err != nil {
		return Setup{}, fmt.Errorf("build tank: %w", err)
	}
	switch u, o := s.Thresholds.Underflow, s.Thresholds.Overflow; {
	case u > 0 && o > 0:
		if err := tank.SetThresholds(u, o); err != nil {
			return Setup{}, fmt.Errorf("thresholds: %w", err)
		}
	case u > 0:
		if err := tank.SetUnderflowThreshold(u); err != nil {
			return Setup{}, fmt.Errorf("thresholds.underflow: %w", err)
		}
	case o > 0:
		if err := tank.SetOverflowThreshold(o); err != nil {
			return Setup{}, fmt.Errorf("thresholds.overflow: %w", err)
		}
	}
	for _, name := range sortedKeys(s.Properties) {
		if err := tank.SetProperty(name, s.Properties[name]); err != nil {
			return Setup{}, fmt.Errorf("properties.%s: %w", name, err)
		}
	}
	if s.Tank.InitialVolume > 0 {
		if err := tank.SetVolume(s.Tank.InitialVolume); err != nil {
			return Setup{}, fmt.Errorf("tank.initial_volume: %w", err)
		}
	}
	setup := Setup{Tank: tank}
	if len(s.Elements) > 0 {
		tracker, err := domain.NewDissolvedElementsTracker(tank, nil, s.Elements)
		if err != nil {
			return Setup{}, fmt.Errorf("elements: %w", err)
		}
		setup.Tracker = tracker
	}
	if len(s.QualityRanges) > 0 {
		ranges := make(map[string]domain.PropertyRange, len(s.QualityRanges))
		for _, key := range sortedKeys(s.QualityRanges) {
			spec := s.QualityRanges[key]
			r, err := domain.NewPropertyRange(tank.Envelopes(), key, spec.Min, spec.Max)
			if err != nil {
				return Setup{}, fmt.Errorf("quality_ranges.%s: %w", key, err)
			}
			ranges[key] = r
		}
		monitor, err := domain.NewQualityRangeMonitor(ranges)
		if err != nil {
			return Setup{}, fmt.Errorf("quality_ranges: %w", err)
		}
		setup.Monitor = monitor
	}
	return setup, nil
}

// TotalSteps is the number of step applications including repeats.
func (s *Scenario) TotalSteps() int {
	n := 0
	for _, st := range s.Steps {
		n += st.Times()
	}
	return n
}

// IsValidation reports whether err came from Validate.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
