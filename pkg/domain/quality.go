package domain

import "fmt"

// StatusOK is the monitor status of an in-range property.
const StatusOK = "OK"

// QualityRangeMonitor checks measured properties against acceptable ranges and
// keeps an alert log until it is cleaned.
type QualityRangeMonitor struct {
	ranges map[string]PropertyRange
	alerts []string
	status map[string]string
}

// NewQualityRangeMonitor copies ranges into a new monitor. At least one range is required.
func NewQualityRangeMonitor(ranges map[string]PropertyRange) (*QualityRangeMonitor, error) {
	if len(ranges) == 0 {
		return nil, ConfigurationError{Component: "quality monitor", Message: "ranges cannot be empty"}
	}
	m := &QualityRangeMonitor{
		ranges: make(map[string]PropertyRange, len(ranges)),
		status: make(map[string]string, len(ranges)),
	}
	for key, r := range ranges {
		if r.Name() == "" {
			return nil, ConfigurationError{Component: "quality monitor", Message: fmt.Sprintf("range for %s is not initialised", key)}
		}
		m.ranges[key] = r
	}
	return m, nil
}

// Properties lists the monitored keys in sorted order.
func (m *QualityRangeMonitor) Properties() []string {
	return sortedKeys(m.ranges)
}

// Range returns the acceptable range configured for key.
func (m *QualityRangeMonitor) Range(key string) (PropertyRange, bool) {
	r, ok := m.ranges[key]
	return r, ok
}

// ValidateData fails on the first non-numeric value or unmonitored key.
func (m *QualityRangeMonitor) ValidateData(data map[string]any) error {
	for _, key := range sortedKeys(data) {
		v, ok := toFloat(data[key])
		if !ok {
			return TypeError{Property: key, Value: data[key]}
		}
		if err := checkFinite(key, v); err != nil {
			return err
		}
		if _, ok := m.ranges[key]; !ok {
			return ConfigurationError{Component: "quality monitor", Message: fmt.Sprintf("no range configured for %s", key)}
		}
	}
	return nil
}

// AnalyzeData validates data, then records a status per key and an alert for
// every out-of-range value. It reports whether every key in data is OK.
func (m *QualityRangeMonitor) AnalyzeData(data map[string]any) (bool, error) {
	if err := m.ValidateData(data); err != nil {
		return false, err
	}
	ok := true
	for _, key := range sortedKeys(data) {
		v, _ := toFloat(data[key])
		if m.ranges[key].Contains(v) {
			m.status[key] = StatusOK
			continue
		}
		ok = false
		m.status[key] = fmt.Sprintf("%s is outside the acceptable range.", formatValue(v))
		m.alerts = append(m.alerts, fmt.Sprintf("Alert! %s: %s out of range", key, formatValue(v)))
	}
	return ok, nil
}

// Observe analyses the monitored keys of a status snapshot and ignores the rest.
func (m *QualityRangeMonitor) Observe(s Status) (bool, error) {
	data := make(map[string]any, len(m.ranges))
	for key := range m.ranges {
		if v, present := s[key]; present {
			data[key] = v
		}
	}
	return m.AnalyzeData(data)
}

// CleanAlerts empties the alert log. Status is kept.
func (m *QualityRangeMonitor) CleanAlerts() {
	m.alerts = nil
}

// Alerts returns a copy of the alert log in raise order.
func (m *QualityRangeMonitor) Alerts() []string {
	return append([]string(nil), m.alerts...)
}

// Status returns a copy of the last status per key.
func (m *QualityRangeMonitor) Status() map[string]string {
	out := make(map[string]string, len(m.status))
	for k, v := range m.status {
		out[k] = v
	}
	return out
}
