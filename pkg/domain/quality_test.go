package domain

import (
	"errors"
	"testing"
)

func newMonitor(t *testing.T) *QualityRangeMonitor {
	t.Helper()
	env := DefaultEnvelopes()
	m, err := NewQualityRangeMonitor(map[string]PropertyRange{
		PropertyPH:          MustPropertyRange(env, PropertyPH, 6.5, 8.5),
		PropertyTemperature: MustPropertyRange(env, PropertyTemperature, 10, 30),
		PropertyTurbidity:   MustPropertyRange(env, PropertyTurbidity, 0, 50),
	})
	mustNoError(t, "monitor", err)
	return m
}

func TestAnalyzeDataRaisesSingleAlert(t *testing.T) {
	m := newMonitor(t)
	ok, err := m.AnalyzeData(map[string]any{PropertyPH: 7.5, PropertyTemperature: 120, PropertyTurbidity: 5})
	mustNoError(t, "analyze", err)
	if ok {
		t.Fatalf("expected out-of-range result")
	}
	alerts := m.Alerts()
	if len(alerts) != 1 || alerts[0] != "Alert! temperature: 120 out of range" {
		t.Fatalf("unexpected alerts %q", alerts)
	}
	status := m.Status()
	if status[PropertyTemperature] != "120 is outside the acceptable range." {
		t.Fatalf("unexpected temperature status %q", status[PropertyTemperature])
	}
	if status[PropertyPH] != StatusOK || status[PropertyTurbidity] != StatusOK {
		t.Fatalf("unexpected status %v", status)
	}
}

func TestAnalyzeDataResultCoversCurrentCallOnly(t *testing.T) {
	m := newMonitor(t)
	if _, err := m.AnalyzeData(map[string]any{PropertyTemperature: 99}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	ok, err := m.AnalyzeData(map[string]any{PropertyPH: 7})
	mustNoError(t, "analyze", err)
	if !ok {
		t.Fatalf("keys outside this call must not affect the result")
	}
	if len(m.Alerts()) != 1 {
		t.Fatalf("alerts should accumulate, got %v", m.Alerts())
	}
}

func TestCleanAlertsKeepsStatus(t *testing.T) {
	m := newMonitor(t)
	_, _ = m.AnalyzeData(map[string]any{PropertyPH: 3, PropertyTemperature: 5})
	if len(m.Alerts()) != 2 {
		t.Fatalf("expected two alerts, got %v", m.Alerts())
	}
	m.CleanAlerts()
	if len(m.Alerts()) != 0 {
		t.Fatalf("alerts not cleaned")
	}
	if m.Status()[PropertyPH] == StatusOK {
		t.Fatalf("status must survive CleanAlerts")
	}
}

func TestValidateData(t *testing.T) {
	m := newMonitor(t)
	if err := m.ValidateData(map[string]any{PropertyPH: "seven"}); !errors.Is(err, ErrTypeValidation) {
		t.Fatalf("expected type validation, got %v", err)
	}
	if err := m.ValidateData(map[string]any{PropertyPH: true}); !errors.Is(err, ErrTypeValidation) {
		t.Fatalf("booleans are not numeric, got %v", err)
	}
	if err := m.ValidateData(map[string]any{"salinity": 3}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected lookup failure, got %v", err)
	}
	mustNoError(t, "valid", m.ValidateData(map[string]any{PropertyPH: 7, PropertyTemperature: int64(20)}))
	if _, err := m.AnalyzeData(map[string]any{"salinity": 3}); err == nil {
		t.Fatalf("analyze must validate first")
	}
	if len(m.Status()) != 0 {
		t.Fatalf("failed validation must not record status")
	}
}

func TestObserveUsesMonitoredKeysOnly(t *testing.T) {
	m := newMonitor(t)
	tank := newFishTank(t)
	ok, err := m.Observe(tank.Status())
	mustNoError(t, "observe", err)
	if !ok || len(m.Alerts()) != 0 {
		t.Fatalf("default water should be in range, alerts %v", m.Alerts())
	}
	mustNoError(t, "temperature", tank.SetTemperature(35))
	ok, err = m.Observe(tank.Status())
	mustNoError(t, "observe", err)
	if ok || len(m.Alerts()) != 1 || m.Alerts()[0] != "Alert! temperature: 35 out of range" {
		t.Fatalf("unexpected observation %v %v", ok, m.Alerts())
	}
}

func TestNewQualityRangeMonitorRequiresRanges(t *testing.T) {
	if _, err := NewQualityRangeMonitor(nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewQualityRangeMonitor(map[string]PropertyRange{"ph": {}}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("zero range must be rejected, got %v", err)
	}
}
