package core

import "aquacore/pkg/domain"

// tankView exposes the service's tank, tracker and monitor to rules.
type tankView struct {
	tank    *domain.Tank
	tracker *domain.DissolvedElementsTracker
	monitor *domain.QualityRangeMonitor
}

func (v tankView) Status() domain.Status { return v.tank.Status() }

func (v tankView) Concentrations() map[string]float64 {
	if v.tracker == nil {
		return map[string]float64{}
	}
	return v.tracker.Concentrations()
}

func (v tankView) ElementRange(name string) (domain.Bounds, bool) {
	if v.tracker == nil {
		return domain.Bounds{}, false
	}
	r, err := v.tracker.Range(name)
	if err != nil {
		return domain.Bounds{}, false
	}
	return r.Bounds(), true
}

func (v tankView) QualityRanges() map[string]domain.Bounds {
	out := map[string]domain.Bounds{}
	if v.monitor == nil {
		return out
	}
	for _, key := range v.monitor.Properties() {
		r, _ := v.monitor.Range(key)
		out[key] = r.Bounds()
	}
	return out
}
