package core

import (
	"context"
	"fmt"
	"math"

	"aquacore/pkg/domain"
)

// NewVolumeBoundsRule returns the rule blocking any step that leaves the
// volume outside [0, capacity].
func NewVolumeBoundsRule() domain.Rule {
	return volumeBoundsRule{}
}

type volumeBoundsRule struct{}

func (volumeBoundsRule) Name() string { return "volume_bounds" }

func (volumeBoundsRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	status := view.Status()
	volume, ok := status.Float(domain.StatusCurrentVolume)
	if !ok {
		return domain.Result{}, fmt.Errorf("status has no %s", domain.StatusCurrentVolume)
	}
	capacity, _ := status.Float(domain.StatusTankCapacity)
	res := domain.Result{}
	if math.IsNaN(volume) || volume < 0 || volume > capacity {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "volume_bounds",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("volume %s outside [0, %s]", domain.FormatScalar(volume), domain.FormatScalar(capacity)),
			Property: domain.StatusCurrentVolume,
		})
	}
	return res, nil
}
