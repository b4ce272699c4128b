package core

import (
	"context"
	"errors"
	"fmt"

	"aquacore/pkg/domain"
)

// NewOverflowRecordedRule warns whenever a change was rejected for exceeding capacity.
func NewOverflowRecordedRule() domain.Rule {
	return overflowRecordedRule{}
}

type overflowRecordedRule struct{}

func (overflowRecordedRule) Name() string { return "overflow_recorded" }

func (overflowRecordedRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		var capErr domain.CapacityError
		if !errors.As(change.Err, &capErr) || capErr.Overflow <= 0 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "overflow_recorded",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s overflowed by %s L", change.Operation, domain.FormatScalar(capErr.Overflow)),
			Property: domain.StatusOverflowVolume,
		})
	}
	return res, nil
}
