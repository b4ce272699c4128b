package core

import (
	"context"
	"fmt"

	"aquacore/pkg/domain"
)

// NewFillStateRule logs transitions between empty, normal and full.
func NewFillStateRule() domain.Rule {
	return fillStateRule{}
}

type fillStateRule struct{}

func (fillStateRule) Name() string { return "fill_state" }

func (fillStateRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		before, after := fillState(change.Before), fillState(change.After)
		if before == after {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "fill_state",
			Severity: domain.SeverityLog,
			Message:  fmt.Sprintf("%s moved tank from %s to %s", change.Operation, before, after),
			Property: domain.StatusCurrentVolume,
		})
	}
	return res, nil
}

func fillState(s domain.Status) domain.State {
	if empty, _ := s.Bool(domain.StatusIsEmpty); empty {
		return domain.StateEmpty
	}
	if full, _ := s.Bool(domain.StatusIsFull); full {
		return domain.StateFull
	}
	return domain.StateNormal
}
