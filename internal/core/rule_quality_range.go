package core

import (
	"context"
	"fmt"
	"sort"

	"aquacore/pkg/domain"
)

// RuleQualityRange names the rule mirroring the quality monitor as violations.
const RuleQualityRange = "quality_range"

// NewQualityRangeRule warns for every monitored property (status value or
// element concentration) outside its acceptable range.
func NewQualityRangeRule() domain.Rule {
	return qualityRangeRule{}
}

type qualityRangeRule struct{}

func (qualityRangeRule) Name() string { return RuleQualityRange }

func (qualityRangeRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	ranges := view.QualityRanges()
	if len(ranges) == 0 {
		return domain.Result{}, nil
	}
	status := view.Status()
	concentrations := view.Concentrations()
	keys := make([]string, 0, len(ranges))
	for k := range ranges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := domain.Result{}
	for _, key := range keys {
		v, ok := status.Float(key)
		if !ok {
			v, ok = concentrations[key]
		}
		if !ok || ranges[key].Contains(v) {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleQualityRange,
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("Alert! %s: %s out of range", key, domain.FormatScalar(v)),
			Property: key,
		})
	}
	return res, nil
}
