package core

import (
	"context"
	"fmt"
	"sort"

	"aquacore/pkg/domain"
)

// NewDissolvedRangesRule warns when a tracked concentration sits outside the
// element's current range, which happens after a range is narrowed.
func NewDissolvedRangesRule() domain.Rule {
	return dissolvedRangesRule{}
}

type dissolvedRangesRule struct{}

func (dissolvedRangesRule) Name() string { return "dissolved_ranges" }

func (dissolvedRangesRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	concentrations := view.Concentrations()
	names := make([]string, 0, len(concentrations))
	for name := range concentrations {
		names = append(names, name)
	}
	sort.Strings(names)

	res := domain.Result{}
	for _, name := range names {
		bounds, ok := view.ElementRange(name)
		if !ok {
			return domain.Result{}, fmt.Errorf("element %s has no range", name)
		}
		c := concentrations[name]
		if bounds.Contains(c) {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "dissolved_ranges",
			Severity: domain.SeverityWarn,
			Message: fmt.Sprintf("%s concentration %s outside [%s, %s]", name, domain.FormatScalar(c),
				domain.FormatScalar(bounds.Lower), domain.FormatScalar(bounds.Upper)),
			Property: name,
		})
	}
	return res, nil
}
