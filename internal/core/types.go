package core

import "aquacore/pkg/domain"

type (
	Severity           = domain.Severity
	Change             = domain.Change
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Snapshot           = domain.Snapshot
	SnapshotStore      = domain.SnapshotStore
	Status             = domain.Status
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)
