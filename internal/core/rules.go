package core

import "aquacore/pkg/domain"

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewVolumeBoundsRule())
	engine.Register(NewOverflowRecordedRule())
	engine.Register(NewQualityRangeRule())
	engine.Register(NewDissolvedRangesRule())
	engine.Register(NewFillStateRule())
	return engine
}
