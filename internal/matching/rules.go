package matching

import (
	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// Profession category keys the fit rules key on. Categories outside this
// set fall through to the row's default multiplier.
const (
	ProfessionCategorySocialWork         = "social_work"
	ProfessionCategoryWellness           = "wellness"
	ProfessionCategoryClinicalCounseling = "clinical_counseling"
)

// fitSignal names the contextual signal that selects a rule row.
type fitSignal string

const (
	fitSignalCrisis   fitSignal = "crisis_override"
	fitSignalHolistic fitSignal = "holistic"
	fitSignalLegal    fitSignal = "legal_context"
	fitSignalDefault  fitSignal = "default"
)

// fitRule maps a contextual signal to per-category multipliers of the
// profession-fit weight. Multipliers: boosted 1.0, neutral 0.7,
// contraindicated 0.3-0.5.
type fitRule struct {
	signal             fitSignal
	categoryMultiplier map[string]float64
	defaultMultiplier  float64
}

// professionFitRules is evaluated in fixed priority order: the crisis
// override beats the holistic signal, which beats the legal context, which
// beats the default. Exactly one row applies per run; lower-priority rows
// are never consulted once a higher one matched.
var professionFitRules = []fitRule{
	{
		signal: fitSignalCrisis,
		categoryMultiplier: map[string]float64{
			ProfessionCategoryClinicalCounseling: 1.0,
			ProfessionCategoryWellness:           0.4,
		},
		defaultMultiplier: 0.7,
	},
	{
		signal: fitSignalHolistic,
		categoryMultiplier: map[string]float64{
			ProfessionCategoryWellness:           1.0,
			ProfessionCategoryClinicalCounseling: 0.5,
		},
		defaultMultiplier: 0.7,
	},
	{
		signal: fitSignalLegal,
		categoryMultiplier: map[string]float64{
			ProfessionCategorySocialWork: 1.0,
		},
		defaultMultiplier: 0.7,
	},
	{
		signal:             fitSignalDefault,
		categoryMultiplier: map[string]float64{},
		defaultMultiplier:  0.7,
	},
}

// activeFitSignal selects the single rule row for a run.
func activeFitSignal(legalContext bool, signal entities.HolisticSignal) fitSignal {
	switch {
	case signal.ClinicalOverride:
		return fitSignalCrisis
	case signal.RecommendAlternative:
		return fitSignalHolistic
	case legalContext:
		return fitSignalLegal
	default:
		return fitSignalDefault
	}
}

// professionFitMultiplier returns the multiplier of the profession-fit
// weight for a candidate's primary profession category. Missing profession
// data yields 0.5.
func professionFitMultiplier(categoryKey string, legalContext bool, signal entities.HolisticSignal) float64 {
	if categoryKey == "" {
		return 0.5
	}

	active := activeFitSignal(legalContext, signal)
	for _, rule := range professionFitRules {
		if rule.signal != active {
			continue
		}
		if m, ok := rule.categoryMultiplier[categoryKey]; ok {
			return m
		}
		return rule.defaultMultiplier
	}
	return 0.7
}
