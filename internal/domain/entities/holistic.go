package entities

// HolisticCategory is the dominant wellness keyword category detected in a
// request's free text.
type HolisticCategory string

const (
	HolisticCategoryBody      HolisticCategory = "body"
	HolisticCategoryEnergy    HolisticCategory = "energy"
	HolisticCategoryLifestyle HolisticCategory = "lifestyle"
	HolisticCategoryGlobal    HolisticCategory = "global"
	HolisticCategoryNone      HolisticCategory = "none"
)

// HolisticSignal is the output of the wellness/crisis text classifier.
// ClinicalOverride always suppresses RecommendAlternative: crisis language
// wins over any wellness keyword density.
type HolisticSignal struct {
	Score                float64          `json:"score"`
	PrimaryCategory      HolisticCategory `json:"primary_category"`
	MatchedKeywords      []string         `json:"matched_keywords"`
	RecommendAlternative bool             `json:"recommend_alternative"`
	ClinicalOverride     bool             `json:"clinical_override"`
	CrisisKeywords       []string         `json:"crisis_keywords"`
}
