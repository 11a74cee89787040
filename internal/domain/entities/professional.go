package entities

import "time"

// ProficiencyLevel qualifies how strong a professional's specialty is.
type ProficiencyLevel string

const (
	ProficiencyPrimary   ProficiencyLevel = "primary"
	ProficiencySecondary ProficiencyLevel = "secondary"
	ProficiencyFamiliar  ProficiencyLevel = "familiar"
)

// Weight returns the scoring contribution of a matched specialty at this
// proficiency. Unknown levels weigh the same as familiar.
func (p ProficiencyLevel) Weight() float64 {
	switch p {
	case ProficiencyPrimary:
		return 1.0
	case ProficiencySecondary:
		return 0.7
	case ProficiencyFamiliar:
		return 0.4
	default:
		return 0.4
	}
}

// Profession is one professional title held by a candidate.
type Profession struct {
	TitleKey    string
	CategoryKey string
	IsPrimary   bool
}

// Specialty is a coded area of practice with a proficiency level.
type Specialty struct {
	Code        string
	Category    string
	Proficiency ProficiencyLevel
}

// Professional is a candidate service provider with its qualification data.
type Professional struct {
	ID              string
	DisplayName     string
	Active          bool
	YearsExperience *float64
	Professions     []Profession
	MotifKeys       []string
	Specialties     []Specialty
}

// HasMotif reports whether the professional handles the given motif key.
func (p *Professional) HasMotif(key string) bool {
	for _, m := range p.MotifKeys {
		if m == key {
			return true
		}
	}
	return false
}

// HasSpecialtyCode reports whether the professional holds a specialty with
// the given code, at any proficiency.
func (p *Professional) HasSpecialtyCode(code string) bool {
	for _, s := range p.Specialties {
		if s.Code == code {
			return true
		}
	}
	return false
}

// PrimaryProfession returns the profession flagged as primary, falling back
// to the first entry. Nil when the professional has no profession data.
func (p *Professional) PrimaryProfession() *Profession {
	for i := range p.Professions {
		if p.Professions[i].IsPrimary {
			return &p.Professions[i]
		}
	}
	if len(p.Professions) > 0 {
		return &p.Professions[0]
	}
	return nil
}

// AvailabilitySummary is the per-run availability estimate for a candidate
// over the configured forward window. It is recomputed on every matching
// run and is a coarse estimate, not a booking guarantee.
type AvailabilitySummary struct {
	SlotsInWindow int
	HoursInWindow float64
	NextSlot      *time.Time
	WindowStart   time.Time
	WindowEnd     time.Time
}
