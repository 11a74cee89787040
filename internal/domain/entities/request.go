package entities

import (
	"strings"
	"time"
)

// DemandType categorizes the shape of an incoming service request.
type DemandType string

const (
	DemandTypeIndividual DemandType = "individual"
	DemandTypeCouple     DemandType = "couple"
	DemandTypeFamily     DemandType = "family"
	DemandTypeGroup      DemandType = "group"
	DemandTypeNone       DemandType = "none"
)

// ClienteleCategory is an age-derived or group-type bucket used for
// specialty matching.
type ClienteleCategory string

const (
	ClienteleChildren    ClienteleCategory = "children"
	ClienteleAdolescents ClienteleCategory = "adolescents"
	ClienteleAdults      ClienteleCategory = "adults"
	ClienteleSeniors     ClienteleCategory = "seniors"
	ClienteleCouples     ClienteleCategory = "couples"
	ClienteleFamilies    ClienteleCategory = "families"
	ClienteleGroups      ClienteleCategory = "groups"
)

// Participant is a person attached to a request. Only the birth date is
// needed by the matching pipeline; it drives the age bucket derivation.
type Participant struct {
	ID        string
	BirthDate *time.Time
}

// ServiceRequest is an immutable snapshot of an incoming demand for one
// matching run.
type ServiceRequest struct {
	ID           string
	DemandType   DemandType
	Urgency      string
	MotifKeys    []string
	Reason       string
	Description  string
	OtherText    string
	Notes        string
	LegalContext bool
	Participants []Participant

	// ClienteleCategories is derived from participant birth dates and the
	// demand type, not stored with the request record.
	ClienteleCategories []ClienteleCategory

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FreeText concatenates every free-text field of the request for text
// classification.
func (r *ServiceRequest) FreeText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{r.Reason, r.Description, r.OtherText, r.Notes} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, " ")
}

// DeriveClientele computes the clientele categories for the request from
// participant birth dates and the demand type. Participants without a
// birth date contribute nothing.
func (r *ServiceRequest) DeriveClientele(now time.Time) {
	seen := make(map[ClienteleCategory]bool)
	var categories []ClienteleCategory

	add := func(c ClienteleCategory) {
		if c != "" && !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}

	for _, p := range r.Participants {
		if p.BirthDate == nil {
			continue
		}
		add(AgeCategory(*p.BirthDate, now))
	}
	add(r.DemandType.ClienteleCategory())

	r.ClienteleCategories = categories
}

// AgeCategory buckets an age into a clientele category. Age is whole years
// between the birth date and now, adjusted when the anniversary has not yet
// occurred this year.
func AgeCategory(birthDate, now time.Time) ClienteleCategory {
	years := now.Year() - birthDate.Year()
	anniversary := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		years--
	}

	switch {
	case years < 0:
		return ""
	case years <= 12:
		return ClienteleChildren
	case years <= 17:
		return ClienteleAdolescents
	case years <= 64:
		return ClienteleAdults
	default:
		return ClienteleSeniors
	}
}

// ClienteleCategory maps couple/family/group demand types to their
// group-type clientele bucket. Individual and none map to nothing.
func (d DemandType) ClienteleCategory() ClienteleCategory {
	switch d {
	case DemandTypeCouple:
		return ClienteleCouples
	case DemandTypeFamily:
		return ClienteleFamilies
	case DemandTypeGroup:
		return ClienteleGroups
	default:
		return ""
	}
}

// RequiredSpecialtyCode returns the specialty a professional must hold to
// serve this demand type, or "" when no specialty is required.
func (d DemandType) RequiredSpecialtyCode() string {
	return string(d.ClienteleCategory())
}
