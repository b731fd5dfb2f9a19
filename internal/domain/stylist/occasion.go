// Package stylist picks outfits from the catalog for an occasion.
//
// Selection is a pure function of the catalog order and the occasion's tag
// table. The score attached to every result is decorative: it is drawn from a
// fixed range on every call and says nothing about outfit quality.
package stylist

import (
	"sort"
	"strings"

	apperrors "stylesync-backend/internal/errors"
)

// Occasion is what the shopper is dressing for.
type Occasion string

const (
	OccasionCasual Occasion = "casual"
	OccasionOffice Occasion = "office"
	OccasionParty  Occasion = "party"
	OccasionFormal Occasion = "formal"
	OccasionSummer Occasion = "summer"
	OccasionWinter Occasion = "winter"
)

var occasionTags = map[Occasion][]string{
	OccasionCasual: {"casual", "everyday", "comfortable"},
	OccasionOffice: {"office", "professional", "formal"},
	OccasionParty:  {"party", "evening", "trendy"},
	OccasionFormal: {"formal", "elegant"},
	OccasionSummer: {"summer", "lightweight"},
	OccasionWinter: {"winter", "cozy"},
}

// Occasions lists the known occasions in display order.
func Occasions() []Occasion {
	return []Occasion{OccasionCasual, OccasionOffice, OccasionParty, OccasionFormal, OccasionSummer, OccasionWinter}
}

// ParseOccasion accepts only known occasions.
func ParseOccasion(s string) (Occasion, error) {
	o := Occasion(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := occasionTags[o]; !ok {
		return "", apperrors.Validation(apperrors.CodeOccasionInvalid, "unknown occasion").
			WithDetails(s).
			Build()
	}
	return o, nil
}

// Tags returns the matching tags for o, sorted. Unknown occasions have none.
func (o Occasion) Tags() []string {
	tags := append([]string(nil), occasionTags[o]...)
	sort.Strings(tags)
	return tags
}

func (o Occasion) tagSet() map[string]struct{} {
	tags := occasionTags[o]
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
