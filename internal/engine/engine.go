// Package engine computes the filtered, faceted offer view served to the
// client. Everything here is a pure function of (snapshot, criteria): no
// mutation of the snapshot, no I/O, deterministic output.
package engine

import (
	"github.com/david/offers-bff/internal/models"
)

// Criteria is the client's filter selection from the /fetch request body.
type Criteria struct {
	TypeFilter     *string             `json:"typeFilter"`
	QuestionFilter map[string][]string `json:"questionFilter"`
	ShowAllFilters bool                `json:"showAllFilters"`
	ShowLimit      int                 `json:"showLimit"`
}

// FilterOption is one selectable facet option with the number of offers it
// would match on its own.
type FilterOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// OptionGroup groups district options by region for district facets.
type OptionGroup struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Count   int      `json:"count"`
}

// Filter is one facet: a question with its countable options, and for
// district questions additionally the per-region groups.
type Filter struct {
	ID           string              `json:"id"`
	Type         models.QuestionType `json:"type"`
	Question     string              `json:"question"`
	OptionGroups []OptionGroup       `json:"optionGroups,omitempty"`
	Options      []FilterOption      `json:"options"`
}

// Response is the /fetch payload.
type Response struct {
	TotalOfferCount        int                `json:"totalOfferCount"`
	AvailableTypes         map[string]int     `json:"availableTypes"`
	Filters                []Filter           `json:"filters"`
	LessFilters            []Filter           `json:"lessFilters"`
	ShownFilters           []Filter           `json:"shownFilters"`
	OfferTypes             []models.OfferType `json:"offerTypes"`
	OffersToShow           []models.Offer     `json:"offersToShow"`
	OffersToShowTotalCount int                `json:"offersToShowTotalCount"`
}

// index holds per-computation lookups over one snapshot.
type index struct {
	snapshot  *models.Snapshot
	questions map[string]models.QuestionDefinition
}

func newIndex(snapshot *models.Snapshot) *index {
	questions := make(map[string]models.QuestionDefinition)
	for _, offerType := range snapshot.OfferTypes {
		for _, question := range offerType.Questions {
			questions[question.ID] = question
		}
	}
	return &index{snapshot: snapshot, questions: questions}
}

// ComputeResponse derives the full response payload for one request.
func ComputeResponse(snapshot *models.Snapshot, criteria Criteria) Response {
	idx := newIndex(snapshot)

	typeFilteredOffers := make([]models.Offer, 0, len(snapshot.Offers))
	for _, offer := range snapshot.Offers {
		if criteria.TypeFilter == nil || offer.Type.ID == *criteria.TypeFilter {
			typeFilteredOffers = append(typeFilteredOffers, offer)
		}
	}

	// Type tab totals are counted over all offers, not the type-filtered set.
	availableTypes := make(map[string]int)
	for _, offer := range snapshot.Offers {
		availableTypes[offer.Type.ID]++
	}

	filters := idx.buildFacets(criteria.TypeFilter, typeFilteredOffers)

	lessFilters := make([]Filter, 0, len(filters))
	additionalFilters := make([]Filter, 0, len(filters))
	for _, filter := range filters {
		if filter.Type == models.QuestionTypeDistrict {
			lessFilters = append(lessFilters, filter)
		} else {
			additionalFilters = append(additionalFilters, filter)
		}
	}
	shownFilters := make([]Filter, 0, len(filters))
	shownFilters = append(shownFilters, lessFilters...)
	if criteria.ShowAllFilters {
		shownFilters = append(shownFilters, additionalFilters...)
	}

	filteredOffers := idx.filterOffers(typeFilteredOffers, criteria.QuestionFilter)

	// Offers without a single answered parameter are incomplete; they stay in
	// the totals but are never listed.
	withParameters := make([]models.Offer, 0, len(filteredOffers))
	for _, offer := range filteredOffers {
		if len(offer.Parameters) > 0 {
			withParameters = append(withParameters, offer)
		}
	}

	limit := criteria.ShowLimit
	if limit < 0 {
		limit = 0
	}
	if limit > len(withParameters) {
		limit = len(withParameters)
	}

	return Response{
		TotalOfferCount:        len(snapshot.Offers),
		AvailableTypes:         availableTypes,
		Filters:                filters,
		LessFilters:            lessFilters,
		ShownFilters:           shownFilters,
		OfferTypes:             snapshot.OfferTypes,
		OffersToShow:           withParameters[:limit],
		OffersToShowTotalCount: len(withParameters),
	}
}
