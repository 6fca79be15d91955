package engine

import (
	"sort"

	"github.com/david/offers-bff/internal/models"
)

// facetQuestionTypes are the question types that can be offered as facets.
// Free-text, numeric and date questions never produce one.
var facetQuestionTypes = map[models.QuestionType]bool{
	models.QuestionTypeCheckbox: true,
	models.QuestionTypeRadio:    true,
	models.QuestionTypeDistrict: true,
}

// buildFacets computes the facet list for the selected offer type. With no
// type selected there are no facets. Every option's count is a what-if: the
// number of type-filtered offers that would match if that option were the
// sole selection for its question. Zero-count options and groups are dropped,
// the rest sorted by count descending (stable, so equal counts keep their
// snapshot order). Questions left without options are dropped entirely.
func (idx *index) buildFacets(typeFilter *string, typeFilteredOffers []models.Offer) []Filter {
	filters := make([]Filter, 0)
	if typeFilter == nil {
		return filters
	}

	var offerType *models.OfferType
	for i := range idx.snapshot.OfferTypes {
		if idx.snapshot.OfferTypes[i].ID == *typeFilter {
			offerType = &idx.snapshot.OfferTypes[i]
			break
		}
	}
	if offerType == nil {
		return filters
	}

	for _, question := range offerType.Questions {
		if !facetQuestionTypes[question.Type] {
			continue
		}

		filter := Filter{
			ID:       question.ID,
			Type:     question.Type,
			Question: question.Question,
		}

		if question.Type == models.QuestionTypeDistrict {
			filter.OptionGroups = idx.countGroups(question.ID, regionGroups(idx.snapshot.Districts), typeFilteredOffers)
			filter.Options = idx.countOptions(question.ID, districtOptions(idx.snapshot.Districts), typeFilteredOffers)
		} else {
			filter.Options = idx.countOptions(question.ID, questionOptions(question), typeFilteredOffers)
		}

		if len(filter.Options) == 0 {
			continue
		}
		filters = append(filters, filter)
	}

	return filters
}

// countOptions fills in what-if counts, drops empty options and sorts by
// count descending.
func (idx *index) countOptions(questionID string, options []FilterOption, offers []models.Offer) []FilterOption {
	counted := make([]FilterOption, 0, len(options))
	for _, option := range options {
		option.Count = len(idx.filterOffers(offers, map[string][]string{questionID: {option.ID}}))
		if option.Count == 0 {
			continue
		}
		counted = append(counted, option)
	}
	sort.SliceStable(counted, func(i, j int) bool {
		return counted[i].Count > counted[j].Count
	})
	return counted
}

// countGroups does the same for region groups; a group's count uses all of
// its district ids as the accepted set.
func (idx *index) countGroups(questionID string, groups []OptionGroup, offers []models.Offer) []OptionGroup {
	counted := make([]OptionGroup, 0, len(groups))
	for _, group := range groups {
		group.Count = len(idx.filterOffers(offers, map[string][]string{questionID: group.Options}))
		if group.Count == 0 {
			continue
		}
		counted = append(counted, group)
	}
	sort.SliceStable(counted, func(i, j int) bool {
		return counted[i].Count > counted[j].Count
	})
	return counted
}

// regionGroups enumerates every known district grouped by region, regions in
// order of first appearance.
func regionGroups(districts []models.District) []OptionGroup {
	groups := make([]OptionGroup, 0)
	byRegion := make(map[string]int)
	for _, district := range districts {
		if i, ok := byRegion[district.Region.ID]; ok {
			groups[i].Options = append(groups[i].Options, district.ID)
			continue
		}
		byRegion[district.Region.ID] = len(groups)
		groups = append(groups, OptionGroup{
			ID:      district.Region.ID,
			Label:   district.Region.Name,
			Options: []string{district.ID},
		})
	}
	return groups
}

func districtOptions(districts []models.District) []FilterOption {
	options := make([]FilterOption, 0, len(districts))
	for _, district := range districts {
		options = append(options, FilterOption{ID: district.ID, Label: district.Name})
	}
	return options
}

func questionOptions(question models.QuestionDefinition) []FilterOption {
	options := make([]FilterOption, 0, len(question.Options))
	for _, option := range question.Options {
		options = append(options, FilterOption{ID: option.ID, Label: option.Label})
	}
	return options
}
