package engine

import (
	"github.com/david/offers-bff/internal/models"
)

// rawValues collects an offer's answer strings for one question: multi-select
// values first, then the scalar value when present. An absent parameter
// yields nothing.
func rawValues(offer models.Offer, questionID string) []string {
	for _, parameter := range offer.Parameters {
		if parameter.Question.ID != questionID {
			continue
		}
		values := make([]string, 0, len(parameter.Values)+1)
		for _, value := range parameter.Values {
			values = append(values, value.Value)
		}
		if parameter.Value != "" {
			values = append(values, parameter.Value)
		}
		return values
	}
	return nil
}

// resolveOptionIDs maps raw answer strings to option ids. District answers
// are district names resolved against the snapshot's district list; all other
// answers are option values resolved against the question's own options.
// Values that resolve to nothing are dropped, never treated as a wildcard.
func (idx *index) resolveOptionIDs(question models.QuestionDefinition, values []string) []string {
	ids := make([]string, 0, len(values))
	for _, value := range values {
		if id, ok := idx.resolveOptionID(question, value); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (idx *index) resolveOptionID(question models.QuestionDefinition, value string) (string, bool) {
	if question.Type == models.QuestionTypeDistrict {
		for _, district := range idx.snapshot.Districts {
			if district.Name == value {
				return district.ID, true
			}
		}
		return "", false
	}
	for _, option := range question.Options {
		if option.Value == value {
			return option.ID, true
		}
	}
	return "", false
}

// matchesFilter reports whether an offer satisfies every question constraint:
// AND across questions, OR within a question's accepted options. A question
// with an empty accepted set is no constraint at all.
func (idx *index) matchesFilter(offer models.Offer, questionFilter map[string][]string) bool {
	for questionID, accepted := range questionFilter {
		if len(accepted) == 0 {
			continue
		}
		var resolved []string
		if question, ok := idx.questions[questionID]; ok {
			resolved = idx.resolveOptionIDs(question, rawValues(offer, questionID))
		}
		if !containsAny(resolved, accepted) {
			return false
		}
	}
	return true
}

func (idx *index) filterOffers(offers []models.Offer, questionFilter map[string][]string) []models.Offer {
	filtered := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if idx.matchesFilter(offer, questionFilter) {
			filtered = append(filtered, offer)
		}
	}
	return filtered
}

func containsAny(haystack, needles []string) bool {
	for _, needle := range needles {
		for _, candidate := range haystack {
			if candidate == needle {
				return true
			}
		}
	}
	return false
}
