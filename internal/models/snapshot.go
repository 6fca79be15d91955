package models

// QuestionType enumerates the answer widgets an offer type's question can use.
// Only checkbox, radio and district questions ever become facets.
type QuestionType string

const (
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeCheckbox QuestionType = "checkbox"
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeNumber   QuestionType = "number"
	QuestionTypeDate     QuestionType = "date"
	QuestionTypeDistrict QuestionType = "district"
)

// Snapshot is the complete upstream dataset as of the last successful refresh.
// It is built once per refresh and never mutated afterwards; a new refresh
// replaces the whole thing.
type Snapshot struct {
	OfferTypes []OfferType `json:"offerTypes"`
	Districts  []District  `json:"districts"`
	Languages  []Language  `json:"languages"`
	Offers     []Offer     `json:"offers"`
}

type OfferType struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	InfoText          string               `json:"infoText"`
	NeedsVerification bool                 `json:"needsVerification"`
	Questions         []QuestionDefinition `json:"questions"`
}

type QuestionDefinition struct {
	ID       string           `json:"id"`
	Question string           `json:"question"`
	Type     QuestionType     `json:"type"`
	Required bool             `json:"required"`
	Options  []QuestionOption `json:"options"`
}

type QuestionOption struct {
	ID                   string `json:"id"`
	Value                string `json:"value"`
	Label                string `json:"label"`
	RequireSpecification bool   `json:"requireSpecification"`
}

type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type District struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region Region `json:"region"`
}

type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TypeRef and QuestionRef are id-only references, mirroring the upstream
// payload shape.
type TypeRef struct {
	ID string `json:"id"`
}

type QuestionRef struct {
	ID string `json:"id"`
}

// Offer is a single listing. AllowReaction is derived during the refresh:
// true iff the owning offer type does not require volunteer verification.
type Offer struct {
	ID            string      `json:"id"`
	Code          string      `json:"code"`
	AllowReaction bool        `json:"allowReaction"`
	Type          TypeRef     `json:"type"`
	Parameters    []Parameter `json:"parameters"`
}

// Parameter is an offer's answer to one of its type's questions. Single-select
// answers live in Value, multi-select answers in Values.
type Parameter struct {
	ID            string           `json:"id"`
	Question      QuestionRef      `json:"question"`
	Value         string           `json:"value"`
	Specification string           `json:"specification,omitempty"`
	Values        []ParameterValue `json:"values"`
}

type ParameterValue struct {
	ID            string `json:"id"`
	Value         string `json:"value"`
	Specification string `json:"specification"`
}
