package api

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"

	"github.com/david/offers-bff/internal/engine"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// criteriaSchema is the /fetch body contract. The upstream app used to trust
// the caller's shape; here malformed criteria are rejected with a structured
// error instead.
const criteriaSchema = `{
	"type": "object",
	"properties": {
		"typeFilter": {"type": ["string", "null"]},
		"questionFilter": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {"type": "string"}
			}
		},
		"showAllFilters": {"type": "boolean"},
		"showLimit": {"type": "integer", "minimum": 0}
	},
	"required": ["typeFilter", "questionFilter", "showAllFilters", "showLimit"],
	"additionalProperties": false
}`

var criteriaSchemaLoader = gojsonschema.NewStringLoader(criteriaSchema)

// BindCriteria reads and validates a /fetch request body.
func BindCriteria(body io.Reader) (engine.Criteria, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return engine.Criteria{}, fmt.Errorf("reading request body: %w", err)
	}
	return ParseCriteria(raw)
}

// ParseCriteria validates raw JSON against the criteria schema and decodes it.
func ParseCriteria(raw []byte) (engine.Criteria, error) {
	result, err := gojsonschema.Validate(criteriaSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return engine.Criteria{}, fmt.Errorf("invalid request body: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return engine.Criteria{}, fmt.Errorf("invalid filter criteria: %s", strings.Join(details, "; "))
	}

	var criteria engine.Criteria
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return engine.Criteria{}, fmt.Errorf("decoding filter criteria: %w", err)
	}
	return criteria, nil
}
