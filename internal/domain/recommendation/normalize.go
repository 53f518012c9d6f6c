package recommendation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Strob0t/VoyageMind/internal/domain"
)

// matcher inspects a parsed reply and returns the candidate record list.
// matched is false when the matcher does not recognize the value's shape.
type matcher struct {
	name  string
	match func(v any) (list any, matched bool)
}

// bareList matches a reply that is itself a JSON array.
var bareList = matcher{
	name: "list",
	match: func(v any) (any, bool) {
		if l, ok := v.([]any); ok {
			return l, true
		}
		return nil, false
	},
}

// objectKey matches a JSON object holding the list under key.
func objectKey(key string) matcher {
	return matcher{
		name: key,
		match: func(v any) (any, bool) {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, false
			}
			l, ok := obj[key]
			return l, ok
		},
	}
}

// Shape describes a target record list: its exact size and the ordered
// matchers used to locate the list inside a reply.
type Shape struct {
	Name     string
	Size     int
	matchers []matcher
}

var (
	// SpecialistShape accepts a bare list, {"recommendations": [...]} or {"cities": [...]}.
	SpecialistShape = Shape{
		Name:     "specialist",
		Size:     SpecialistSize,
		matchers: []matcher{bareList, objectKey("recommendations"), objectKey("cities")},
	}

	// FinalShape additionally accepts {"result": [...]}.
	FinalShape = Shape{
		Name:     "final",
		Size:     FinalSize,
		matchers: []matcher{bareList, objectKey("recommendations"), objectKey("cities"), objectKey("result")},
	}
)

// extract runs the matchers in order and returns the list of raw records,
// checking the exact length.
func (s Shape) extract(v any) ([]any, error) {
	for _, m := range s.matchers {
		raw, ok := m.match(v)
		if !ok {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, domain.NewSchemaValidation(m.nameField(), -1, "expected a list of recommendations")
		}
		if len(list) != s.Size {
			return nil, domain.NewSchemaValidation(m.nameField(), -1,
				fmt.Sprintf("expected exactly %d recommendations, got %d", s.Size, len(list)))
		}
		return list, nil
	}
	return nil, domain.NewUnrecognizedResponseShape(v)
}

// nameField is the key a violation is reported under; bare lists have none.
func (m matcher) nameField() string {
	if m.name == "list" {
		return ""
	}
	return m.name
}

// NormalizeSpecialist coerces a parsed specialist reply into a SpecialistSet.
func NormalizeSpecialist(v any) (SpecialistSet, error) {
	var out SpecialistSet
	list, err := SpecialistShape.extract(v)
	if err != nil {
		return out, err
	}
	for i, item := range list {
		obj, err := record(item, i)
		if err != nil {
			return out, err
		}
		city, err := requiredText(obj, "city", i)
		if err != nil {
			return out, err
		}
		score, err := confidence(obj, i)
		if err != nil {
			return out, err
		}
		reason, err := requiredText(obj, "reason", i)
		if err != nil {
			return out, err
		}
		out[i] = Recommendation{City: city, ConfidenceScore: score, Reason: reason}
	}
	return out, nil
}

// NormalizeFinal coerces a parsed aggregator reply into a FinalSet.
func NormalizeFinal(v any) (FinalSet, error) {
	var out FinalSet
	list, err := FinalShape.extract(v)
	if err != nil {
		return out, err
	}
	for i, item := range list {
		obj, err := record(item, i)
		if err != nil {
			return out, err
		}
		city, err := requiredText(obj, "city", i)
		if err != nil {
			return out, err
		}
		reason, err := requiredText(obj, "reason", i)
		if err != nil {
			return out, err
		}
		out[i] = FinalRecommendation{City: city, Reason: reason}
	}
	return out, nil
}

func record(item any, index int) (map[string]any, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return nil, domain.NewSchemaValidation("", index, "expected an object")
	}
	return obj, nil
}

// requiredText returns the trimmed string at key, rejecting absent,
// non-string and blank values.
func requiredText(obj map[string]any, key string, index int) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", domain.NewSchemaValidation(key, index, "field is required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", domain.NewSchemaValidation(key, index, "field must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.NewSchemaValidation(key, index, "field cannot be empty")
	}
	return s, nil
}

// confidence returns the confidence_score at obj, which must be a number
// in [0, 1].
func confidence(obj map[string]any, index int) (float64, error) {
	const key = "confidence_score"
	raw, ok := obj[key]
	if !ok {
		return 0, domain.NewSchemaValidation(key, index, "field is required")
	}
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, domain.NewSchemaValidation(key, index, "field must be a number")
		}
		f = parsed
	default:
		return 0, domain.NewSchemaValidation(key, index, "field must be a number")
	}
	if f < 0 || f > 1 {
		return 0, domain.NewSchemaValidation(key, index, fmt.Sprintf("must be between 0.0 and 1.0, got %v", f))
	}
	return f, nil
}
