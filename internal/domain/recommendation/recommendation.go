// Package recommendation defines the city recommendation value objects and
// the normalizer that coerces loosely shaped model replies into them.
package recommendation

// SpecialistSize is the number of recommendations a specialist must return.
const SpecialistSize = 3

// FinalSize is the number of recommendations in the aggregated shortlist.
const FinalSize = 2

// Recommendation is a single city suggested by a specialist persona.
type Recommendation struct {
	City            string  `json:"city"`
	ConfidenceScore float64 `json:"confidence_score"`
	Reason          string  `json:"reason"`
}

// SpecialistSet is the exact-length output of one specialist.
type SpecialistSet [SpecialistSize]Recommendation

// Cities returns the city names in order.
func (s SpecialistSet) Cities() []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].City
	}
	return out
}

// Slice returns the set as a slice, for template bindings.
func (s SpecialistSet) Slice() []Recommendation {
	return s[:]
}

// FinalRecommendation is one entry of the aggregated shortlist.
type FinalRecommendation struct {
	City   string `json:"city"`
	Reason string `json:"reason"`
}

// FinalSet is the exact-length aggregated shortlist.
type FinalSet [FinalSize]FinalRecommendation

// Cities returns the city names in order.
func (s FinalSet) Cities() []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].City
	}
	return out
}
