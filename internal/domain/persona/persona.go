// Package persona defines the fixed roles the planner consults.
package persona

// Role identifies a persona.
type Role string

const (
	RoleHistoryCulture Role = "history_culture"
	RoleFoodCuisine    Role = "food_cuisine"
	RoleTransportation Role = "transportation"
	RoleAggregator     Role = "aggregator"
)

// Persona is the static metadata of one agent: its display name, the user
// prompt template and the system prompt resource.
type Persona struct {
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Template     string `json:"template"`
	SystemPrompt string `json:"system_prompt"`
}

// IsSpecialist reports whether the persona produces a three-city set.
func (p Persona) IsSpecialist() bool {
	return p.Role != RoleAggregator
}

var (
	HistoryCulture = Persona{
		Role:         RoleHistoryCulture,
		Name:         "HistoryCulture",
		Template:     "history_culture.tmpl",
		SystemPrompt: "history_culture_system.txt",
	}
	FoodCuisine = Persona{
		Role:         RoleFoodCuisine,
		Name:         "FoodCuisine",
		Template:     "food_cuisine.tmpl",
		SystemPrompt: "food_cuisine_system.txt",
	}
	Transportation = Persona{
		Role:         RoleTransportation,
		Name:         "Transportation",
		Template:     "transportation.tmpl",
		SystemPrompt: "transportation_system.txt",
	}
	Aggregator = Persona{
		Role:         RoleAggregator,
		Name:         "Aggregator",
		Template:     "aggregator.tmpl",
		SystemPrompt: "aggregator_system.txt",
	}
)

// Specialists returns the three specialist personas in planning order.
func Specialists() []Persona {
	return []Persona{HistoryCulture, FoodCuisine, Transportation}
}

// All returns every built-in persona, specialists first.
func All() []Persona {
	return append(Specialists(), Aggregator)
}
