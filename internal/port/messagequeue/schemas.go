package messagequeue

// PlanCompletedPayload is the schema for plans.completed messages.
type PlanCompletedPayload struct {
	SessionID  string   `json:"session_id"`
	Country    string   `json:"country"`
	Cities     []string `json:"cities"`
	DurationMS int64    `json:"duration_ms"`
}

// PlanFailedPayload is the schema for plans.failed messages.
type PlanFailedPayload struct {
	SessionID  string `json:"session_id"`
	Country    string `json:"country"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}
