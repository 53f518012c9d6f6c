// Package event defines the progress events a plan emits while it runs.
package event

// Event types pushed to realtime clients.
const (
	TypeAgentStatus = "agent.status"
	TypePlanStatus  = "plan.status"
)

// Status is the lifecycle state of a persona or plan.
type Status string

const (
	StatusPending  Status = "pending"
	StatusWorking  Status = "working"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// AgentStatus reports progress of one persona within a plan.
type AgentStatus struct {
	SessionID  string `json:"session_id"`
	Persona    string `json:"persona"`
	Role       string `json:"role"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// PlanStatus reports progress of the plan as a whole.
type PlanStatus struct {
	SessionID  string   `json:"session_id"`
	Country    string   `json:"country"`
	Status     Status   `json:"status"`
	Cities     []string `json:"cities,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
}
