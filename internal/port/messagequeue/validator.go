package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects only need to be
// valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	switch subject {
	case SubjectPlanCompleted:
		var p PlanCompletedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		if p.SessionID == "" {
			return fmt.Errorf("schema validation failed for %s: %w", subject, errSessionRequired)
		}
	case SubjectPlanFailed:
		var p PlanFailedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		if p.SessionID == "" {
			return fmt.Errorf("schema validation failed for %s: %w", subject, errSessionRequired)
		}
	}
	return nil
}

var errSessionRequired = errors.New("session_id is required")
