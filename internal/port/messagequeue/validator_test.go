package messagequeue

import (
	"strings"
	"testing"
)

func TestValidatePlanCompleted(t *testing.T) {
	data := []byte(`{"session_id":"voyage-abc","country":"Japan","cities":["Kyoto","Osaka"],"duration_ms":1200}`)
	if err := Validate(SubjectPlanCompleted, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePlanFailed(t *testing.T) {
	data := []byte(`{"session_id":"voyage-abc","country":"Japan","kind":"model_unavailable","error":"timeout"}`)
	if err := Validate(SubjectPlanFailed, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	err := Validate(SubjectPlanCompleted, []byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidateWrongFieldType(t *testing.T) {
	err := Validate(SubjectPlanCompleted, []byte(`{"session_id":"s","cities":"Kyoto"}`))
	if err == nil {
		t.Fatal("expected schema error for string cities")
	}
}

func TestValidateMissingSession(t *testing.T) {
	for _, subject := range []string{SubjectPlanCompleted, SubjectPlanFailed} {
		if err := Validate(subject, []byte(`{"country":"Japan"}`)); err == nil {
			t.Errorf("%s: expected error for missing session_id", subject)
		}
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	if err := Validate("plans.unknown", []byte(`{"anything":true}`)); err != nil {
		t.Fatalf("unknown subject should pass, got %v", err)
	}
}
