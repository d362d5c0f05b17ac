package validator

import "testing"

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Decision string `json:"decision" validate:"required,oneof=verified rejected"`
	Comment  string `json:"comment" validate:"max=5"`
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&sampleRequest{Email: "not-an-email", Decision: "maybe", Comment: "too long"})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	got := v.FormatValidationErrors(err)
	want := map[string]string{
		"email":    "email must be a valid email address",
		"decision": "decision must be one of: verified rejected",
		"comment":  "comment must be at most 5 characters",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Fatalf("%s: expected %q, got %q", field, msg, got[field])
		}
	}
}

func TestValidatePassesValidRequest(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&sampleRequest{Email: "a@example.com", Decision: "verified"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
