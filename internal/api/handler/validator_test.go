package handler

import (
	"strings"
	"testing"
)

func TestValidator_MessagesUseJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&debtRequest{Type: "gift", Amount: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"type must be one of: owed_to_me i_owe",
		"person_name is required",
		"amount must be greater than 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}

func TestValidator_OptionalPointers(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&updateSessionRequest{}); err != nil {
		t.Fatalf("empty update should pass validation: %v", err)
	}
	short := "ab"
	if err := v.Validate(&updateSessionRequest{Name: &short}); err == nil ||
		!strings.Contains(err.Error(), "name must be at least 3 characters") {
		t.Fatalf("unexpected error %v", err)
	}
}
