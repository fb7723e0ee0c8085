package validator

import (
	"strings"
	"testing"
)

type renameRequest struct {
	OldName string `validate:"required,min=3,max=40" error_msg:"required:old account name is required|min:old account name too short"`
	NewName string `validate:"required,min=3,max=40" error_msg:"required:new account name is required"`
}

type transactionRequest struct {
	AccountNameOwner string `validate:"required,min=3,max=40"`
	Amount           string `validate:"required"`
	Nested           *renameRequest
}

func TestValidatePasses(t *testing.T) {
	v := New()
	req := &renameRequest{OldName: "chase_brian", NewName: "chase_brian_new"}
	if err := v.Validate(req); err != nil {
		t.Fatalf("expected valid request: %v", err)
	}
}

func TestValidateCustomMessages(t *testing.T) {
	v := New()
	err := v.Validate(&renameRequest{})
	if err == nil {
		t.Fatalf("expected validation failure")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	msgs := ve.Get("OldName")
	if len(msgs) != 1 || msgs[0] != "old account name is required" {
		t.Fatalf("expected custom message, got %v", msgs)
	}
	msgs = ve.Get("NewName")
	if len(msgs) != 1 || msgs[0] != "new account name is required" {
		t.Fatalf("expected custom message, got %v", msgs)
	}
}

func TestValidateFallsBackToDefaultMessage(t *testing.T) {
	v := New()
	err := v.Validate(&renameRequest{OldName: "ab", NewName: "ok_name"})
	if err == nil {
		t.Fatalf("expected validation failure")
	}

	ve := err.(*ValidationError)
	msgs := ve.Get("OldName")
	if len(msgs) != 1 || msgs[0] != "old account name too short" {
		t.Fatalf("expected min message, got %v", msgs)
	}
}

func TestValidateNestedStruct(t *testing.T) {
	v := New()
	err := v.Validate(&transactionRequest{
		AccountNameOwner: "chase_brian",
		Amount:           "12.34",
		Nested:           &renameRequest{OldName: "chase_brian"},
	})
	if err == nil {
		t.Fatalf("expected nested validation failure")
	}

	ve := err.(*ValidationError)
	found := false
	for field := range ve.Errors {
		if strings.HasPrefix(field, "Nested.") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected nested field errors, got %v", ve.Errors)
	}
}

func TestValidateNilAndNonStruct(t *testing.T) {
	v := New()
	if err := v.Validate(nil); err != nil {
		t.Fatalf("nil must validate clean: %v", err)
	}
	if err := v.Validate(42); err != nil {
		t.Fatalf("non-struct must validate clean: %v", err)
	}
}
