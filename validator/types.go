package validator

import (
	"fmt"
	"strings"
)

/* ========================================================================
 * Validator Types
 * ======================================================================== */

const (
	// tagCustom is the struct tag carrying per-rule error messages.
	tagCustom = "error_msg"
	// ruleSeparator splits rule:message pairs.
	ruleSeparator = "|"
	// keyValueSep splits a rule name from its message.
	keyValueSep = ":"
)

// ValidationError groups validation failures by field.
//
// Example:
//
//	type AccountRequest struct {
//	    AccountNameOwner string `validate:"required,min=3" error_msg:"required:account name is required|min:account name too short"`
//	}
type ValidationError struct {
	Errors map[string][]string
}

// Error implements error.
func (v ValidationError) Error() string {
	var sb strings.Builder
	for field, msgs := range v.Errors {
		sb.WriteString(fmt.Sprintf("%s: %s; ", field, strings.Join(msgs, ", ")))
	}
	return sb.String()
}

// HasErrors reports whether any field failed.
func (v ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add appends a message for a field.
func (v *ValidationError) Add(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string][]string)
	}
	v.Errors[field] = append(v.Errors[field], message)
}

// Get returns the messages for a field.
func (v *ValidationError) Get(field string) []string {
	if v.Errors == nil {
		return nil
	}
	return v.Errors[field]
}
