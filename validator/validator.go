package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

/* ========================================================================
 * Validator
 * ========================================================================
 * Struct validation with per-rule custom messages from an error_msg
 * tag, nested struct traversal, and type metadata caching.
 *
 * Usage:
 *     type RenameRequest struct {
 *         OldName string `validate:"required,min=3,max=40" error_msg:"required:old account name is required"`
 *         NewName string `validate:"required,min=3,max=40" error_msg:"required:new account name is required"`
 *     }
 *     v := validator.New()
 *     if err := v.Validate(&req); err != nil { ... }
 * ======================================================================== */

// Validator validates structs with custom error messages.
type Validator struct {
	validator     *validator.Validate
	typeCache     *typeCache
	errorMsgCache map[string]map[string]string
	mu            sync.RWMutex
}

// New creates a Validator.
func New() *Validator {
	return &Validator{
		validator:     validator.New(),
		typeCache:     newTypeCache(),
		errorMsgCache: make(map[string]map[string]string),
	}
}

// Validate validates a struct, returning a *ValidationError with
// messages grouped by field when anything fails.
func (v *Validator) Validate(s any) error {
	if s == nil {
		return nil
	}

	validationErrors := &ValidationError{Errors: make(map[string][]string)}
	v.validateRecursive(s, "", validationErrors)

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

func (v *Validator) validateRecursive(s any, prefix string, validationErrors *ValidationError) {
	value := reflect.ValueOf(s)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return
	}

	fields := v.typeCache.getFieldsInfo(value.Type())

	for _, fieldInfo := range fields {
		fieldValue := value.FieldByName(fieldInfo.name)
		fullFieldName := fieldInfo.name
		if prefix != "" {
			fullFieldName = fmt.Sprintf("%s.%s", prefix, fieldInfo.name)
		}

		// Nested structs with their own validate tags are handled by
		// the field-level Var call below; plain nested structs recurse.
		if fieldInfo.isStruct && fieldInfo.validateTag == "" {
			if fieldInfo.isPtr {
				if fieldValue.IsNil() {
					continue
				}
				fieldValue = fieldValue.Elem()
			}
			v.validateRecursive(fieldValue.Interface(), fullFieldName, validationErrors)
			continue
		}

		if fieldInfo.validateTag == "" {
			continue
		}

		err := v.validator.Var(fieldValue.Interface(), fieldInfo.validateTag)
		if err == nil {
			continue
		}

		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			validationErrors.Add(fullFieldName, err.Error())
			continue
		}

		for _, fieldErr := range validationErrs {
			message := v.getCachedErrorMessage(fieldInfo.errorMsgTag, fieldErr.Tag())
			if message == "" {
				message = fieldErr.Error()
			}
			validationErrors.Add(fullFieldName, message)
		}
	}
}

func (v *Validator) getCachedErrorMessage(errorMsgTag, rule string) string {
	if errorMsgTag == "" {
		return ""
	}

	v.mu.RLock()
	if ruleMap, exists := v.errorMsgCache[errorMsgTag]; exists {
		if msg, found := ruleMap[rule]; found {
			v.mu.RUnlock()
			return msg
		}
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if ruleMap, exists := v.errorMsgCache[errorMsgTag]; exists {
		if msg, found := ruleMap[rule]; found {
			return msg
		}
	}

	ruleMap := v.parseErrorMessageTag(errorMsgTag)
	v.errorMsgCache[errorMsgTag] = ruleMap
	return ruleMap[rule]
}

// parseErrorMessageTag parses "required:name is required|min:too short".
func (v *Validator) parseErrorMessageTag(errorMsgTag string) map[string]string {
	ruleMap := make(map[string]string)
	for _, ruleMessage := range strings.Split(errorMsgTag, ruleSeparator) {
		parts := strings.SplitN(ruleMessage, keyValueSep, 2)
		if len(parts) == 2 {
			ruleMap[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return ruleMap
}
