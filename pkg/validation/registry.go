package validation

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Checker validates the answer for one field. present is false when the answer
// map has no entry for the field's name.
type Checker func(field model.Field, value any, present bool) []Issue

// Registry maps field types to their checkers.
type Registry struct {
	mu       sync.RWMutex
	checkers map[model.FieldType]Checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[model.FieldType]Checker)}
}

// NewDefaultRegistry returns a registry holding the built-in checkers for
// every field type.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(model.FieldTypeText, checkText)
	r.MustRegister(model.FieldTypeSelect, checkSingleChoice)
	r.MustRegister(model.FieldTypeRadio, checkSingleChoice)
	r.MustRegister(model.FieldTypeMultiselect, checkMultiChoice)
	r.MustRegister(model.FieldTypeCheckbox, checkCheckbox)
	r.MustRegister(model.FieldTypeImage, checkImage)
	return r
}

// Register installs or replaces the checker for a field type.
func (r *Registry) Register(fieldType model.FieldType, checker Checker) error {
	if fieldType == "" {
		return fmt.Errorf("validation: field type is required")
	}
	if checker == nil {
		return fmt.Errorf("validation: checker for %q is nil", fieldType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[fieldType] = checker
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(fieldType model.FieldType, checker Checker) {
	if err := r.Register(fieldType, checker); err != nil {
		panic(err)
	}
}

// Checker returns the checker registered for a field type.
func (r *Registry) Checker(fieldType model.FieldType) (Checker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	checker, ok := r.checkers[fieldType]
	return checker, ok
}

// Validate checks answers against every field of the template in order.
// Fields whose type has no checker produce an unknown_type issue.
func (r *Registry) Validate(tmpl model.Template, answers map[string]any) Result {
	result := Result{Valid: true}
	for _, field := range tmpl.Fields {
		checker, ok := r.Checker(field.Type)
		if !ok {
			result.add(Issue{
				Field:   field.Name,
				Code:    CodeUnknownType,
				Message: fmt.Sprintf("unsupported field type %q", field.Type),
			})
			continue
		}
		value, present := answers[field.Name]
		result.add(checker(field, value, present)...)
	}
	return result
}

var defaultRegistry = NewDefaultRegistry()

// Default returns the shared registry holding the built-in checkers.
func Default() *Registry {
	return defaultRegistry
}

// Validate checks answers using the default registry.
func Validate(tmpl model.Template, answers map[string]any) Result {
	return defaultRegistry.Validate(tmpl, answers)
}

// CheckField runs the default checker for a single field.
func CheckField(field model.Field, value any, present bool) []Issue {
	checker, ok := defaultRegistry.Checker(field.Type)
	if !ok {
		return []Issue{{Field: field.Name, Code: CodeUnknownType, Message: fmt.Sprintf("unsupported field type %q", field.Type)}}
	}
	return checker(field, value, present)
}
