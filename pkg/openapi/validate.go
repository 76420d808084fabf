package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// CodeSchema marks issues reported by schema validation.
const CodeSchema = "schema"

// ValidateSubmission checks answers against the submission schema of tmpl.
// Every schema violation becomes one issue keyed by the top-level property
// it concerns.
func ValidateSubmission(tmpl model.Template, answers map[string]any) (validation.Result, error) {
	payload, err := jsonValue(answers)
	if err != nil {
		return validation.Result{}, fmt.Errorf("openapi: encode answers: %w", err)
	}

	schema := SubmissionSchema(tmpl)
	err = schema.VisitJSON(payload, openapi3.MultiErrors())
	if err == nil {
		return validation.Result{Valid: true}, nil
	}

	var issues []validation.Issue
	collectIssues(err, &issues)
	if len(issues) == 0 {
		return validation.Result{}, fmt.Errorf("openapi: validate answers: %w", err)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Field < issues[j].Field
	})
	return validation.Result{Valid: false, Issues: issues}, nil
}

func collectIssues(err error, issues *[]validation.Issue) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			collectIssues(inner, issues)
		}
		return
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		field := ""
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			field = pointer[0]
		}
		message := schemaErr.Reason
		if message == "" {
			message = schemaErr.Error()
		}
		*issues = append(*issues, validation.Issue{Field: field, Code: CodeSchema, Message: strings.TrimSpace(message)})
	}
}

// jsonValue converts answers to the generic JSON shapes the schema visitor
// expects ([]string becomes []any and so on).
func jsonValue(answers map[string]any) (map[string]any, error) {
	if answers == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
