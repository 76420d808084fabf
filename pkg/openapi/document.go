package openapi

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// DocumentOptions describe the generated document.
type DocumentOptions struct {
	Title   string
	Version string
	// BasePath prefixes the submission endpoints. Defaults to /api/templates.
	BasePath string
}

func (o DocumentOptions) withDefaults() DocumentOptions {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "Form Builder submissions"
	}
	if strings.TrimSpace(o.Version) == "" {
		o.Version = "1.0.0"
	}
	if strings.TrimSpace(o.BasePath) == "" {
		o.BasePath = "/api/templates"
	}
	o.BasePath = strings.TrimRight(o.BasePath, "/")
	return o
}

var componentNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ComponentName returns the components/schemas key used for a template id.
func ComponentName(templateID string) string {
	name := componentNameUnsafe.ReplaceAllString(templateID, "_")
	if name == "" {
		name = "_"
	}
	return name
}

// Document builds an OpenAPI 3 document with one submission schema per
// template and a POST endpoint accepting it.
func Document(ctx context.Context, templates []model.Template, options DocumentOptions) (*openapi3.T, error) {
	options = options.withDefaults()
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   options.Title,
			Version: options.Version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(templates)),
		},
	}

	for _, tmpl := range templates {
		name := ComponentName(tmpl.ID)
		if _, exists := doc.Components.Schemas[name]; exists {
			return nil, fmt.Errorf("openapi: templates share component name %q", name)
		}
		schema := SubmissionSchema(tmpl)
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", schema)

		ref := openapi3.NewSchemaRef("#/components/schemas/"+name, schema)
		operation := openapi3.NewOperation()
		operation.OperationID = "submit_" + name
		operation.Summary = fmt.Sprintf("Submit answers for %q", displayName(tmpl))
		operation.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
		}
		operation.AddResponse(201, openapi3.NewResponse().WithDescription("Submission accepted"))
		operation.AddResponse(404, openapi3.NewResponse().WithDescription("Unknown template"))
		operation.AddResponse(422, openapi3.NewResponse().WithDescription("Answers failed validation"))

		path := options.BasePath + "/" + url.PathEscape(tmpl.ID) + "/submissions"
		doc.Paths.Set(path, &openapi3.PathItem{Post: operation})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}

func displayName(tmpl model.Template) string {
	if strings.TrimSpace(tmpl.Name) != "" {
		return tmpl.Name
	}
	return tmpl.ID
}
