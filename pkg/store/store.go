// Package store defines the template store capability used by the page
// controller and an in-memory implementation. Stores hand out copies, so
// callers never share mutable template state with the store.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	// ErrNotFound is returned when no template has the requested id.
	ErrNotFound = errors.New("store: template not found")
	// ErrExists is returned by Add when the id is already taken.
	ErrExists = errors.New("store: template already exists")
	// ErrInvalid is returned for templates without an id.
	ErrInvalid = errors.New("store: template id is required")
)

// Store persists form templates in insertion order.
type Store interface {
	List(ctx context.Context) ([]model.Template, error)
	Get(ctx context.Context, id string) (model.Template, error)
	Add(ctx context.Context, tmpl model.Template) error
	Update(ctx context.Context, tmpl model.Template) error
	Remove(ctx context.Context, id string) error
}

// LoadSeed reads a JSON or YAML document of templates and adds each one to s.
// Templates whose id already exists are replaced.
func LoadSeed(ctx context.Context, s Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("store: read seed %q: %w", path, err)
	}
	templates, err := model.DecodeTemplates(data, model.FormatFromPath(path))
	if err != nil {
		return 0, fmt.Errorf("store: decode seed %q: %w", path, err)
	}
	for _, tmpl := range templates {
		err := s.Add(ctx, tmpl)
		if errors.Is(err, ErrExists) {
			err = s.Update(ctx, tmpl)
		}
		if err != nil {
			return 0, fmt.Errorf("store: seed template %q: %w", tmpl.ID, err)
		}
	}
	return len(templates), nil
}

// Export encodes every template in s.
func Export(ctx context.Context, s Store, format model.Format) ([]byte, error) {
	templates, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return model.EncodeTemplates(templates, format)
}
