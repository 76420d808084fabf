// Package catalog presents saved templates and forwards edit, delete and use
// intents to the caller. It never modifies templates itself.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrTemplateNotFound is returned for intents naming an unknown template.
var ErrTemplateNotFound = errors.New("catalog: template not found")

// Actions receives the intents emitted by the catalog.
type Actions interface {
	OnEdit(ctx context.Context, tmpl model.Template) error
	OnDelete(ctx context.Context, id string) error
	OnUse(ctx context.Context, tmpl model.Template) error
}

// Entry is the summary shown for one template.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	FieldCount  int       `json:"fieldCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Catalog lists templates and dispatches intents by id.
type Catalog struct {
	templates []model.Template
	actions   Actions
}

// New builds a catalog over a snapshot of templates.
func New(templates []model.Template, actions Actions) *Catalog {
	snapshot := make([]model.Template, len(templates))
	for i, tmpl := range templates {
		snapshot[i] = tmpl.Clone()
	}
	return &Catalog{templates: snapshot, actions: actions}
}

// Entries returns one entry per template, in the order given to New.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.templates))
	for _, tmpl := range c.templates {
		out = append(out, Entry{
			ID:          tmpl.ID,
			Name:        tmpl.Name,
			Description: tmpl.Description,
			FieldCount:  len(tmpl.Fields),
			UpdatedAt:   tmpl.UpdatedAt,
		})
	}
	return out
}

// Len reports how many templates are listed.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Edit forwards an edit intent for the template with id.
func (c *Catalog) Edit(ctx context.Context, id string) error {
	tmpl, err := c.lookup(id)
	if err != nil {
		return err
	}
	return c.actions.OnEdit(ctx, tmpl)
}

// Use forwards a use (fill) intent for the template with id.
func (c *Catalog) Use(ctx context.Context, id string) error {
	tmpl, err := c.lookup(id)
	if err != nil {
		return err
	}
	return c.actions.OnUse(ctx, tmpl)
}

// Delete forwards a delete intent. Unknown ids are forwarded as well; removing
// a missing template is the receiver's concern.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if c.actions == nil {
		return errors.New("catalog: actions not configured")
	}
	return c.actions.OnDelete(ctx, id)
}

func (c *Catalog) lookup(id string) (model.Template, error) {
	if c.actions == nil {
		return model.Template{}, errors.New("catalog: actions not configured")
	}
	for _, tmpl := range c.templates {
		if tmpl.ID == id {
			return tmpl.Clone(), nil
		}
	}
	return model.Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}
