package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Memory is an in-process Store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu        sync.RWMutex
	templates []model.Template
}

var _ Store = (*Memory)(nil)

// NewMemory creates a store holding copies of the given templates.
func NewMemory(seed ...model.Template) *Memory {
	m := &Memory{templates: make([]model.Template, 0, len(seed))}
	for _, tmpl := range seed {
		m.templates = append(m.templates, tmpl.Clone())
	}
	return m
}

// List returns every template in insertion order.
func (m *Memory) List(ctx context.Context) ([]model.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Template, len(m.templates))
	for i, tmpl := range m.templates {
		out[i] = tmpl.Clone()
	}
	return out, nil
}

// Get returns the template with id.
func (m *Memory) Get(ctx context.Context, id string) (model.Template, error) {
	if err := ctx.Err(); err != nil {
		return model.Template{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return model.Template{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return m.templates[idx].Clone(), nil
}

// Add appends tmpl.
func (m *Memory) Add(ctx context.Context, tmpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(tmpl.ID) == "" {
		return ErrInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(tmpl.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrExists, tmpl.ID)
	}
	m.templates = append(m.templates, tmpl.Clone())
	return nil
}

// Update replaces the template with the same id, keeping its position.
func (m *Memory) Update(ctx context.Context, tmpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(tmpl.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, tmpl.ID)
	}
	m.templates[idx] = tmpl.Clone()
	return nil
}

// Remove deletes the template with id, keeping the order of the rest.
func (m *Memory) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	m.templates = append(m.templates[:idx], m.templates[idx+1:]...)
	return nil
}

func (m *Memory) indexOf(id string) int {
	for i, tmpl := range m.templates {
		if tmpl.ID == id {
			return i
		}
	}
	return -1
}
