// Package builder edits a working copy of a form template. Callers add,
// update, reorder and remove fields, use the per-type editors for option
// lists, text constraints and image limits, and finally Save, which hands the
// assembled template to the save callback. The builder never touches stored
// templates directly.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var (
	// ErrUnknownFieldType is returned by AddField for types outside the
	// supported set.
	ErrUnknownFieldType = errors.New("builder: unknown field type")
	// ErrFieldNotFound is returned by editors when the field id is absent.
	ErrFieldNotFound = errors.New("builder: field not found")
	// ErrWrongFieldType is returned when an editor does not apply to the
	// field's type.
	ErrWrongFieldType = errors.New("builder: editor does not apply to field type")
)

// SaveFunc receives the assembled template when Save is called.
type SaveFunc func(ctx context.Context, tmpl model.Template) error

// Option configures a Builder.
type Option func(*Builder)

// WithTemplate seeds the builder from an existing template (edit mode). The
// template's id and creation time are kept on save.
func WithTemplate(tmpl model.Template) Option {
	return func(b *Builder) {
		clone := tmpl.Clone()
		b.editing = true
		b.id = clone.ID
		b.createdAt = clone.CreatedAt
		b.name = clone.Name
		b.description = clone.Description
		b.fields = clone.Fields
	}
}

// WithIDGenerator overrides the id source used for new fields and templates.
func WithIDGenerator(fn func() string) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(fn func() time.Time) Option {
	return func(b *Builder) {
		if fn != nil {
			b.now = fn
		}
	}
}

// WithLogger routes builder diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder holds the working copy of a template under construction.
type Builder struct {
	mu sync.RWMutex

	editing     bool
	id          string
	createdAt   time.Time
	name        string
	description string
	fields      []model.Field

	onSave SaveFunc
	newID  func() string
	now    func() time.Time
	logger *log.Logger
}

// New creates a builder. onSave may be nil, in which case Save only returns
// the assembled template.
func New(onSave SaveFunc, options ...Option) *Builder {
	b := &Builder{
		onSave: onSave,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if b.id == "" {
		b.id = b.newID()
	}
	if b.fields == nil {
		b.fields = []model.Field{}
	}
	return b
}

// Editing reports whether the builder was seeded from an existing template.
func (b *Builder) Editing() bool {
	return b.editing
}

// TemplateID returns the id the saved template will carry.
func (b *Builder) TemplateID() string {
	return b.id
}

// Name returns the working template name.
func (b *Builder) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// SetName replaces the working template name.
func (b *Builder) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// Description returns the working template description.
func (b *Builder) Description() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.description
}

// SetDescription replaces the working template description.
func (b *Builder) SetDescription(description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.description = description
}

// Fields returns a copy of the working field list in order.
func (b *Builder) Fields() []model.Field {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Field, len(b.fields))
	for i, field := range b.fields {
		out[i] = field.Clone()
	}
	return out
}

// Field returns a copy of the field with the given id.
func (b *Builder) Field(id string) (model.Field, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return model.Field{}, false
	}
	return b.fields[idx].Clone(), true
}

// AddField appends a new field of the given type with generated defaults:
// label "New <type> field", name field_<n> where n is the new field count, and
// placeholder "Enter <type>...". Existing fields are not renumbered.
func (b *Builder) AddField(fieldType model.FieldType) (model.Field, error) {
	if !fieldType.Valid() {
		return model.Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, fieldType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	field := model.Field{
		ID:          b.newID(),
		Type:        fieldType,
		Label:       fmt.Sprintf("New %s field", fieldType),
		Name:        fmt.Sprintf("field_%d", len(b.fields)+1),
		Placeholder: fmt.Sprintf("Enter %s...", fieldType),
	}
	b.fields = append(b.fields, field)
	b.logger.Debug("field added", "id", field.ID, "type", fieldType, "name", field.Name)
	return field.Clone(), nil
}

// UpdateField merges patch into the field with the given id. Nested
// validation and customization records are merged member by member. It
// reports false (and changes nothing) when the id is absent.
func (b *Builder) UpdateField(id string, patch model.FieldPatch) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return false
	}
	b.fields[idx] = b.fields[idx].Apply(patch)
	return true
}

// RemoveField deletes the field with the given id, keeping the order of the
// rest. It reports false when the id is absent.
func (b *Builder) RemoveField(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return false
	}
	b.fields = append(b.fields[:idx], b.fields[idx+1:]...)
	b.logger.Debug("field removed", "id", id)
	return true
}

// MoveField shifts a field by delta positions, clamped to the list bounds.
func (b *Builder) MoveField(id string, delta int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return false
	}
	target := min(max(idx+delta, 0), len(b.fields)-1)
	if target == idx {
		return true
	}
	field := b.fields[idx]
	b.fields = append(b.fields[:idx], b.fields[idx+1:]...)
	b.fields = append(b.fields[:target], append([]model.Field{field}, b.fields[target:]...)...)
	return true
}

// Preview returns the working template the live preview renders. It carries
// the same data Save would emit, without calling the save callback.
func (b *Builder) Preview() model.Template {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.assemble(b.now())
}

// Save assembles the template and hands it to the save callback. The id and
// creation time of an edited template are retained; updatedAt is always now.
// No validation is applied; lint findings are only logged.
func (b *Builder) Save(ctx context.Context) (model.Template, error) {
	if err := ctx.Err(); err != nil {
		return model.Template{}, err
	}
	b.mu.Lock()
	now := b.now()
	if b.createdAt.IsZero() {
		b.createdAt = now
	}
	tmpl := b.assemble(now)
	b.mu.Unlock()

	if result := validation.Lint(tmpl); !result.Valid {
		for _, issue := range result.Issues {
			b.logger.Warn("template saved with lint findings", "template", tmpl.ID, "code", issue.Code, "message", issue.Message)
		}
	}

	if b.onSave != nil {
		if err := b.onSave(ctx, tmpl.Clone()); err != nil {
			return model.Template{}, fmt.Errorf("builder: save template: %w", err)
		}
	}
	return tmpl, nil
}

func (b *Builder) assemble(now time.Time) model.Template {
	tmpl := model.Template{
		ID:          b.id,
		Name:        strings.TrimSpace(b.name),
		Description: b.description,
		Fields:      make([]model.Field, len(b.fields)),
		CreatedAt:   b.createdAt,
		UpdatedAt:   now,
	}
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	for i, field := range b.fields {
		tmpl.Fields[i] = field.Clone()
	}
	return tmpl
}

func (b *Builder) indexOf(id string) int {
	for i, field := range b.fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}
