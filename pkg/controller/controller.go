// Package controller implements the page state machine that switches between
// the catalog, the builder and the filler. Templates live in an injected
// store.Store; the controller only tracks which view is active.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// ErrWrongMode is returned when an action does not apply to the active mode.
var ErrWrongMode = errors.New("controller: action not allowed in current mode")

// Mode identifies the active view.
type Mode int

const (
	ModeListing Mode = iota
	ModeCreating
	ModeEditing
	ModeFilling
)

func (m Mode) String() string {
	switch m {
	case ModeListing:
		return "listing"
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	case ModeFilling:
		return "filling"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SubmissionHandler receives every accepted submission.
type SubmissionHandler func(ctx context.Context, submission model.Submission) error

// Option customises the controller.
type Option func(*Controller)

// WithLogger sets the logger used for transitions and store failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSubmissionHandler forwards submissions to handler after they are recorded.
func WithSubmissionHandler(handler SubmissionHandler) Option {
	return func(c *Controller) {
		c.onSubmission = handler
	}
}

// WithEnforcement makes Submit reject answers that fail validation.
func WithEnforcement(enforce bool) Option {
	return func(c *Controller) {
		c.enforce = enforce
	}
}

// WithClock overrides the time source for submissions and builders.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSubmissionIDs overrides the submission id generator.
func WithSubmissionIDs(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newSubmissionID = fn
		}
	}
}

// WithBuilderOptions appends options to every builder the controller opens.
func WithBuilderOptions(options ...builder.Option) Option {
	return func(c *Controller) {
		c.builderOptions = append(c.builderOptions, options...)
	}
}

// WithFillerOptions appends options to every filler the controller opens.
func WithFillerOptions(options ...filler.Option) Option {
	return func(c *Controller) {
		c.fillerOptions = append(c.fillerOptions, options...)
	}
}

// Controller owns the active view. Its methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	store   store.Store
	mode    Mode
	builder *builder.Builder
	filler  *filler.Filler
	last    *model.Submission

	onSubmission    SubmissionHandler
	enforce         bool
	now             func() time.Time
	newSubmissionID func() string
	builderOptions  []builder.Option
	fillerOptions   []filler.Option
	logger          *log.Logger
}

var _ catalog.Actions = (*Controller)(nil)

// New creates a controller in listing mode. A nil store gets an empty
// in-memory store.
func New(s store.Store, options ...Option) *Controller {
	if s == nil {
		s = store.NewMemory()
	}
	c := &Controller{
		store:  s,
		mode:   ModeListing,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.newSubmissionID == nil {
		entropy := ulid.Monotonic(rand.New(rand.NewSource(c.now().UnixNano())), 0)
		c.newSubmissionID = func() string {
			return ulid.MustNew(ulid.Timestamp(c.now()), entropy).String()
		}
	}
	return c
}

// Store returns the backing template store.
func (c *Controller) Store() store.Store {
	return c.store
}

// Mode reports the active mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Templates lists the stored templates.
func (c *Controller) Templates(ctx context.Context) ([]model.Template, error) {
	templates, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("controller: list templates: %w", err)
	}
	return templates, nil
}

// Catalog returns a catalog over the stored templates whose intents are
// routed back to this controller.
func (c *Controller) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	templates, err := c.Templates(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(templates, c), nil
}

// StartCreate opens an empty builder.
func (c *Controller) StartCreate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.builder = builder.New(c.persist, c.builderOpts()...)
	c.mode = ModeCreating
	c.logger.Debug("mode changed", "mode", c.mode, "template", c.builder.TemplateID())
	return nil
}

// OnEdit opens a builder seeded with tmpl.
func (c *Controller) OnEdit(ctx context.Context, tmpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.builder = builder.New(c.persist, append(c.builderOpts(), builder.WithTemplate(tmpl))...)
	c.mode = ModeEditing
	c.logger.Debug("mode changed", "mode", c.mode, "template", tmpl.ID)
	return nil
}

// OnUse opens a filler for tmpl.
func (c *Controller) OnUse(ctx context.Context, tmpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	opts := append([]filler.Option{
		filler.WithEnforcement(c.enforce),
		filler.WithLogger(c.logger),
	}, c.fillerOptions...)
	c.filler = filler.New(tmpl, c.record, opts...)
	c.mode = ModeFilling
	c.logger.Debug("mode changed", "mode", c.mode, "template", tmpl.ID)
	return nil
}

// OnDelete removes the template with id from the store. Deleting a template
// that no longer exists is not an error. If the active builder or filler
// works on that template, the controller returns to listing.
func (c *Controller) OnDelete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Remove(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("controller: delete template: %w", err)
		}
		c.logger.Debug("delete of missing template ignored", "template", id)
	}
	if c.activeTemplateID() == id {
		c.reset()
	}
	return nil
}

// Builder returns the active builder.
func (c *Controller) Builder() (*builder.Builder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.builder == nil {
		return nil, fmt.Errorf("%w: no builder in %s mode", ErrWrongMode, c.mode)
	}
	return c.builder, nil
}

// Filler returns the active filler.
func (c *Controller) Filler() (*filler.Filler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filler == nil {
		return nil, fmt.Errorf("%w: no filler in %s mode", ErrWrongMode, c.mode)
	}
	return c.filler, nil
}

// Save persists the builder's template and returns to listing. On failure
// the builder stays open.
func (c *Controller) Save(ctx context.Context) (model.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.builder == nil {
		return model.Template{}, fmt.Errorf("%w: save in %s mode", ErrWrongMode, c.mode)
	}
	tmpl, err := c.builder.Save(ctx)
	if err != nil {
		return model.Template{}, err
	}
	c.logger.Info("template saved", "template", tmpl.ID, "name", tmpl.Name, "fields", len(tmpl.Fields))
	c.reset()
	return tmpl, nil
}

// Submit hands the filler's answers on as a submission and returns to
// listing. When validation is enforced and fails, the filler stays open and
// the *validation.Error is returned.
func (c *Controller) Submit(ctx context.Context) (model.Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filler == nil {
		return model.Submission{}, fmt.Errorf("%w: submit in %s mode", ErrWrongMode, c.mode)
	}
	if err := c.filler.Submit(ctx); err != nil {
		return model.Submission{}, err
	}
	submission := c.last.Clone()
	c.reset()
	return submission, nil
}

// Cancel discards the active builder or filler and returns to listing.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// LastSubmission returns the most recent submission, if any.
func (c *Controller) LastSubmission() (model.Submission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return model.Submission{}, false
	}
	return c.last.Clone(), true
}

// persist is the builder's save callback. It runs while c.mu is held.
func (c *Controller) persist(ctx context.Context, tmpl model.Template) error {
	if c.mode == ModeEditing {
		return c.store.Update(ctx, tmpl)
	}
	return c.store.Add(ctx, tmpl)
}

// record is the filler's submit callback. It runs while c.mu is held.
func (c *Controller) record(ctx context.Context, answers filler.Answers) error {
	submission := model.Submission{
		ID:          c.newSubmissionID(),
		TemplateID:  c.filler.Template().ID,
		Data:        model.CloneAnswers(answers),
		SubmittedAt: c.now(),
	}
	if c.onSubmission != nil {
		if err := c.onSubmission(ctx, submission.Clone()); err != nil {
			return err
		}
	}
	c.last = &submission
	c.logger.Info("submission recorded", "template", submission.TemplateID, "submission", submission.ID, "answers", len(submission.Data))
	return nil
}

func (c *Controller) reset() {
	c.builder = nil
	c.filler = nil
	c.mode = ModeListing
}

func (c *Controller) activeTemplateID() string {
	switch {
	case c.builder != nil:
		return c.builder.TemplateID()
	case c.filler != nil:
		return c.filler.Template().ID
	default:
		return ""
	}
}

func (c *Controller) builderOpts() []builder.Option {
	opts := []builder.Option{builder.WithClock(c.now), builder.WithLogger(c.logger)}
	return append(opts, c.builderOptions...)
}
