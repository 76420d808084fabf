package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-formbuilder/pkg/controller"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// WithSubmissionHandler receives submissions accepted by the JSON API.
func WithSubmissionHandler(handler controller.SubmissionHandler) Option {
	return func(s *Server) {
		s.onSubmission = handler
	}
}

func (s *Server) apiError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": message(err)})
}

func (s *Server) apiListTemplates(c *gin.Context) {
	templates, err := s.ctrl.Templates(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) apiGetTemplate(c *gin.Context) {
	tmpl, err := s.ctrl.Store().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// bindTemplate decodes the body and lints it. It reports false once a
// response has been written.
func (s *Server) bindTemplate(c *gin.Context) (model.Template, bool) {
	var tmpl model.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		s.apiError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return model.Template{}, false
	}
	if lint := validation.Lint(tmpl); !lint.Valid {
		if s.enforce {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"issues": lint.Issues})
			return model.Template{}, false
		}
		for _, issue := range lint.Issues {
			s.logger.Warn("template lint", "template", tmpl.ID, "field", issue.Field, "code", issue.Code)
		}
	}
	return tmpl, true
}

func (s *Server) apiCreateTemplate(c *gin.Context) {
	tmpl, ok := s.bindTemplate(c)
	if !ok {
		return
	}
	if strings.TrimSpace(tmpl.ID) == "" {
		tmpl.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	tmpl.UpdatedAt = now
	if err := s.ctrl.Store().Add(c.Request.Context(), tmpl); err != nil {
		s.apiError(c, err)
		return
	}
	s.logger.Info("template created", "template", tmpl.ID, "name", tmpl.Name)
	c.JSON(http.StatusCreated, tmpl)
}

func (s *Server) apiUpdateTemplate(c *gin.Context) {
	tmpl, ok := s.bindTemplate(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if tmpl.ID != "" && tmpl.ID != id {
		s.apiError(c, fmt.Errorf("%w: body id %q does not match %q", errBadRequest, tmpl.ID, id))
		return
	}
	ctx := c.Request.Context()
	existing, err := s.ctrl.Store().Get(ctx, id)
	if err != nil {
		s.apiError(c, err)
		return
	}
	tmpl.ID = id
	tmpl.CreatedAt = existing.CreatedAt
	tmpl.UpdatedAt = s.now().UTC()
	if err := s.ctrl.Store().Update(ctx, tmpl); err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (s *Server) apiDeleteTemplate(c *gin.Context) {
	if err := s.ctrl.OnDelete(c.Request.Context(), c.Param("id")); err != nil {
		s.apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) apiTemplateSchema(c *gin.Context) {
	tmpl, err := s.ctrl.Store().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, openapi.SubmissionSchema(tmpl))
}

func (s *Server) apiDocument(c *gin.Context) {
	ctx := c.Request.Context()
	templates, err := s.ctrl.Templates(ctx)
	if err != nil {
		s.apiError(c, err)
		return
	}
	doc, err := openapi.Document(ctx, templates, openapi.DocumentOptions{
		Title:    s.html.Title(),
		BasePath: "/api/templates",
	})
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) apiRenderTemplate(c *gin.Context) {
	ctx := c.Request.Context()
	mode := render.Mode(strings.ToLower(c.DefaultQuery("mode", string(render.ModePreview))))
	if mode != render.ModePreview && mode != render.ModeFill {
		s.apiError(c, fmt.Errorf("%w: unknown mode %q", errBadRequest, mode))
		return
	}
	name := c.Query("renderer")
	renderer, err := s.orch.Renderer(name)
	if err != nil {
		s.apiError(c, err)
		return
	}
	id := c.Param("id")
	options := render.RenderOptions{Mode: mode}
	if mode == render.ModeFill {
		options.Action = "/api/templates/" + id + "/submissions"
	}
	out, err := s.orch.Generate(ctx, orchestrator.Request{
		TemplateID:    id,
		Renderer:      name,
		RenderOptions: options,
		ThemeName:     c.Query("theme"),
		ThemeVariant:  c.Query("variant"),
	})
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.Data(http.StatusOK, renderer.ContentType(), out)
}

// apiSubmit checks posted answers with both the field validators and the
// template's JSON schema. Issues are logged; with enforcement on they reject
// the submission.
func (s *Server) apiSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	tmpl, err := s.ctrl.Store().Get(ctx, c.Param("id"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	var answers map[string]any
	if err := c.ShouldBindJSON(&answers); err != nil {
		s.apiError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	issues := validation.Validate(tmpl, answers).Issues
	schemaResult, err := openapi.ValidateSubmission(tmpl, answers)
	if err != nil {
		s.apiError(c, err)
		return
	}
	issues = append(issues, schemaResult.Issues...)
	for _, issue := range issues {
		s.logger.Warn("answer failed validation", "template", tmpl.ID, "field", issue.Field, "code", issue.Code)
	}
	if s.enforce && len(issues) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"issues": issues})
		return
	}

	now := s.now()
	submission := model.Submission{
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		TemplateID:  tmpl.ID,
		Data:        model.CloneAnswers(answers),
		SubmittedAt: now.UTC(),
	}
	if s.onSubmission != nil {
		if err := s.onSubmission(ctx, submission.Clone()); err != nil {
			s.apiError(c, fmt.Errorf("server: submission handler: %w", err))
			return
		}
	}
	s.logger.Info("submission recorded", "template", tmpl.ID, "submission", submission.ID, "via", "api")

	body := gin.H{"submission": submission}
	if len(issues) > 0 {
		body["issues"] = issues
	}
	c.JSON(http.StatusCreated, body)
}
