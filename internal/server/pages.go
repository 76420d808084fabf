package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/controller"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const htmlContentType = "text/html; charset=utf-8"

func (s *Server) html200(c *gin.Context, body []byte, err error) {
	s.htmlStatus(c, http.StatusOK, body, err)
}

func (s *Server) htmlStatus(c *gin.Context, status int, body []byte, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(status, htmlContentType, body)
}

// fail writes err as a plain error page with the mapped status.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.String(status, message(err))
}

func (s *Server) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

func (s *Server) showCatalog(c *gin.Context) {
	routes := s.html.Routes()
	switch s.ctrl.Mode() {
	case controller.ModeCreating, controller.ModeEditing:
		s.redirect(c, routes.Builder)
		return
	case controller.ModeFilling:
		s.redirect(c, routes.Fill)
		return
	}
	s.renderCatalog(c, http.StatusOK, "")
}

func (s *Server) renderCatalog(c *gin.Context, status int, errMessage string) {
	ctx := c.Request.Context()
	cat, err := s.ctrl.Catalog(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	page := vanilla.CatalogPage{
		Entries: cat.Entries(),
		Flash:   s.takeFlash(),
		Error:   errMessage,
	}
	if last, ok := s.ctrl.LastSubmission(); ok {
		page.Last = &last
	}
	body, err := s.html.RenderCatalog(ctx, page)
	s.htmlStatus(c, status, body, err)
}

func (s *Server) createTemplate(c *gin.Context) {
	if err := s.ctrl.StartCreate(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	s.redirect(c, s.html.Routes().Builder)
}

func (s *Server) editTemplate(c *gin.Context) {
	s.catalogAction(c, (*catalog.Catalog).Edit, s.html.Routes().Builder)
}

func (s *Server) useTemplate(c *gin.Context) {
	s.catalogAction(c, (*catalog.Catalog).Use, s.html.Routes().Fill)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	id := c.Param("id")
	if err := s.ctrl.OnDelete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.setFlash("Template deleted.")
	s.redirect(c, s.html.Routes().Home)
}

func (s *Server) catalogAction(c *gin.Context, action func(*catalog.Catalog, context.Context, string) error, next string) {
	ctx := c.Request.Context()
	cat, err := s.ctrl.Catalog(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := action(cat, ctx, c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrTemplateNotFound) {
			s.renderCatalog(c, http.StatusNotFound, "That template no longer exists.")
			return
		}
		s.fail(c, err)
		return
	}
	s.redirect(c, next)
}

func (s *Server) exportTemplates(c *gin.Context) {
	format := model.Format(strings.ToLower(c.DefaultQuery("format", string(model.FormatJSON))))
	if format != model.FormatJSON && format != model.FormatYAML {
		s.fail(c, fmt.Errorf("%w: unknown export format %q", errBadRequest, format))
		return
	}
	data, err := store.Export(c.Request.Context(), s.ctrl.Store(), format)
	if err != nil {
		s.fail(c, err)
		return
	}
	contentType := "application/json"
	if format == model.FormatYAML {
		contentType = "application/yaml"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="templates.%s"`, format))
	c.Data(http.StatusOK, contentType, data)
}

// importTemplates adds every template in the uploaded file, replacing stored
// templates with the same id.
func (s *Server) importTemplates(c *gin.Context) {
	ctx := c.Request.Context()
	header, err := c.FormFile("file")
	if err != nil {
		s.renderCatalog(c, http.StatusBadRequest, "Choose a JSON or YAML file to import.")
		return
	}
	file, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.fail(c, err)
		return
	}
	templates, err := model.DecodeTemplates(data, model.FormatFromPath(filepath.Base(header.Filename)))
	if err != nil {
		s.renderCatalog(c, http.StatusBadRequest, "The file could not be read as templates.")
		s.logger.Warn("import failed", "file", header.Filename, "error", err)
		return
	}

	added, updated := 0, 0
	for _, tmpl := range templates {
		if strings.TrimSpace(tmpl.ID) == "" {
			tmpl.ID = uuid.NewString()
		}
		if err := s.ctrl.Store().Add(ctx, tmpl); err != nil {
			if !errors.Is(err, store.ErrExists) {
				s.fail(c, err)
				return
			}
			if err := s.ctrl.Store().Update(ctx, tmpl); err != nil {
				s.fail(c, err)
				return
			}
			updated++
			continue
		}
		added++
	}
	s.logger.Info("templates imported", "file", header.Filename, "added", added, "updated", updated)
	s.setFlash(fmt.Sprintf("Imported %d new and %d updated templates.", added, updated))
	s.redirect(c, s.html.Routes().Home)
}

func (s *Server) showFiller(c *gin.Context) {
	f, err := s.ctrl.Filler()
	if err != nil {
		s.redirect(c, s.html.Routes().Home)
		return
	}
	page := vanilla.FillPage{
		Template: f.Template(),
		Options: render.RenderOptions{
			Values: f.Answers(),
			Theme:  s.theme,
		},
		Flash: s.takeFlash(),
	}
	body, err := s.html.RenderFillPage(c.Request.Context(), page)
	s.html200(c, body, err)
}

func (s *Server) submitAnswers(c *gin.Context) {
	ctx := c.Request.Context()
	f, err := s.ctrl.Filler()
	if err != nil {
		s.fail(c, err)
		return
	}
	tmpl := f.Template()
	if posted := c.PostForm(render.TemplateInput); posted != "" && posted != tmpl.ID {
		s.fail(c, fmt.Errorf("%w: form was posted for template %q", controller.ErrWrongMode, posted))
		return
	}

	f.ApplyValues(c.PostFormArray)
	for _, field := range tmpl.Fields {
		if field.Type != model.FieldTypeImage || field.IsDisabled || field.IsReadOnly {
			continue
		}
		header, err := c.FormFile(field.Name)
		if err != nil || header.Size == 0 {
			continue
		}
		file, err := header.Open()
		if err != nil {
			s.fail(c, err)
			return
		}
		err = f.ReadImage(ctx, field.ID, file)
		file.Close()
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	if _, err := s.ctrl.Submit(ctx); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			s.fail(c, err)
			return
		}
		options := render.RenderOptions{Values: f.Answers(), Theme: s.theme}
		options = vanilla.ErrorsFor(tmpl, validation.Result{Issues: verr.Issues}, options)
		body, err := s.html.RenderFillPage(ctx, vanilla.FillPage{Template: tmpl, Options: options})
		s.htmlStatus(c, http.StatusUnprocessableEntity, body, err)
		return
	}
	s.redirect(c, s.html.Routes().Receipt)
}

func (s *Server) cancel(c *gin.Context) {
	s.ctrl.Cancel()
	s.redirect(c, s.html.Routes().Home)
}

func (s *Server) showReceipt(c *gin.Context) {
	ctx := c.Request.Context()
	submission, ok := s.ctrl.LastSubmission()
	if !ok {
		s.renderCatalog(c, http.StatusNotFound, "Nothing has been submitted yet.")
		return
	}
	tmpl, err := s.ctrl.Store().Get(ctx, submission.TemplateID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.fail(c, err)
			return
		}
		tmpl = model.Template{ID: submission.TemplateID}
	}
	body, err := s.html.RenderReceipt(ctx, vanilla.ReceiptPage{Template: tmpl, Submission: submission})
	s.html200(c, body, err)
}
