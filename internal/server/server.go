// Package server exposes the page controller over HTTP: server-rendered
// catalog, builder and filler pages plus a JSON API over the template store.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/controller"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
)

// Option customises the server.
type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the HTML renderer used for pages.
func WithRenderer(renderer *vanilla.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// WithOrchestrator sets the orchestrator behind the render endpoint. Its
// theme also styles the filler page.
func WithOrchestrator(orch *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		if orch != nil {
			s.orch = orch
		}
	}
}

// WithEnforcement rejects saves and submissions with validation issues.
func WithEnforcement(enforce bool) Option {
	return func(s *Server) {
		s.enforce = enforce
	}
}

// WithMode sets the gin mode (debug, release or test).
func WithMode(mode string) Option {
	return func(s *Server) {
		s.mode = mode
	}
}

// WithClock overrides the time source for API-created templates and
// submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server serves one page controller. Page actions are serialized; the
// builder and filler they drive are single-user state.
type Server struct {
	ctrl    *controller.Controller
	html    *vanilla.Renderer
	orch    *orchestrator.Orchestrator
	theme   *theme.RendererConfig
	logger  *log.Logger
	enforce bool
	mode    string
	now     func() time.Time

	onSubmission controller.SubmissionHandler

	mu    sync.Mutex
	flash string

	engine *gin.Engine
}

// New builds the server and its routes around ctrl.
func New(ctrl *controller.Controller, options ...Option) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("server: controller is required")
	}
	s := &Server{
		ctrl:   ctrl,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.html == nil {
		renderer, err := vanilla.New(vanilla.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		s.html = renderer
	}
	if s.orch == nil {
		s.orch = orchestrator.New(
			orchestrator.WithStore(ctrl.Store()),
			orchestrator.WithLogger(s.logger),
		)
	}
	cfg, err := s.orch.Theme()
	if err != nil {
		return nil, fmt.Errorf("server: theme: %w", err)
	}
	s.theme = cfg
	if s.mode != "" {
		gin.SetMode(s.mode)
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down, waiting up to
// grace for in-flight requests.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "grace", grace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	r.MaxMultipartMemory = maxUploadBytes

	routes := s.html.Routes()
	r.StaticFS(routes.Assets, http.FS(vanilla.AssetsFS()))
	r.GET("/healthz", s.health)

	pages := r.Group("/", s.serialize)
	{
		pages.GET(routes.Home, s.showCatalog)
		pages.POST(routes.NewTemplate, s.createTemplate)
		pages.GET(routes.Templates+"/export", s.exportTemplates)
		pages.POST(routes.Templates+"/import", s.importTemplates)
		pages.POST(routes.Templates+"/:id/edit", s.editTemplate)
		pages.POST(routes.Templates+"/:id/use", s.useTemplate)
		pages.POST(routes.Templates+"/:id/delete", s.deleteTemplate)

		pages.GET(routes.Builder, s.showBuilder)
		pages.POST(routes.Builder+"/meta", s.updateMeta)
		pages.POST(routes.Builder+"/fields", s.addField)
		pages.POST(routes.Builder+"/fields/:field", s.updateField)
		pages.POST(routes.Builder+"/fields/:field/delete", s.removeField)
		pages.POST(routes.Builder+"/fields/:field/move", s.moveField)
		pages.POST(routes.Builder+"/fields/:field/options", s.addOption)
		pages.POST(routes.Builder+"/fields/:field/options/:index", s.updateOption)
		pages.POST(routes.Builder+"/fields/:field/options/:index/delete", s.removeOption)
		pages.POST(routes.Builder+"/save", s.saveTemplate)

		pages.GET(routes.Fill, s.showFiller)
		pages.POST(routes.Fill, s.submitAnswers)
		pages.POST(routes.Cancel, s.cancel)
		pages.GET(routes.Receipt, s.showReceipt)
	}

	api := r.Group("/api")
	{
		api.GET("/openapi.json", s.apiDocument)
		api.GET("/templates", s.apiListTemplates)
		api.POST("/templates", s.apiCreateTemplate)
		api.GET("/templates/:id", s.apiGetTemplate)
		api.PUT("/templates/:id", s.apiUpdateTemplate)
		api.DELETE("/templates/:id", s.apiDeleteTemplate)
		api.GET("/templates/:id/schema", s.apiTemplateSchema)
		api.GET("/templates/:id/render", s.apiRenderTemplate)
		api.POST("/templates/:id/submissions", s.apiSubmit)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.ctrl.Mode().String()})
}

func (s *Server) serialize(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Next()
}

// setFlash stores a one-shot message shown on the next page. Callers hold s.mu.
func (s *Server) setFlash(message string) {
	s.flash = message
}

func (s *Server) takeFlash() string {
	message := s.flash
	s.flash = ""
	return message
}
