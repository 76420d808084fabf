package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// errLintFailed is returned by lint when any template has issues.
var errLintFailed = errors.New("lint found issues")

type ListCmd struct{}

func (c *ListCmd) Run(rt *runtime) error {
	templates, err := rt.store.List(context.Background())
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Fprintln(rt.out, styles.Muted.Render("No templates. Load some with --seed."))
		return nil
	}
	t := newTable("ID", "NAME", "FIELDS", "UPDATED")
	for _, tmpl := range templates {
		updated := "-"
		if !tmpl.UpdatedAt.IsZero() {
			updated = tmpl.UpdatedAt.Format("2006-01-02 15:04")
		}
		t.Row(tmpl.ID, tmpl.Name, strconv.Itoa(len(tmpl.Fields)), updated)
	}
	fmt.Fprintln(rt.out, t.Render())
	return nil
}

type LintCmd struct {
	Files []string `arg:"" optional:"" type:"existingfile" help:"Template documents to lint instead of the store."`
}

func (c *LintCmd) Run(rt *runtime) error {
	templates, err := c.templates(rt)
	if err != nil {
		return err
	}
	failed := 0
	for _, tmpl := range templates {
		result := validation.Lint(tmpl)
		label := styles.Title.Render(tmpl.ID)
		if result.Valid {
			fmt.Fprintf(rt.out, "%s %s\n", styles.OK.Render("ok  "), label)
			continue
		}
		failed++
		fmt.Fprintf(rt.out, "%s %s\n", styles.Error.Render("fail"), label)
		for _, issue := range result.Issues {
			field := issue.Field
			if field == "" {
				field = "template"
			}
			fmt.Fprintf(rt.out, "     %s %s %s\n", styles.Muted.Render(issue.Code), field, issue.Message)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w in %d of %d templates", errLintFailed, failed, len(templates))
	}
	return nil
}

func (c *LintCmd) templates(rt *runtime) ([]model.Template, error) {
	if len(c.Files) == 0 {
		return rt.store.List(context.Background())
	}
	var out []model.Template
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		decoded, err := model.DecodeTemplates(data, model.FormatFromPath(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

type SchemaCmd struct {
	ID      string `arg:"" optional:"" help:"Template id. Omit with --openapi to describe every template."`
	OpenAPI bool   `name:"openapi" help:"Print an OpenAPI document with a submission operation per template."`
}

func (c *SchemaCmd) Run(rt *runtime) error {
	ctx := context.Background()
	var doc any
	switch {
	case c.OpenAPI:
		templates, err := rt.store.List(ctx)
		if err != nil {
			return err
		}
		if c.ID != "" {
			tmpl, err := rt.template(ctx, c.ID)
			if err != nil {
				return err
			}
			templates = []model.Template{tmpl}
		}
		document, err := openapi.Document(ctx, templates, openapi.DocumentOptions{
			Title:    rt.cfg.Server.Title,
			Version:  version,
			BasePath: "/api/templates",
		})
		if err != nil {
			return err
		}
		doc = document
	case c.ID == "":
		return errors.New("a template id is required without --openapi")
	default:
		tmpl, err := rt.template(ctx, c.ID)
		if err != nil {
			return err
		}
		doc = openapi.SubmissionSchema(tmpl)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.out, string(data))
	return nil
}

type RenderCmd struct {
	ID       string `arg:"" help:"Template id."`
	Renderer string `short:"r" default:"vanilla" help:"Renderer name."`
	Mode     string `short:"m" default:"preview" enum:"preview,fill" help:"Render mode (preview, fill)."`
	Action   string `help:"Form action URL in fill mode."`
	Theme    string `help:"Theme name, overriding the configured one."`
	Variant  string `help:"Theme variant, overriding the configured one."`
	Output   string `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (c *RenderCmd) Run(rt *runtime) error {
	html, err := rt.htmlRenderer()
	if err != nil {
		return err
	}
	orch, err := rt.orchestrator(html)
	if err != nil {
		return err
	}
	out, err := orch.Generate(context.Background(), orchestrator.Request{
		TemplateID: c.ID,
		Renderer:   c.Renderer,
		RenderOptions: render.RenderOptions{
			Mode:   render.Mode(c.Mode),
			Action: c.Action,
		},
		ThemeName:    c.Theme,
		ThemeVariant: c.Variant,
	})
	if err != nil {
		return err
	}
	return writeOutput(rt, c.Output, out)
}

type FillCmd struct {
	ID     string `arg:"" help:"Template id."`
	Format string `short:"f" default:"pretty" enum:"json,form,pretty" help:"Answer output format (json, form, pretty)."`
	Output string `short:"o" type:"path" help:"Write answers to this file instead of stdout."`
}

func (c *FillCmd) Run(rt *runtime) error {
	format, ok := tui.ParseOutputFormat(c.Format)
	if !ok {
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	html, err := rt.htmlRenderer()
	if err != nil {
		return err
	}
	orch, err := rt.orchestrator(html, tui.WithOutputFormat(format))
	if err != nil {
		return err
	}
	out, err := orch.Generate(context.Background(), orchestrator.Request{
		TemplateID:    c.ID,
		Renderer:      tui.Name,
		RenderOptions: render.RenderOptions{Mode: render.ModeFill},
	})
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(rt.errOut, styles.Muted.Render("Aborted."))
			return nil
		}
		return err
	}
	return writeOutput(rt, c.Output, out)
}

type ExportCmd struct {
	Format string `short:"f" default:"json" enum:"json,yaml" help:"Document format (json, yaml)."`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (c *ExportCmd) Run(rt *runtime) error {
	data, err := store.Export(context.Background(), rt.store, model.Format(c.Format))
	if err != nil {
		return err
	}
	return writeOutput(rt, c.Output, data)
}

func writeOutput(rt *runtime, path string, data []byte) error {
	if path == "" {
		_, err := rt.out.Write(data)
		if err == nil && !strings.HasSuffix(string(data), "\n") {
			_, err = fmt.Fprintln(rt.out)
		}
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(rt.errOut, "%s %s\n", styles.OK.Render("wrote"), path)
	return nil
}
