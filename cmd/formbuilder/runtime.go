package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// defaultThemeName names the manifest built from configured tokens when the
// configuration does not name one.
const defaultThemeName = "default"

// runtime carries what every command needs: resolved configuration, the
// logger and a seeded template store.
type runtime struct {
	cfg    config.Config
	logger *log.Logger
	store  store.Store
	out    io.Writer
	errOut io.Writer

	// promptDriver replaces the interactive terminal driver of the fill
	// command.
	promptDriver tui.PromptDriver
}

func newRuntime(globals Globals, stdout, stderr io.Writer) (*runtime, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:     globals.Config,
		EnvFiles: globals.EnvFile,
		Overrides: config.Config{
			Log:        config.LogConfig{Level: globals.LogLevel},
			Templates:  config.TemplatesConfig{SeedFile: globals.Seed},
			Validation: config.ValidationConfig{Enforce: globals.Enforce},
		},
	})
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.ShowCaller = cfg.Log.Caller
	logCfg.JSON = cfg.Log.JSON
	logCfg.Output = stderr
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store.NewMemory(),
		out:    stdout,
		errOut: stderr,
	}
	if seed := cfg.Templates.SeedFile; seed != "" {
		n, err := store.LoadSeed(context.Background(), rt.store, seed)
		if err != nil {
			return nil, err
		}
		logger.Debug("templates seeded", "file", seed, "count", n)
	}
	return rt, nil
}

// htmlRenderer builds the page renderer from the templates settings.
func (rt *runtime) htmlRenderer() (*vanilla.Renderer, error) {
	opts := []vanilla.Option{
		vanilla.WithLogger(rt.logger),
		vanilla.WithTitle(rt.cfg.Server.Title),
		vanilla.WithReload(rt.cfg.Templates.Reload),
	}
	if dir := rt.cfg.Templates.Dir; dir != "" {
		opts = append(opts, vanilla.WithTemplatesDir(dir))
	}
	return vanilla.New(opts...)
}

// orchestrator registers the page renderer and the terminal renderer and
// wires the configured theme.
func (rt *runtime) orchestrator(html *vanilla.Renderer, tuiOptions ...tui.Option) (*orchestrator.Orchestrator, error) {
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	tuiOpts := []tui.Option{
		tui.WithLogger(rt.logger),
		tui.WithEnforcement(rt.cfg.Validation.Enforce),
	}
	if rt.promptDriver != nil {
		tuiOpts = append(tuiOpts, tui.WithPromptDriver(rt.promptDriver))
	}
	terminal, err := tui.New(append(tuiOpts, tuiOptions...)...)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(terminal); err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithStore(rt.store),
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(rt.logger),
	}
	selector, err := themeSelector(rt.cfg.Theme)
	if err != nil {
		return nil, err
	}
	if selector != nil {
		opts = append(opts,
			orchestrator.WithThemeSelector(selector),
			orchestrator.WithTheme(rt.cfg.Theme.Name, rt.cfg.Theme.Variant),
		)
	}
	return orchestrator.New(opts...), nil
}

// themeSelector turns configured tokens into a single-manifest selector. It
// returns nil when no theme is configured.
func themeSelector(cfg config.ThemeConfig) (*orchestrator.ManifestSelector, error) {
	if strings.TrimSpace(cfg.Name) == "" && len(cfg.Tokens) == 0 {
		return nil, nil
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = defaultThemeName
	}
	manifest := &theme.Manifest{
		Name:   name,
		Tokens: cfg.Tokens,
	}
	if variant := strings.TrimSpace(cfg.Variant); variant != "" {
		manifest.Variants = map[string]theme.Variant{variant: {}}
	}
	selector, err := orchestrator.NewManifestSelector(manifest)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	selector.SetDefaults(name, cfg.Variant)
	return selector, nil
}

// template looks up id in the store.
func (rt *runtime) template(ctx context.Context, id string) (model.Template, error) {
	tmpl, err := rt.store.Get(ctx, id)
	if err != nil {
		return model.Template{}, fmt.Errorf("template %q: %w", id, err)
	}
	return tmpl, nil
}
