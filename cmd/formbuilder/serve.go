package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/pkg/controller"
)

type ServeCmd struct {
	Addr string `short:"a" help:"Listen address, overriding the configured one."`
}

func (c *ServeCmd) Run(rt *runtime) error {
	addr := rt.cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	html, err := rt.htmlRenderer()
	if err != nil {
		return err
	}
	orch, err := rt.orchestrator(html)
	if err != nil {
		return err
	}
	ctrl := controller.New(rt.store,
		controller.WithLogger(rt.logger),
		controller.WithEnforcement(rt.cfg.Validation.Enforce),
	)
	srv, err := server.New(ctrl,
		server.WithLogger(rt.logger),
		server.WithRenderer(html),
		server.WithOrchestrator(orch),
		server.WithEnforcement(rt.cfg.Validation.Enforce),
		server.WithMode(rt.cfg.Server.Mode),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, addr, rt.cfg.Server.ShutdownGrace)
}
