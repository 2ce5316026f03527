package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/PUM13-2023/StatDash/internal/graph"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.graph.enabled") {
		closer, err := graph.New(graph.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
		})
		if err != nil {
			slog.Error("failed to init module graph", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Graph"] = closer
		}
	}
}
