package graph

import (
	"context"
	"time"

	"github.com/PUM13-2023/StatDash/internal/graph/event"
	"github.com/PUM13-2023/StatDash/internal/graph/inbound"
	"github.com/PUM13-2023/StatDash/internal/graph/render"
	"github.com/PUM13-2023/StatDash/internal/graph/store"
	"github.com/PUM13-2023/StatDash/internal/graph/usecase"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgconfig"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgrouter"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgroutine"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	storage := store.NewInMemoryStore()
	bus := event.NewBus(256)
	consumer := event.NewActivityConsumer(bus, event.ActivityLogger{}, event.ConsumerConfig{
		Workers:     2,
		MaxRetries:  3,
		BaseBackoff: 200 * time.Millisecond,
	})
	consumer.Start()

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	seq, err := pkguid.NewSnowflake()
	if err != nil {
		return nil, err
	}

	renderer := render.New(render.Config{
		Width:         int(dep.Config.GetInt("modules.graph.chart.width")),
		Height:        int(dep.Config.GetInt("modules.graph.chart.height")),
		HistogramBins: int(dep.Config.GetInt("modules.graph.chart.histogram_bins")),
	})

	uc := usecase.New(usecase.Dependency{
		Store:    storage,
		Events:   bus,
		Runner:   dep.Goroutine,
		Renderer: renderer,
		Clock:    nil,
		ID:       dep.ID,
		Seq:      seq,
		RootCtx:  dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}
