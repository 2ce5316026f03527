package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.DashboardCreatedEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// ActivityConsumer drains dashboard-created events off the bus with a small
// worker pool. Events are deduplicated by event ID and the handler is retried
// with exponential backoff.
type ActivityConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewActivityConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *ActivityConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &ActivityConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *ActivityConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *ActivityConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ActivityConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *ActivityConsumer) processEvent(event entity.DashboardCreatedEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate dashboard event", "event_id", event.EventID, "dashboard_id", event.DashboardID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to record dashboard activity after retries", "event_id", event.EventID, "dashboard_id", event.DashboardID, "error", err)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}

// ActivityLogger is the default handler: it records dashboard activity to the
// application log.
type ActivityLogger struct{}

func (ActivityLogger) Handle(ctx context.Context, event entity.DashboardCreatedEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}

	slog.Info("dashboard created", "event_id", event.EventID, "dashboard_id", event.DashboardID, "chart_kind", event.Kind)
	return nil
}
