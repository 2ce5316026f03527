package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

type handlerFunc func(ctx context.Context, event entity.DashboardCreatedEvent) error

func (h handlerFunc) Handle(ctx context.Context, event entity.DashboardCreatedEvent) error {
	return h(ctx, event)
}

func TestActivityConsumerRetriesAndIdempotent(t *testing.T) {
	bus := NewBus(10)

	var attempts int32
	done := make(chan struct{})
	handler := handlerFunc(func(ctx context.Context, event entity.DashboardCreatedEvent) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("temporary failure")
		}
		select {
		case <-done:
		default:
			close(done)
		}
		return nil
	})

	consumer := NewActivityConsumer(bus, handler, ConsumerConfig{
		Workers:     1,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	})
	consumer.Start()

	event := entity.DashboardCreatedEvent{EventID: "evt-1", DashboardID: "d-1", Kind: entity.ChartKindLine}
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish event: %v", err)
	}
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish duplicate: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler")
	}

	if err := consumer.Stop(context.Background()); err != nil {
		t.Fatalf("stop consumer: %v", err)
	}

	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus(1)
	bus.Close()

	err := bus.Publish(context.Background(), entity.DashboardCreatedEvent{EventID: "evt-1"})
	if !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}

func TestActivityLoggerRequiresEventID(t *testing.T) {
	if err := (ActivityLogger{}).Handle(context.Background(), entity.DashboardCreatedEvent{}); err == nil {
		t.Fatal("expected error for missing event id")
	}

	event := entity.DashboardCreatedEvent{EventID: "evt-1", DashboardID: "d-1", Kind: entity.ChartKindScatter}
	if err := (ActivityLogger{}).Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
}
