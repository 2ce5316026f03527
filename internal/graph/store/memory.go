package store

import (
	"context"
	"slices"
	"sync"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
	"github.com/PUM13-2023/StatDash/internal/graph/usecase"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgerror"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	dashboards map[string]*dashboardRecord
	order      []string // IDs in creation order
}

type dashboardRecord struct {
	mu        sync.RWMutex
	meta      entity.Dashboard
	thumbnail []byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		dashboards: make(map[string]*dashboardRecord),
	}
}

func (s *InMemoryStore) CreateDashboard(ctx context.Context, dashboard entity.Dashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dashboards[dashboard.ID]; exists {
		return pkgerror.NewBusiness("dashboard already exists", pkgerror.CodeConflict)
	}

	s.dashboards[dashboard.ID] = &dashboardRecord{
		meta: dashboard,
	}
	s.order = append(s.order, dashboard.ID)

	return nil
}

func (s *InMemoryStore) UpdateMeta(ctx context.Context, dashboardID string, fn func(d *entity.Dashboard)) error {
	rec, err := s.get(dashboardID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	fn(&rec.meta)

	return nil
}

func (s *InMemoryStore) SaveThumbnail(ctx context.Context, dashboardID string, png []byte) error {
	rec, err := s.get(dashboardID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.thumbnail = slices.Clone(png)

	return nil
}

func (s *InMemoryStore) GetDashboard(ctx context.Context, dashboardID string) (entity.Dashboard, error) {
	rec, err := s.get(dashboardID)
	if err != nil {
		return entity.Dashboard{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return rec.meta, nil
}

func (s *InMemoryStore) GetThumbnail(ctx context.Context, dashboardID string) ([]byte, entity.Dashboard, error) {
	rec, err := s.get(dashboardID)
	if err != nil {
		return nil, entity.Dashboard{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return slices.Clone(rec.thumbnail), rec.meta, nil
}

// ListDashboards returns dashboards newest first.
func (s *InMemoryStore) ListDashboards(ctx context.Context, filter usecase.DashboardFilter, page, pageSize int) ([]entity.Dashboard, int, error) {
	s.mu.RLock()
	ids := slices.Clone(s.order)
	records := make([]*dashboardRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, s.dashboards[id])
	}
	s.mu.RUnlock()

	slices.Reverse(records)

	total := 0
	start := (page - 1) * pageSize
	end := start + pageSize
	items := make([]entity.Dashboard, 0, pageSize)

	for _, rec := range records {
		rec.mu.RLock()
		meta := rec.meta
		rec.mu.RUnlock()

		if !filter.Matches(meta) {
			continue
		}

		if total >= start && total < end {
			items = append(items, meta)
		}
		total++
	}

	return items, total, nil
}

func (s *InMemoryStore) get(dashboardID string) (*dashboardRecord, error) {
	s.mu.RLock()
	rec, ok := s.dashboards[dashboardID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
