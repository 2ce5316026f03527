package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgerror"
)

type testStore struct {
	mu         sync.RWMutex
	dashboards map[string]entity.Dashboard
	thumbnails map[string][]byte
	order      []string
}

func newTestStore() *testStore {
	return &testStore{
		dashboards: make(map[string]entity.Dashboard),
		thumbnails: make(map[string][]byte),
	}
}

func (s *testStore) CreateDashboard(ctx context.Context, dashboard entity.Dashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards[dashboard.ID] = dashboard
	s.order = append(s.order, dashboard.ID)
	return nil
}

func (s *testStore) UpdateMeta(ctx context.Context, dashboardID string, fn func(d *entity.Dashboard)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashboard, ok := s.dashboards[dashboardID]
	if !ok {
		return pkgerror.ErrNotFound
	}
	fn(&dashboard)
	s.dashboards[dashboardID] = dashboard
	return nil
}

func (s *testStore) SaveThumbnail(ctx context.Context, dashboardID string, png []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dashboards[dashboardID]; !ok {
		return pkgerror.ErrNotFound
	}
	s.thumbnails[dashboardID] = png
	return nil
}

func (s *testStore) GetDashboard(ctx context.Context, dashboardID string) (entity.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dashboard, ok := s.dashboards[dashboardID]
	if !ok {
		return entity.Dashboard{}, pkgerror.ErrNotFound
	}
	return dashboard, nil
}

func (s *testStore) GetThumbnail(ctx context.Context, dashboardID string) ([]byte, entity.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dashboard, ok := s.dashboards[dashboardID]
	if !ok {
		return nil, entity.Dashboard{}, pkgerror.ErrNotFound
	}
	return s.thumbnails[dashboardID], dashboard, nil
}

func (s *testStore) ListDashboards(ctx context.Context, filter DashboardFilter, page, pageSize int) ([]entity.Dashboard, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := (page - 1) * pageSize
	end := start + pageSize
	total := 0
	items := make([]entity.Dashboard, 0, pageSize)
	for _, id := range s.order {
		dashboard := s.dashboards[id]
		if !filter.Matches(dashboard) {
			continue
		}
		if total >= start && total < end {
			items = append(items, dashboard)
		}
		total++
	}
	return items, total, nil
}

type testPublisher struct {
	mu     sync.Mutex
	events []entity.DashboardCreatedEvent
}

func (p *testPublisher) Publish(ctx context.Context, event entity.DashboardCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// syncRunner runs scheduled functions inline so tests stay deterministic.
type syncRunner struct{}

func (syncRunner) Go(ctx context.Context, f func(ctx context.Context) error) {
	_ = f(ctx)
}

type testRenderer struct {
	err      error
	panicMsg string
	calls    int
}

func (r *testRenderer) Render(spec entity.ChartSpec) ([]byte, error) {
	r.calls++
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png-bytes"), nil
}

type testID struct {
	mu sync.Mutex
	n  int
}

func (t *testID) Generate() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	return fmt.Sprintf("id-%d", t.n)
}

type testSeq struct {
	mu sync.Mutex
	n  int64
}

func (t *testSeq) Generate() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	return t.n
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func newTestUsecase(store *testStore, events *testPublisher, renderer *testRenderer) *Usecase {
	return New(Dependency{
		Store:    store,
		Events:   events,
		Runner:   syncRunner{},
		Renderer: renderer,
		Clock:    fixedClock{now: time.Unix(123, 0)},
		ID:       &testID{},
		Seq:      &testSeq{},
		RootCtx:  context.Background(),
	})
}

func TestPreviewFullPipeline(t *testing.T) {
	uc := newTestUsecase(newTestStore(), &testPublisher{}, &testRenderer{})

	result, err := uc.Preview(context.Background(), BuildInput{
		Content:   "text/csv,eCx5CjEsMgozLDQ=",
		Filename:  "data.csv",
		ChartKind: "scatter",
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	if !result.Ready {
		t.Fatal("expected ready result")
	}
	if result.Spec.Kind != entity.ChartKindScatter {
		t.Fatalf("unexpected kind: %s", result.Spec.Kind)
	}
	if result.Spec.Title != "Test graph from csv file" {
		t.Fatalf("unexpected title: %q", result.Spec.Title)
	}
	if !reflect.DeepEqual(result.Spec.Series.X, []float64{1, 3}) {
		t.Fatalf("unexpected x series: %v", result.Spec.Series.X)
	}
	if !reflect.DeepEqual(result.Spec.Series.Y, []float64{2, 4}) {
		t.Fatalf("unexpected y series: %v", result.Spec.Series.Y)
	}
}

func TestPreviewNotReadyWithoutContent(t *testing.T) {
	uc := newTestUsecase(newTestStore(), &testPublisher{}, &testRenderer{})

	result, err := uc.Preview(context.Background(), BuildInput{ChartKind: "line"})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.Ready {
		t.Fatal("expected not-ready result")
	}
}

func TestPreviewMapsPipelineErrors(t *testing.T) {
	uc := newTestUsecase(newTestStore(), &testPublisher{}, &testRenderer{})

	_, err := uc.Preview(context.Background(), BuildInput{
		Content:   "text/csv,eCx5CjEsMgozLDQ=",
		ChartKind: "pie",
	})

	var kindErr *UnknownChartKindError
	if !errors.As(err, &kindErr) {
		t.Fatalf("expected UnknownChartKindError to stay wrapped, got %v", err)
	}

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if perr.Code() != pkgerror.CodeInvalidInput {
		t.Fatalf("unexpected code: %s", perr.Code())
	}
}

func TestCreateDashboardRendersThumbnail(t *testing.T) {
	store := newTestStore()
	events := &testPublisher{}
	renderer := &testRenderer{}
	uc := newTestUsecase(store, events, renderer)

	result, err := uc.CreateDashboard(context.Background(), BuildInput{
		Content:   "text/csv,eCx5CjEsMgozLDQ=",
		Filename:  "data.csv",
		ChartKind: "line",
	})
	if err != nil {
		t.Fatalf("create dashboard: %v", err)
	}
	if result.DashboardID == "" {
		t.Fatal("expected dashboard id")
	}

	dashboard, err := store.GetDashboard(context.Background(), result.DashboardID)
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if dashboard.Status != entity.DashboardStatusReady {
		t.Fatalf("expected status ready, got %s", dashboard.Status)
	}
	if renderer.calls != 1 {
		t.Fatalf("expected 1 render call, got %d", renderer.calls)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	if events.events[0].DashboardID != result.DashboardID {
		t.Fatalf("event has wrong dashboard id: %s", events.events[0].DashboardID)
	}

	png, _, err := store.GetThumbnail(context.Background(), result.DashboardID)
	if err != nil {
		t.Fatalf("get thumbnail: %v", err)
	}
	if string(png) != "png-bytes" {
		t.Fatalf("unexpected thumbnail: %q", png)
	}
}

func TestCreateDashboardMarksFailedRender(t *testing.T) {
	store := newTestStore()
	renderer := &testRenderer{err: errors.New("render exploded")}
	uc := newTestUsecase(store, &testPublisher{}, renderer)

	result, err := uc.CreateDashboard(context.Background(), BuildInput{
		Content:   "text/csv,eCx5CjEsMgozLDQ=",
		ChartKind: "line",
	})
	if err != nil {
		t.Fatalf("create dashboard: %v", err)
	}

	dashboard, err := store.GetDashboard(context.Background(), result.DashboardID)
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if dashboard.Status != entity.DashboardStatusFailed {
		t.Fatalf("expected status failed, got %s", dashboard.Status)
	}
	if dashboard.Err == "" {
		t.Fatal("expected error message on dashboard")
	}

	if _, thumbErr := uc.Thumbnail(context.Background(), result.DashboardID); thumbErr == nil {
		t.Fatal("expected thumbnail error for failed render")
	}
}

func TestCreateDashboardSurvivesRenderPanic(t *testing.T) {
	store := newTestStore()
	renderer := &testRenderer{panicMsg: "image backend gone"}
	uc := newTestUsecase(store, &testPublisher{}, renderer)

	result, err := uc.CreateDashboard(context.Background(), BuildInput{
		Content:   "text/csv,eCx5CjEsMgozLDQ=",
		ChartKind: "line",
	})
	if err != nil {
		t.Fatalf("create dashboard: %v", err)
	}

	dashboard, err := store.GetDashboard(context.Background(), result.DashboardID)
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if dashboard.Status != entity.DashboardStatusFailed {
		t.Fatalf("expected status failed, got %s", dashboard.Status)
	}
	if !strings.Contains(dashboard.Err, "image backend gone") {
		t.Fatalf("expected panic message on dashboard, got %q", dashboard.Err)
	}

	if _, thumbErr := uc.Thumbnail(context.Background(), result.DashboardID); thumbErr == nil {
		t.Fatal("expected thumbnail error after renderer panic")
	}
}

func TestCreateDashboardRejectsEmptyContent(t *testing.T) {
	uc := newTestUsecase(newTestStore(), &testPublisher{}, &testRenderer{})

	_, err := uc.CreateDashboard(context.Background(), BuildInput{ChartKind: "line"})

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if perr.Code() != pkgerror.CodeInvalidInput {
		t.Fatalf("unexpected code: %s", perr.Code())
	}
}

func TestDashboardsPaginationAndFilter(t *testing.T) {
	store := newTestStore()
	uc := newTestUsecase(store, &testPublisher{}, &testRenderer{})

	for i, kind := range []string{"line", "scatter", "line"} {
		_, err := uc.CreateDashboard(context.Background(), BuildInput{
			Content:   "text/csv,eCx5CjEsMgozLDQ=",
			Filename:  fmt.Sprintf("file-%d.csv", i),
			ChartKind: kind,
		})
		if err != nil {
			t.Fatalf("create dashboard %d: %v", i, err)
		}
	}

	result, err := uc.Dashboards(context.Background(), DashboardFilter{Kinds: []entity.ChartKind{entity.ChartKindLine}}, 1, 10)
	if err != nil {
		t.Fatalf("dashboards: %v", err)
	}
	if result.Total != 2 || len(result.Dashboards) != 2 {
		t.Fatalf("expected 2 line dashboards, got total=%d len=%d", result.Total, len(result.Dashboards))
	}

	if _, err := uc.Dashboards(context.Background(), DashboardFilter{}, 0, 10); err == nil {
		t.Fatal("expected pagination error")
	}
}

func TestDashboardNotFound(t *testing.T) {
	uc := newTestUsecase(newTestStore(), &testPublisher{}, &testRenderer{})

	_, err := uc.Dashboard(context.Background(), "missing")

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if perr.Code() != pkgerror.CodeNotFound {
		t.Fatalf("unexpected code: %s", perr.Code())
	}
}
