package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgerror"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkguid"
)

type Store interface {
	CreateDashboard(ctx context.Context, dashboard entity.Dashboard) error
	UpdateMeta(ctx context.Context, dashboardID string, fn func(d *entity.Dashboard)) error
	SaveThumbnail(ctx context.Context, dashboardID string, png []byte) error
	GetDashboard(ctx context.Context, dashboardID string) (entity.Dashboard, error)
	GetThumbnail(ctx context.Context, dashboardID string) ([]byte, entity.Dashboard, error)
	ListDashboards(ctx context.Context, filter DashboardFilter, page, pageSize int) ([]entity.Dashboard, int, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.DashboardCreatedEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

// Renderer turns a chart spec into a PNG image.
type Renderer interface {
	Render(spec entity.ChartSpec) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store    Store
	Events   EventPublisher
	Runner   Runner
	Renderer Renderer
	Clock    Clock
	ID       pkguid.StringID
	Seq      pkguid.NumberID
	RootCtx  context.Context
}

type Usecase struct {
	store    Store
	events   EventPublisher
	runner   Runner
	renderer Renderer
	clock    Clock
	id       pkguid.StringID
	seq      pkguid.NumberID
	rootCtx  context.Context
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &Usecase{
		store:    dep.Store,
		events:   dep.Events,
		runner:   dep.Runner,
		renderer: dep.Renderer,
		clock:    clock,
		id:       dep.ID,
		seq:      dep.Seq,
		rootCtx:  root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Preview runs the decode -> parse -> build pipeline over one upload event.
// An empty content means no file has been uploaded yet; that is the expected
// initial state and returns a not-ready result instead of an error.
func (u *Usecase) Preview(ctx context.Context, in BuildInput) (PreviewResult, error) {
	if in.Content == "" {
		return PreviewResult{Ready: false}, nil
	}

	spec, err := u.buildFromUpload(ctx, in)
	if err != nil {
		return PreviewResult{}, err
	}

	return PreviewResult{Ready: true, Spec: spec}, nil
}

// CreateDashboard builds the chart spec, persists it, announces the new
// dashboard on the event bus, and schedules the thumbnail render in the
// background.
func (u *Usecase) CreateDashboard(ctx context.Context, in BuildInput) (CreateDashboardResult, error) {
	if u.store == nil || u.id == nil || u.seq == nil || u.runner == nil || u.renderer == nil {
		return CreateDashboardResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if in.Content == "" {
		return CreateDashboardResult{}, pkgerror.NewInvalidInput(errors.New("no file uploaded"))
	}

	spec, err := u.buildFromUpload(ctx, in)
	if err != nil {
		return CreateDashboardResult{}, err
	}

	now := u.clock.Now().Unix()
	dashboardID := strconv.FormatInt(u.seq.Generate(), 10)
	if err := u.store.CreateDashboard(ctx, entity.Dashboard{
		ID:        dashboardID,
		Title:     spec.Title,
		Spec:      spec,
		Status:    entity.DashboardStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return CreateDashboardResult{}, normalizeErr(err)
	}

	if u.events != nil {
		event := entity.DashboardCreatedEvent{
			EventID:     u.id.Generate(),
			DashboardID: dashboardID,
			Kind:        spec.Kind,
		}
		if pubErr := u.events.Publish(ctx, event); pubErr != nil {
			slog.WarnContext(ctx, "failed to publish event", "dashboard_id", dashboardID, "event_id", event.EventID, "error", pubErr)
		}
	}

	u.runner.Go(u.rootCtx, func(ctx context.Context) error {
		if err := u.renderThumbnail(ctx, dashboardID, spec); err != nil {
			slog.ErrorContext(ctx, "thumbnail rendering failed", "dashboard_id", dashboardID, "error", err)
			return err
		}
		return nil
	})

	return CreateDashboardResult{DashboardID: dashboardID}, nil
}

func (u *Usecase) Dashboard(ctx context.Context, dashboardID string) (DashboardResult, error) {
	if dashboardID == "" {
		return DashboardResult{}, pkgerror.NewInvalidInput(errors.New("dashboard_id is required"))
	}

	dashboard, err := u.store.GetDashboard(ctx, dashboardID)
	if err != nil {
		return DashboardResult{}, mapStoreErr(err)
	}

	return DashboardResult{Dashboard: dashboard}, nil
}

func (u *Usecase) Dashboards(ctx context.Context, filter DashboardFilter, page, pageSize int) (DashboardsResult, error) {
	if page < 1 || pageSize < 1 {
		return DashboardsResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	dashboards, total, err := u.store.ListDashboards(ctx, filter, page, pageSize)
	if err != nil {
		return DashboardsResult{}, mapStoreErr(err)
	}

	return DashboardsResult{
		Dashboards: dashboards,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
	}, nil
}

func (u *Usecase) Thumbnail(ctx context.Context, dashboardID string) ([]byte, error) {
	if dashboardID == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("dashboard_id is required"))
	}

	png, dashboard, err := u.store.GetThumbnail(ctx, dashboardID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if dashboard.Status != entity.DashboardStatusReady || len(png) == 0 {
		return nil, pkgerror.NewBusiness("thumbnail is not ready", pkgerror.CodeNotFound)
	}

	return png, nil
}

// buildFromUpload is the pure pipeline: decode the transport payload, parse
// the CSV into a table, and build the requested chart spec. Each stage fails
// fast; no partial output crosses a stage boundary.
func (u *Usecase) buildFromUpload(ctx context.Context, in BuildInput) (entity.ChartSpec, error) {
	_, data, err := decodeUpload(in.Content)
	if err != nil {
		slog.WarnContext(ctx, "failed to decode upload", "filename", in.Filename, "error", err)
		return entity.ChartSpec{}, mapPipelineErr(err)
	}

	table, err := parseTable(data)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse csv", "filename", in.Filename, "error", err)
		return entity.ChartSpec{}, mapPipelineErr(err)
	}

	spec, err := buildChart(table, entity.ChartKind(in.ChartKind), in.Title)
	if err != nil {
		slog.WarnContext(ctx, "failed to build chart", "filename", in.Filename, "chart_kind", in.ChartKind, "error", err)
		return entity.ChartSpec{}, mapPipelineErr(err)
	}

	return spec, nil
}

func (u *Usecase) renderThumbnail(ctx context.Context, dashboardID string, spec entity.ChartSpec) error {
	startedAt := u.clock.Now().Unix()
	if err := u.store.UpdateMeta(ctx, dashboardID, func(d *entity.Dashboard) {
		d.Status = entity.DashboardStatusRendering
		d.UpdatedAt = startedAt
	}); err != nil {
		return err
	}

	png, err := u.safeRender(spec)

	status := entity.DashboardStatusReady
	errMsg := ""
	if err != nil {
		status = entity.DashboardStatusFailed
		errMsg = err.Error()
	} else if saveErr := u.store.SaveThumbnail(ctx, dashboardID, png); saveErr != nil {
		status = entity.DashboardStatusFailed
		errMsg = saveErr.Error()
		err = saveErr
	}

	endedAt := u.clock.Now().Unix()
	if metaErr := u.store.UpdateMeta(ctx, dashboardID, func(d *entity.Dashboard) {
		d.Status = status
		d.Err = errMsg
		d.UpdatedAt = endedAt
	}); metaErr != nil {
		return metaErr
	}

	return err
}

// safeRender shields the status machine from a panicking renderer. Without
// it the panic unwinds past the FAILED update and the dashboard is stuck at
// RENDERING forever.
func (u *Usecase) safeRender(spec entity.ChartSpec) (png []byte, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("renderer panic: %v", rvr)
		}
	}()

	return u.renderer.Render(spec)
}

// mapPipelineErr translates the typed pipeline errors into the structured
// errors the HTTP edge knows how to present. The underlying error stays
// wrapped so callers can still match on the concrete type.
func mapPipelineErr(err error) error {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return pkgerror.NewValidation(err, "could not read file", pkgerror.CodeInvalidFormat)
	}

	if errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrInvalidEncoding) {
		return pkgerror.NewValidation(err, "could not parse csv file", pkgerror.CodeInvalidFormat)
	}
	var rowErr *MalformedRowError
	if errors.As(err, &rowErr) {
		return pkgerror.NewValidation(err, rowErr.Error(), pkgerror.CodeInvalidFormat)
	}

	var missingErr *MissingColumnError
	if errors.As(err, &missingErr) {
		return pkgerror.NewValidation(err, missingErr.Error(), pkgerror.CodeInvalidInput)
	}
	var kindErr *UnknownChartKindError
	if errors.As(err, &kindErr) {
		return pkgerror.NewValidation(err, kindErr.Error(), pkgerror.CodeInvalidInput)
	}
	var numErr *NonNumericColumnError
	if errors.As(err, &numErr) {
		return pkgerror.NewValidation(err, numErr.Error(), pkgerror.CodeInvalidInput)
	}

	return normalizeErr(err)
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("dashboard not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
