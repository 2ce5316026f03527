package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
	"github.com/PUM13-2023/StatDash/internal/graph/usecase"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgerror"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgrouter"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Preview(ctx context.Context, r *http.Request) (any, error) {
	input, err := decodeBuildRequest(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Preview(ctx, input)
	if err != nil {
		return nil, err
	}

	// no file uploaded yet, nothing to render
	if !result.Ready {
		return nil, nil
	}

	return toChartSpecResponse(result.Spec), nil
}

func (h *HTTPEndpoint) CreateDashboard(ctx context.Context, r *http.Request) (any, error) {
	input, err := decodeBuildRequest(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.CreateDashboard(ctx, input)
	if err != nil {
		return nil, err
	}

	return CreateDashboardResponse{DashboardID: result.DashboardID}, nil
}

func (h *HTTPEndpoint) Dashboard(ctx context.Context, r *http.Request) (any, error) {
	dashboardID := pkgrouter.GetParam(ctx, "id")

	result, err := h.uc.Dashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	return toDashboardResponse(result.Dashboard), nil
}

func (h *HTTPEndpoint) Dashboards(ctx context.Context, r *http.Request) (any, error) {
	query := r.URL.Query()

	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	filter, err := parseDashboardFilter(query.Get("kind"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Dashboards(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	dashboards := make([]DashboardResponse, 0, len(result.Dashboards))
	for _, dashboard := range result.Dashboards {
		dashboards = append(dashboards, toDashboardResponse(dashboard))
	}

	return DashboardsResponse{
		Dashboards: dashboards,
		page:       result.Page,
		pageSize:   result.PageSize,
		total:      result.Total,
	}, nil
}

// Thumbnail is a raw handler because it serves a PNG, not the JSON envelope.
func (h *HTTPEndpoint) Thumbnail(w http.ResponseWriter, r *http.Request) {
	dashboardID := pkgrouter.GetParam(r.Context(), "id")

	png, err := h.uc.Thumbnail(r.Context(), dashboardID)
	if err != nil {
		writeThumbnailError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func writeThumbnailError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "Internal server error"

	var gerr *pkgerror.Error
	if errors.As(err, &gerr) {
		code = gerr.StatusCode()
		msg = gerr.Msg()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func decodeBuildRequest(r *http.Request) (usecase.BuildInput, error) {
	if r.Body == nil {
		return usecase.BuildInput{}, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return usecase.BuildInput{}, pkgerror.NewInvalidFormat()
	}

	return usecase.BuildInput{
		Content:   req.Content,
		Filename:  req.Filename,
		ChartKind: req.ChartKind,
		Title:     req.Title,
	}, nil
}

func parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 1
	pageSize := 10

	if pageRaw != "" {
		value, err := strconv.Atoi(pageRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(sizeRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		if value > 100 {
			value = 100
		}
		pageSize = value
	}

	return page, pageSize, nil
}

func parseDashboardFilter(kindRaw string) (usecase.DashboardFilter, error) {
	filter := usecase.DashboardFilter{}

	if kindRaw == "" {
		return filter, nil
	}

	for _, value := range strings.Split(kindRaw, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		kind, err := parseChartKind(value)
		if err != nil {
			return filter, err
		}
		filter.Kinds = append(filter.Kinds, kind)
	}

	return filter, nil
}

func parseChartKind(value string) (entity.ChartKind, error) {
	switch strings.ToLower(value) {
	case string(entity.ChartKindLine):
		return entity.ChartKindLine, nil
	case string(entity.ChartKindScatter):
		return entity.ChartKindScatter, nil
	case string(entity.ChartKindHistogram):
		return entity.ChartKindHistogram, nil
	default:
		return "", pkgerror.NewInvalidInput(errors.New("invalid kind filter"))
	}
}

func toChartSpecResponse(spec entity.ChartSpec) ChartSpecResponse {
	x := spec.Series.X
	if x == nil {
		x = []float64{}
	}
	y := spec.Series.Y
	if y == nil {
		y = []float64{}
	}

	return ChartSpecResponse{
		Kind:   spec.Kind,
		Title:  spec.Title,
		Series: SeriesResponse{X: x, Y: y},
	}
}

func toDashboardResponse(dashboard entity.Dashboard) DashboardResponse {
	return DashboardResponse{
		DashboardID: dashboard.ID,
		Title:       dashboard.Title,
		Status:      dashboard.Status,
		Spec:        toChartSpecResponse(dashboard.Spec),
		CreatedAt:   dashboard.CreatedAt,
		UpdatedAt:   dashboard.UpdatedAt,
	}
}
