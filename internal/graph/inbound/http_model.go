package inbound

import (
	"net/http"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

// BuildRequest mirrors one upload event from the browser: the transport
// encoded file content, the original file name, and the chosen chart kind.
type BuildRequest struct {
	Content   string `json:"content"`
	Filename  string `json:"filename"`
	ChartKind string `json:"chart_kind"`
	Title     string `json:"title,omitempty"`
}

type SeriesResponse struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

type ChartSpecResponse struct {
	Kind   entity.ChartKind `json:"kind"`
	Title  string           `json:"title"`
	Series SeriesResponse   `json:"series"`
}

type CreateDashboardResponse struct {
	DashboardID string `json:"dashboard_id"`
}

func (CreateDashboardResponse) StatusCode() int {
	return http.StatusAccepted
}

func (CreateDashboardResponse) Message() string {
	return "dashboard creation accepted"
}

type DashboardResponse struct {
	DashboardID string                 `json:"dashboard_id"`
	Title       string                 `json:"title"`
	Status      entity.DashboardStatus `json:"status"`
	Spec        ChartSpecResponse      `json:"spec"`
	CreatedAt   int64                  `json:"created_at"`
	UpdatedAt   int64                  `json:"updated_at"`
}

type DashboardsResponse struct {
	Dashboards []DashboardResponse `json:"dashboards"`
	page       int
	pageSize   int
	total      int
}

func (r DashboardsResponse) Meta() map[string]any {
	return map[string]any{
		"page":      r.page,
		"page_size": r.pageSize,
		"total":     r.total,
	}
}
