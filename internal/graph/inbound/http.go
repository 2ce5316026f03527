package inbound

import (
	"context"
	"net/http"

	"github.com/PUM13-2023/StatDash/internal/graph/usecase"
	"github.com/PUM13-2023/StatDash/internal/pkg/pkgrouter"
)

type uc interface {
	Preview(ctx context.Context, in usecase.BuildInput) (usecase.PreviewResult, error)
	CreateDashboard(ctx context.Context, in usecase.BuildInput) (usecase.CreateDashboardResult, error)
	Dashboard(ctx context.Context, dashboardID string) (usecase.DashboardResult, error)
	Dashboards(ctx context.Context, filter usecase.DashboardFilter, page, pageSize int) (usecase.DashboardsResult, error)
	Thumbnail(ctx context.Context, dashboardID string) ([]byte, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/graphs", end.Preview)

	r.POST("/dashboards", end.CreateDashboard)
	r.GET("/dashboards", end.Dashboards) // ?page=&page_size=&kind=
	r.GET("/dashboards/:id", end.Dashboard)
	r.Handle(http.MethodGet, "/dashboards/:id/thumbnail", http.HandlerFunc(end.Thumbnail))
}
