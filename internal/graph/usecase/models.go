package usecase

import (
	"slices"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

// BuildInput is one upload event from the browser: the transport-encoded file
// content, its original name, and the requested chart kind.
type BuildInput struct {
	Content   string
	Filename  string
	ChartKind string
	Title     string
}

// PreviewResult carries the built chart spec. Ready is false when no file has
// been uploaded yet, which is the expected initial state, not an error.
type PreviewResult struct {
	Ready bool
	Spec  entity.ChartSpec
}

type CreateDashboardResult struct {
	DashboardID string
}

type DashboardResult struct {
	Dashboard entity.Dashboard
}

type DashboardsResult struct {
	Dashboards []entity.Dashboard
	Page       int
	PageSize   int
	Total      int
}

type DashboardFilter struct {
	Kinds []entity.ChartKind
}

func (f DashboardFilter) Matches(d entity.Dashboard) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	return slices.Contains(f.Kinds, d.Spec.Kind)
}
