package entity

type ChartKind string

const (
	ChartKindLine      ChartKind = "line"
	ChartKindScatter   ChartKind = "scatter"
	ChartKindHistogram ChartKind = "histogram"
)

type ColumnKind string

const (
	ColumnKindNumeric ColumnKind = "NUMERIC"
	ColumnKindText    ColumnKind = "TEXT"
)

type DashboardStatus string

const (
	DashboardStatusQueued    DashboardStatus = "QUEUED"
	DashboardStatusRendering DashboardStatus = "RENDERING"
	DashboardStatusReady     DashboardStatus = "READY"
	DashboardStatusFailed    DashboardStatus = "FAILED"
)
