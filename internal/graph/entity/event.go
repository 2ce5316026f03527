package entity

type DashboardCreatedEvent struct {
	EventID     string
	DashboardID string
	Kind        ChartKind
}
