package entity

type Dashboard struct {
	ID     string
	Title  string
	Spec   ChartSpec
	Status DashboardStatus
	Err    string

	CreatedAt int64
	UpdatedAt int64
}
