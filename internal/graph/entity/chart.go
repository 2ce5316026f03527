package entity

// Series carries the resolved data of a chart. Line and scatter charts use
// both sequences, histograms only X.
type Series struct {
	X []float64
	Y []float64
}

// ChartSpec is the fully-resolved description of a chart, decoupled from any
// rendering library.
type ChartSpec struct {
	Kind   ChartKind
	Title  string
	Series Series
}
