package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

const (
	DefaultWidth         = 1024
	DefaultHeight        = 600
	DefaultHistogramBins = 10
)

type Config struct {
	Width         int
	Height        int
	HistogramBins int
}

// PNGRenderer renders chart specs to PNG images using go-chart.
type PNGRenderer struct {
	width  int
	height int
	bins   int
}

func New(cfg Config) *PNGRenderer {
	width := cfg.Width
	if width < 1 {
		width = DefaultWidth
	}

	height := cfg.Height
	if height < 1 {
		height = DefaultHeight
	}

	bins := cfg.HistogramBins
	if bins < 1 {
		bins = DefaultHistogramBins
	}

	return &PNGRenderer{width: width, height: height, bins: bins}
}

func (r *PNGRenderer) Render(spec entity.ChartSpec) ([]byte, error) {
	switch spec.Kind {
	case entity.ChartKindLine:
		return r.renderXY(spec, chart.Style{})
	case entity.ChartKindScatter:
		// points only, no connecting line
		return r.renderXY(spec, chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4})
	case entity.ChartKindHistogram:
		return r.renderHistogram(spec)
	default:
		return nil, fmt.Errorf("no renderer for chart kind %q", spec.Kind)
	}
}

func (r *PNGRenderer) renderXY(spec entity.ChartSpec, style chart.Style) ([]byte, error) {
	xs := spec.Series.X
	ys := spec.Series.Y

	// go-chart cannot lay out a series with fewer than two points, so an
	// empty chart is drawn as axes over a transparent placeholder series.
	if len(xs) < 2 {
		xs = []float64{0, 1}
		ys = []float64{0, 1}
		style = chart.Style{
			StrokeColor: drawing.Color{R: 255, G: 255, B: 255, A: 0},
			DotWidth:    chart.Disabled,
		}
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "x", Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: "y", Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: spec.Title, XValues: xs, YValues: ys, Style: style},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", spec.Kind, err)
	}

	return buf.Bytes(), nil
}

func (r *PNGRenderer) renderHistogram(spec entity.ChartSpec) ([]byte, error) {
	bars, maxCount := histogramBars(spec.Series.X, r.bins)

	ch := chart.BarChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   max((r.width-2*len(bars))/(len(bars)+2), 8),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount + 1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render histogram chart: %w", err)
	}

	return buf.Bytes(), nil
}

// histogramBars buckets values into equal-width bins labeled with the bin's
// lower bound. It also returns the highest bin count for axis scaling.
func histogramBars(values []float64, bins int) ([]chart.Value, float64) {
	if len(values) == 0 {
		return []chart.Value{{Value: 0, Label: ""}}, 0
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		return []chart.Value{{Value: float64(len(values)), Label: formatBinLabel(lo)}}, float64(len(values))
	}

	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1 // hi itself lands in the last bin
		}
		counts[idx]++
	}

	bars := make([]chart.Value, 0, bins)
	maxCount := 0.0
	for i, count := range counts {
		bars = append(bars, chart.Value{
			Value: count,
			Label: formatBinLabel(lo + float64(i)*width),
		})
		maxCount = math.Max(maxCount, count)
	}

	return bars, maxCount
}

func formatBinLabel(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

// paddedRange pins the axis range when the data cannot produce one on its
// own (all values equal). Returns nil to let go-chart derive the range.
//
// The return type is the chart.Range interface, not *chart.ContinuousRange:
// a typed-nil pointer assigned to the axis Range field makes go-chart call
// IsZero on a nil receiver and panic.
func paddedRange(values []float64) chart.Range {
	if len(values) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	return nil
}
