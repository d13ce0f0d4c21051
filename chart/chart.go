// Package chart turns aggregate results into chart artifacts and renders them
// with gonum/plot.
//
// A Chart is plain data: a kind, a title, two axis labels and the values the
// kind needs. Building a chart never touches the inputs, and rendering the
// same chart twice produces the same bytes.
package chart

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/YuminosukeSato/bikedash/analysis"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

// Kind is the chart type.
type Kind string

const (
	KindLine      Kind = "line"
	KindBar       Kind = "bar"
	KindHeatmap   Kind = "heatmap"
	KindScatter   Kind = "scatter"
	KindHistogram Kind = "histogram"
	KindBoxplot   Kind = "boxplot"
)

// Labels holds the text shown around a chart.
type Labels struct {
	Title  string
	XLabel string
	YLabel string
}

// Matrix is a labelled square matrix. NaN cells are undefined.
type Matrix struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// Chart is a renderable chart artifact. Only the fields of its Kind are set.
type Chart struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	Series     []analysis.Point  `json:"series,omitempty"`     // line, scatter
	Categories []string          `json:"categories,omitempty"` // bar
	Values     []float64         `json:"values,omitempty"`     // bar
	Matrix     *Matrix           `json:"matrix,omitempty"`     // heatmap
	Bins       []analysis.Bin    `json:"bins,omitempty"`       // histogram
	Density    []analysis.Point  `json:"density,omitempty"`    // histogram
	Box        *analysis.Summary `json:"box,omitempty"`        // boxplot

	// NoData replaces NoDataText on the placeholder of an empty chart.
	NoData string `json:"no_data,omitempty"`
}

func newChart(kind Kind, l Labels) *Chart {
	return &Chart{Kind: kind, Title: l.Title, XLabel: l.XLabel, YLabel: l.YLabel}
}

// Line draws the group means of g as a line over numeric keys, such as the
// hour of day. Groups with a NaN mean are left out of the line.
func Line(l Labels, g analysis.GroupedMean) (*Chart, error) {
	c := newChart(KindLine, l)
	c.Series = make([]analysis.Point, 0, g.Len())
	for _, grp := range g.Groups {
		x, err := strconv.ParseFloat(grp.Key, 64)
		if err != nil {
			return nil, errors.NewValidationError("key", "line charts need numeric group keys", grp.Key)
		}
		if math.IsNaN(grp.Mean) {
			continue
		}
		c.Series = append(c.Series, analysis.Point{X: x, Y: grp.Mean})
	}
	return c, nil
}

// Bar draws one bar per group of g. When order is given the bars follow it;
// keys missing from g are skipped and keys missing from order go last.
func Bar(l Labels, g analysis.GroupedMean, order ...string) *Chart {
	c := newChart(KindBar, l)

	seen := make(map[string]bool, g.Len())
	for _, key := range order {
		if mean, ok := g.Get(key); ok && !seen[key] {
			seen[key] = true
			c.Categories = append(c.Categories, key)
			c.Values = append(c.Values, mean)
		}
	}
	for _, grp := range g.Groups {
		if !seen[grp.Key] {
			c.Categories = append(c.Categories, grp.Key)
			c.Values = append(c.Values, grp.Mean)
		}
	}
	return c
}

// Heatmap draws a correlation matrix.
func Heatmap(l Labels, m analysis.CorrelationMatrix) *Chart {
	c := newChart(KindHeatmap, l)
	n := m.Size()
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		for j := range values[i] {
			values[i][j] = m.At(i, j)
		}
	}
	c.Matrix = &Matrix{Labels: m.Labels(), Values: values}
	return c
}

// Scatter draws raw points.
func Scatter(l Labels, pts []analysis.Point) *Chart {
	c := newChart(KindScatter, l)
	c.Series = append([]analysis.Point(nil), pts...)
	return c
}

// Histogram draws binned counts with the density curve on top.
func Histogram(l Labels, b analysis.Binned) *Chart {
	c := newChart(KindHistogram, l)
	c.Bins = append([]analysis.Bin(nil), b.Bins...)
	c.Density = append([]analysis.Point(nil), b.Density...)
	return c
}

// Boxplot draws a five-number summary horizontally.
func Boxplot(l Labels, s analysis.Summary) *Chart {
	c := newChart(KindBoxplot, l)
	s.Outliers = append([]float64(nil), s.Outliers...)
	c.Box = &s
	return c
}

// Empty reports whether the chart has nothing to draw.
func (c *Chart) Empty() bool {
	switch c.Kind {
	case KindLine, KindScatter:
		return len(c.Series) == 0
	case KindBar:
		return allNaN(c.Values)
	case KindHeatmap:
		if c.Matrix == nil {
			return true
		}
		for _, row := range c.Matrix.Values {
			if !allNaN(row) {
				return false
			}
		}
		return true
	case KindHistogram:
		return len(c.Bins) == 0
	case KindBoxplot:
		return c.Box == nil || c.Box.N == 0
	default:
		return true
	}
}

func allNaN(xs []float64) bool {
	for _, x := range xs {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes NaN as null, which encoding/json rejects otherwise.
func (c Chart) MarshalJSON() ([]byte, error) {
	type plain Chart
	out := struct {
		plain
		Values []*float64   `json:"values,omitempty"`
		Matrix *nullableMat `json:"matrix,omitempty"`
	}{plain: plain(c), Values: nullable(c.Values)}

	if c.Matrix != nil {
		rows := make([][]*float64, len(c.Matrix.Values))
		for i, row := range c.Matrix.Values {
			rows[i] = nullable(row)
		}
		out.Matrix = &nullableMat{Labels: c.Matrix.Labels, Values: rows}
	}
	return json.Marshal(out)
}

type nullableMat struct {
	Labels []string     `json:"labels"`
	Values [][]*float64 `json:"values"`
}

func nullable(xs []float64) []*float64 {
	if xs == nil {
		return nil
	}
	out := make([]*float64, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) {
			continue
		}
		v := xs[i]
		out[i] = &v
	}
	return out
}
