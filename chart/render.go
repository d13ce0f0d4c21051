package chart

import (
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	default:
		return "image/svg+xml"
	}
}

// ParseFormat accepts "svg" or "png", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case SVG, PNG:
		return f, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "image format %q", s)
	}
}

const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch

	heatmapColors = 255
)

var (
	barColor     = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff}
	densityColor = color.RGBA{R: 0xdd, G: 0x84, B: 0x52, A: 0xff}
	nanColor     = color.Gray{Y: 0xd0}
)

// NoDataText is drawn in place of a chart that has nothing to show.
var NoDataText = "no data for the current selection"

// Render draws c in the given format. Charts without data render as a
// placeholder. Panics inside the plotting library come back as a PanicError.
func Render(c *Chart, format Format, w io.Writer) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	return errors.SafeExecute("chart.Render "+string(c.Kind), func() error {
		p, err := build(c)
		if err != nil {
			return errors.NewRenderError(string(c.Kind), string(format), err)
		}
		wt, err := p.WriterTo(width, height, string(format))
		if err != nil {
			return errors.NewRenderError(string(c.Kind), string(format), err)
		}
		if _, err := wt.WriteTo(w); err != nil {
			return errors.NewRenderError(string(c.Kind), string(format), err)
		}
		return nil
	})
}

func build(c *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	if c.Empty() {
		note := c.NoData
		if note == "" {
			note = NoDataText
		}
		return placeholder(p, note)
	}

	var err error
	switch c.Kind {
	case KindLine:
		err = drawLine(p, c)
	case KindBar:
		err = drawBar(p, c)
	case KindHeatmap:
		err = drawHeatmap(p, c)
	case KindScatter:
		err = drawScatter(p, c)
	case KindHistogram:
		err = drawHistogram(p, c)
	case KindBoxplot:
		err = drawBoxplot(p, c)
	default:
		err = errors.Newf("unknown chart kind %q", c.Kind)
	}
	return p, err
}

func placeholder(p *plot.Plot, text string) (*plot.Plot, error) {
	note, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{text},
	})
	if err != nil {
		return nil, err
	}
	note.TextStyle[0].XAlign = draw.XCenter
	note.TextStyle[0].YAlign = draw.YCenter
	p.Add(note)
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	return p, nil
}

func xys(c *Chart) plotter.XYs {
	out := make(plotter.XYs, len(c.Series))
	for i, pt := range c.Series {
		out[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return out
}

func drawLine(p *plot.Plot, c *Chart) error {
	line, points, err := plotter.NewLinePoints(xys(c))
	if err != nil {
		return err
	}
	line.Color = barColor
	line.Width = vg.Points(1.5)
	points.GlyphStyle.Color = barColor
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(plotter.NewGrid(), line, points)
	return nil
}

func drawBar(p *plot.Plot, c *Chart) error {
	values := make(plotter.Values, len(c.Values))
	for i, v := range c.Values {
		// undefined means are drawn as empty bars
		if !math.IsNaN(v) {
			values[i] = v
		}
	}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(plotter.NewGrid(), bars)
	p.NominalX(c.Categories...)
	return nil
}

func drawScatter(p *plot.Plot, c *Chart) error {
	s, err := plotter.NewScatter(xys(c))
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = color.RGBA{R: barColor.R, G: barColor.G, B: barColor.B, A: 0x80}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(plotter.NewGrid(), s)
	return nil
}

func drawHistogram(p *plot.Plot, c *Chart) error {
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(c.Bins)),
		Width:     c.Bins[0].High - c.Bins[0].Low,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.LineStyle.Color = color.White
	for i, b := range c.Bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Low, Max: b.High, Weight: float64(b.Count)}
	}
	p.Add(h)

	if len(c.Density) > 0 {
		pts := make(plotter.XYs, len(c.Density))
		for i, d := range c.Density {
			pts[i] = plotter.XY{X: d.X, Y: d.Y}
		}
		kde, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		kde.Color = densityColor
		kde.Width = vg.Points(2)
		p.Add(kde)
	}
	return nil
}

func drawBoxplot(p *plot.Plot, c *Chart) error {
	s := c.Box
	// quartiles and whiskers come from s, not from plotter's own estimate
	values := append(plotter.Values{s.LowerWhisker, s.Q1, s.Median, s.Q3, s.UpperWhisker}, s.Outliers...)
	box, err := plotter.NewBoxPlot(vg.Points(60), 0, values)
	if err != nil {
		return err
	}
	box.Horizontal = true
	box.FillColor = barColor
	box.Median = s.Median
	box.Quartile1, box.Quartile3 = s.Q1, s.Q3
	box.AdjLow, box.AdjHigh = s.LowerWhisker, s.UpperWhisker
	box.Min, box.Max = s.Min, s.Max
	box.Outside = box.Outside[:0]
	for i := range s.Outliers {
		box.Outside = append(box.Outside, 5+i)
	}
	p.Add(plotter.NewGrid(), box)
	p.NominalY("")
	return nil
}

func drawHeatmap(p *plot.Plot, c *Chart) error {
	m := c.Matrix
	n := len(m.Labels)
	grid := heatGrid{m: m}

	pal := moreland.SmoothBlueRed().Palette(heatmapColors)
	hm := plotter.NewHeatMap(grid, pal)
	hm.Min, hm.Max = -1, 1
	hm.NaN = nanColor

	var cells plotter.XYLabels
	for r := 0; r < n; r++ {
		for col := 0; col < n; col++ {
			z := grid.Z(col, r)
			text := "n/a"
			if !math.IsNaN(z) {
				text = strconv.FormatFloat(z, 'f', 2, 64)
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(col), Y: float64(r)})
			cells.Labels = append(cells.Labels, text)
		}
	}
	annotations, err := plotter.NewLabels(cells)
	if err != nil {
		return err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].YAlign = draw.YCenter
	}

	p.Add(hm, annotations)
	p.NominalX(m.Labels...)
	rows := make([]string, n)
	for r := range rows {
		rows[r] = m.Labels[n-1-r]
	}
	p.NominalY(rows...)
	return nil
}

// heatGrid puts row 0 of the matrix at the top of the plot.
type heatGrid struct {
	m *Matrix
}

func (g heatGrid) Dims() (int, int) {
	n := len(g.m.Labels)
	return n, n
}

func (g heatGrid) Z(c, r int) float64 {
	return g.m.Values[len(g.m.Labels)-1-r][c]
}

func (g heatGrid) X(c int) float64 { return float64(c) }
func (g heatGrid) Y(r int) float64 { return float64(r) }
