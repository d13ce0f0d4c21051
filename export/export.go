// Package export writes the data behind dashboard charts as CSV or XLSX.
//
// Every chart kind maps to one table (a gota DataFrame):
//
//	line, scatter  x, y
//	bar            category, value
//	heatmap        column, <one column per label>
//	histogram      low, high, count
//	boxplot        statistic, value
//
// Undefined values are written as NaN in CSV and as empty cells in XLSX.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/bikedash/chart"
	"github.com/YuminosukeSato/bikedash/dashboard"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, XLSX:
		return f, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "export format %q", s)
	}
}

// Frame returns the table behind c.
func Frame(c *chart.Chart) dataframe.DataFrame {
	switch c.Kind {
	case chart.KindLine, chart.KindScatter:
		xs := make([]float64, len(c.Series))
		ys := make([]float64, len(c.Series))
		for i, p := range c.Series {
			xs[i], ys[i] = p.X, p.Y
		}
		return dataframe.New(
			series.New(xs, series.Float, "x"),
			series.New(ys, series.Float, "y"),
		)

	case chart.KindBar:
		return dataframe.New(
			series.New(append([]string{}, c.Categories...), series.String, "category"),
			series.New(append([]float64{}, c.Values...), series.Float, "value"),
		)

	case chart.KindHeatmap:
		if c.Matrix == nil {
			return dataframe.New(series.New([]string{}, series.String, "column"))
		}
		cols := []series.Series{series.New(append([]string{}, c.Matrix.Labels...), series.String, "column")}
		for j, label := range c.Matrix.Labels {
			col := make([]float64, len(c.Matrix.Values))
			for i, row := range c.Matrix.Values {
				col[i] = row[j]
			}
			cols = append(cols, series.New(col, series.Float, label))
		}
		return dataframe.New(cols...)

	case chart.KindHistogram:
		lows := make([]float64, len(c.Bins))
		highs := make([]float64, len(c.Bins))
		counts := make([]int, len(c.Bins))
		for i, b := range c.Bins {
			lows[i], highs[i], counts[i] = b.Low, b.High, b.Count
		}
		return dataframe.New(
			series.New(lows, series.Float, "low"),
			series.New(highs, series.Float, "high"),
			series.New(counts, series.Int, "count"),
		)

	case chart.KindBoxplot:
		names := []string{}
		values := []float64{}
		if s := c.Box; s != nil && s.N > 0 {
			names = append(names, "n", "min", "q1", "median", "q3", "max", "lower_whisker", "upper_whisker")
			values = append(values, float64(s.N), s.Min, s.Q1, s.Median, s.Q3, s.Max, s.LowerWhisker, s.UpperWhisker)
			for _, o := range s.Outliers {
				names = append(names, "outlier")
				values = append(values, o)
			}
		}
		return dataframe.New(
			series.New(names, series.String, "statistic"),
			series.New(values, series.Float, "value"),
		)
	}
	return dataframe.DataFrame{Err: errors.Newf("export: unknown chart kind %q", c.Kind)}
}

// WriteCSV writes the table of one chart.
func WriteCSV(w io.Writer, c *chart.Chart) error {
	df := Frame(c)
	if df.Err != nil {
		return df.Err
	}
	return errors.Wrap(df.WriteCSV(w), "export: write csv")
}

// WriteXLSX writes every chart of the page to its own sheet, in page order.
func WriteXLSX(w io.Writer, page *dashboard.Page) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, panel := range page.Panels {
		name := SheetName(i, panel.Chart)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return errors.Wrap(err, "export: rename sheet")
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.Wrap(err, "export: add sheet")
		}

		df := Frame(panel.Chart)
		if df.Err != nil {
			return df.Err
		}
		if err := writeSheet(f, name, df); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	return errors.Wrap(f.Write(w), "export: write xlsx")
}

// SheetName names the sheet of the i-th chart.
func SheetName(i int, c *chart.Chart) string {
	return fmt.Sprintf("%d %s", i+1, c.Kind)
}

func writeSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "export: write header")
		}
	}

	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			val := df.Col(colName).Val(rowIdx)
			if val == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return errors.Wrap(err, "export: write cell")
			}
		}
	}
	return nil
}
