package dataset

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/bikedash/core/parallel"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// dateFormats are tried in order when parsing "dteday".
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// parallelRows is the row count above which parsing is split across cores.
const parallelRows = 4096

// missingValues are numeric cells treated as NaN. Infinite values are
// treated the same way by parseNumber.
var missingValues = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"null": true,
}

// Option configures Load and Read.
type Option func(*options)

type options struct {
	delimiter rune
	logger    log.Logger
}

func defaultOptions() *options {
	return &options{
		delimiter: ',',
		logger:    log.Nop(),
	}
}

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(d rune) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithLogger sets the logger used to report load progress and warnings.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load reads the CSV file at path.
func Load(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewLoadError(path, "cannot open file", err)
	}
	defer f.Close()

	return read(path, f, opts...)
}

// Read reads CSV data from r. Errors refer to the input as "<reader>".
func Read(r io.Reader, opts ...Option) (*Dataset, error) {
	return read("<reader>", r, opts...)
}

func read(path string, r io.Reader, opts ...Option) (*Dataset, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	start := time.Now()

	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(o.delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, errors.NewLoadError(path, "malformed CSV", df.Err)
	}

	cols, err := requiredColumns(path, df)
	if err != nil {
		return nil, err
	}

	n := df.Nrow()
	records := make([]Record, n)
	chunks := make([]chunkResult, parallel.NumChunks(n))
	parallel.ChunksWithThreshold(n, parallelRows, func(chunk, lo, hi int) {
		chunks[chunk] = parseRows(path, cols, records, lo, hi)
	})

	missing := make(map[Column]int)
	for _, c := range chunks {
		// Chunks are in row order, so the first error is the earliest row.
		if c.err != nil {
			return nil, c.err
		}
		for col, cnt := range c.missing {
			missing[col] += cnt
		}
	}

	for _, c := range NumericColumns() {
		if cnt := missing[c]; cnt > 0 {
			errors.Warn(errors.NewMissingValueWarning(string(c), cnt))
		}
	}

	ds := newDataset(path, records)
	o.logger.Info("dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.RowsKey, ds.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}

type chunkResult struct {
	missing map[Column]int
	err     error
}

// parseRows fills records[lo:hi] from the raw column values and stops at the
// first bad cell.
func parseRows(path string, cols map[Column][]string, records []Record, lo, hi int) chunkResult {
	res := chunkResult{missing: make(map[Column]int)}
	for i := lo; i < hi; i++ {
		row := i + 1
		rec := &records[i]

		date, err := parseDate(cols[ColumnDate][i])
		if err != nil {
			res.err = errors.NewLoadErrorAt(path, row, string(ColumnDate), "unparseable date", err)
			return res
		}
		rec.Date = date
		rec.WeekdayName = date.Weekday().String()

		hour, err := parseHour(cols[ColumnHour][i])
		if err != nil {
			res.err = errors.NewLoadErrorAt(path, row, string(ColumnHour), "hour must be an integer in [0,23]", err)
			return res
		}
		rec.Hour = hour

		rec.Season = strings.TrimSpace(cols[ColumnSeason][i])
		rec.IsWeekend = strings.TrimSpace(cols[ColumnWeekend][i])

		targets := []struct {
			col Column
			dst *float64
		}{
			{ColumnTemp, &rec.Temp},
			{ColumnHumidity, &rec.Humidity},
			{ColumnWindspeed, &rec.Windspeed},
			{ColumnCount, &rec.Count},
		}
		for _, t := range targets {
			v, err := parseNumber(cols[t.col][i])
			if err != nil {
				res.err = errors.NewLoadErrorAt(path, row, string(t.col), "not a number", err)
				return res
			}
			if math.IsNaN(v) {
				res.missing[t.col]++
			}
			*t.dst = v
		}
	}
	return res
}

func requiredColumns(path string, df dataframe.DataFrame) (map[Column][]string, error) {
	present := make(map[string]bool)
	for _, name := range df.Names() {
		present[name] = true
	}

	cols := make(map[Column][]string, len(RequiredColumns()))
	for _, c := range RequiredColumns() {
		if !present[string(c)] {
			return nil, errors.NewLoadErrorAt(path, 0, string(c), "required column is missing", nil)
		}
		cols[c] = df.Col(string(c)).Records()
	}
	return cols, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v < 0 || v > 23 {
		return 0, errors.Newf("hour %q out of range", s)
	}
	return int(v), nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if missingValues[s] {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	// inf and overflowing values cannot be averaged, plotted or encoded.
	if math.IsInf(v, 0) {
		return math.NaN(), nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}
