package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

const sampleCSV = `instant,dteday,season,yr,mnth,hr,is_weekend,temp,hum,windspeed,hour_count
1,2011-01-01,Spring,0,1,0,1,0.24,0.81,0.0,16
2,2011-01-01,Spring,0,1,1,1,0.22,0.80,0.0,40
3,2011-01-03,Spring,0,1,5,0,0.20,0.47,0.28,2
4,2011-06-15,Summer,0,6,17,0,0.70,0.40,0.19,511
5,2011-06-18,Summer,0,6,23,1,0.62,0.61,0.10,NA
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)

	ds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, path, ds.Path())
	assert.Equal(t, []string{"Spring", "Summer"}, ds.Seasons())
	assert.Equal(t, []string{"1", "0"}, ds.Weekends())

	first := ds.At(0)
	assert.Equal(t, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Saturday", first.WeekdayName)
	assert.Equal(t, 0, first.Hour)
	assert.InDelta(t, 0.24, first.Temp, 1e-12)
	assert.InDelta(t, 0.81, first.Humidity, 1e-12)
	assert.Equal(t, 16.0, first.Count)

	assert.Equal(t, "Monday", ds.At(2).WeekdayName)
	assert.True(t, math.IsNaN(ds.At(4).Count), "NA should load as NaN")
}

func TestLoadDerivedFields(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	raw := []int{0, 1, 5, 17, 23}
	for i, r := range ds.Records() {
		assert.Equal(t, raw[i], r.Hour)
		assert.GreaterOrEqual(t, r.Hour, 0)
		assert.LessOrEqual(t, r.Hour, 23)
		assert.Contains(t, Weekdays, r.WeekdayName)
		assert.Equal(t, r.Date.Weekday().String(), r.WeekdayName)
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	recs := ds.Records()
	recs[0].Count = -1
	ds.Seasons()[0] = "mutated"

	assert.Equal(t, 16.0, ds.At(0).Count)
	assert.Equal(t, "Spring", ds.Seasons()[0])
}

func TestLoadWithDelimiter(t *testing.T) {
	data := strings.ReplaceAll(sampleCSV, ",", ";")
	ds, err := Read(strings.NewReader(data), WithDelimiter(';'))
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		column  string
		row     int
	}{
		{
			name:    "missing column",
			content: "dteday,hr,season,is_weekend,temp,hum,windspeed\n2011-01-01,0,1,0,0.2,0.8,0\n",
			column:  "hour_count",
		},
		{
			name:    "hour out of range",
			content: "dteday,hr,season,is_weekend,temp,hum,windspeed,hour_count\n2011-01-01,24,1,0,0.2,0.8,0,3\n",
			column:  "hr",
			row:     1,
		},
		{
			name:    "fractional hour",
			content: "dteday,hr,season,is_weekend,temp,hum,windspeed,hour_count\n2011-01-01,2.5,1,0,0.2,0.8,0,3\n",
			column:  "hr",
			row:     1,
		},
		{
			name:    "bad date",
			content: "dteday,hr,season,is_weekend,temp,hum,windspeed,hour_count\n2011-01-01,1,1,0,0.2,0.8,0,3\nyesterday,1,1,0,0.2,0.8,0,3\n",
			column:  "dteday",
			row:     2,
		},
		{
			name:    "text in numeric column",
			content: "dteday,hr,season,is_weekend,temp,hum,windspeed,hour_count\n2011-01-01,1,1,0,warm,0.8,0,3\n",
			column:  "temp",
			row:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "bad.csv", tt.content)
			_, err := Load(path)
			require.Error(t, err)

			var loadErr *errors.LoadError
			require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
			assert.Equal(t, path, loadErr.Path)
			assert.Equal(t, tt.column, loadErr.Column)
			assert.Equal(t, tt.row, loadErr.Row)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var loadErr *errors.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.Error(t, err)

	var loadErr *errors.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestFromRecords(t *testing.T) {
	ds := FromRecords([]Record{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Hour: 5, Season: "1", IsWeekend: "0", Count: 10},
		{Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), Hour: 5, Season: "2", IsWeekend: "1", Count: 100},
	})

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "Monday", ds.At(0).WeekdayName)
	assert.Equal(t, "Saturday", ds.At(1).WeekdayName)
	assert.Equal(t, []string{"1", "2"}, ds.Seasons())
	assert.Equal(t, "", ds.Path())
}

func TestRecordValue(t *testing.T) {
	r := Record{Hour: 7, Temp: 0.3, Humidity: 0.5, Windspeed: 0.1, Count: 42}

	for col, want := range map[Column]float64{
		ColumnCount: 42, ColumnTemp: 0.3, ColumnHumidity: 0.5, ColumnWindspeed: 0.1, ColumnHour: 7,
	} {
		got, ok := r.Value(col)
		assert.True(t, ok, col)
		assert.Equal(t, want, got, col)
	}

	_, ok := r.Value(ColumnSeason)
	assert.False(t, ok)
	assert.False(t, IsNumeric(ColumnDate))
}

func largeCSV(rows int, bad map[int]string) string {
	var b strings.Builder
	b.WriteString("dteday,hr,season,is_weekend,temp,hum,windspeed,hour_count\n")
	for i := 1; i <= rows; i++ {
		count := strconv.Itoa(i % 500)
		if v, ok := bad[i]; ok {
			count = v
		}
		b.WriteString("2012-03-0" + strconv.Itoa(1+i%9) + "," + strconv.Itoa(i%24) + ",Spring,0,0.5,0.5,0.1," + count + "\n")
	}
	return b.String()
}

func TestLoadLargeInput(t *testing.T) {
	rows := 3*parallelRows + 17
	ds, err := Read(strings.NewReader(largeCSV(rows, map[int]string{10: "NA", rows: ""})))
	require.NoError(t, err)
	require.Equal(t, rows, ds.Len())

	for i := 0; i < rows; i++ {
		rec := ds.At(i)
		assert.Equal(t, (i+1)%24, rec.Hour)
		if i+1 == 10 || i+1 == rows {
			assert.True(t, math.IsNaN(rec.Count))
			continue
		}
		if !assert.Equal(t, float64((i+1)%500), rec.Count, "row %d", i+1) {
			break
		}
	}
}

func TestLoadLargeInputReportsEarliestBadRow(t *testing.T) {
	rows := 3*parallelRows + 17
	_, err := Read(strings.NewReader(largeCSV(rows, map[int]string{rows - 3: "many", 2*parallelRows + 5: "lots"})))
	require.Error(t, err)

	var loadErr *errors.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, 2*parallelRows+5, loadErr.Row)
	assert.Equal(t, "hour_count", loadErr.Column)
}

func TestLoadInfiniteValuesAreMissing(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	content := "dteday,hr,season,is_weekend,temp,hum,windspeed,hour_count\n" +
		"2011-01-01,0,Spring,1,0.2,0.8,0.1,inf\n" +
		"2011-01-01,1,Spring,1,-Inf,0.8,0.1,12\n" +
		"2011-01-01,2,Spring,1,0.3,0.7,0.2,1e999\n"
	ds, err := Read(strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	assert.True(t, math.IsNaN(ds.At(0).Count))
	assert.True(t, math.IsNaN(ds.At(1).Temp))
	assert.True(t, math.IsNaN(ds.At(2).Count))
	assert.Equal(t, 12.0, ds.At(1).Count)
	for _, r := range ds.Records() {
		for _, c := range NumericColumns() {
			v, _ := r.Value(c)
			assert.False(t, math.IsInf(v, 0), "column %s", c)
		}
	}

	var counts = map[string]int{}
	for _, w := range warned {
		var mv *errors.MissingValueWarning
		require.True(t, errors.As(w, &mv))
		counts[mv.Column] = mv.Count
	}
	assert.Equal(t, map[string]int{"temp": 1, "hour_count": 2}, counts)
}
