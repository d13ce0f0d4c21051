package dashboard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/YuminosukeSato/bikedash/analysis"
	"github.com/YuminosukeSato/bikedash/chart"
	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

func testDataset() *dataset.Dataset {
	monday := time.Date(2011, 1, 3, 0, 0, 0, 0, time.UTC)
	var recs []dataset.Record
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h += 6 {
			weekend := "0"
			if d >= 5 {
				weekend = "1"
			}
			season := "Winter"
			if d%2 == 1 {
				season = "Spring"
			}
			recs = append(recs, dataset.Record{
				Date:      monday.AddDate(0, 0, d),
				Hour:      h,
				Season:    season,
				IsWeekend: weekend,
				Temp:      0.2 + 0.05*float64(d),
				Humidity:  0.8 - 0.01*float64(h),
				Windspeed: 0.1 + 0.02*float64(d%3),
				Count:     float64(5*h + 3*d + 1),
			})
		}
	}
	return dataset.FromRecords(recs)
}

type recordingObserver struct {
	views []ViewID
	rows  []int
}

func (r *recordingObserver) PageRendered(view ViewID, rows int, _ time.Duration) {
	r.views = append(r.views, view)
	r.rows = append(r.rows, rows)
}

func TestViews(t *testing.T) {
	d := New(testDataset())

	views := d.Views()
	require.Len(t, views, 4)
	ids := make([]ViewID, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	assert.Equal(t, []ViewID{ViewTime, ViewDayType, ViewFactors, ViewDistribution}, ids)
	assert.Equal(t, "Bicycle Usage Patterns over Time", views[0].Title)

	id := d.Localized(language.Indonesian).Views()
	assert.Equal(t, "Pola Penggunaan Sepeda Berdasarkan Waktu", id[0].Title)
	assert.Equal(t, "Distribusi dan Outlier", id[3].Title)
	assert.Equal(t, language.English, d.Language(), "Localized must not modify the receiver")
}

func TestOptionsDefaultSelectsEverything(t *testing.T) {
	ds := testDataset()
	opts := New(ds).Options()
	assert.Equal(t, []string{"Winter", "Spring"}, opts.Seasons)
	assert.Equal(t, []string{"0", "1"}, opts.Weekends)
	assert.Equal(t, opts.Seasons, opts.Default.Seasons)
	assert.Equal(t, opts.Weekends, opts.Default.Weekends)
}

func TestRenderViews(t *testing.T) {
	ds := testDataset()
	d := New(ds)

	tests := []struct {
		view  ViewID
		kinds []chart.Kind
	}{
		{ViewTime, []chart.Kind{chart.KindLine, chart.KindBar}},
		{ViewDayType, []chart.Kind{chart.KindBar, chart.KindBar}},
		{ViewFactors, []chart.Kind{chart.KindHeatmap, chart.KindScatter}},
		{ViewDistribution, []chart.Kind{chart.KindHistogram, chart.KindBoxplot}},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			page, err := d.Render(tt.view, analysis.AllSelected(ds))
			require.NoError(t, err)
			assert.Equal(t, tt.view, page.View)
			assert.Equal(t, ds.Len(), page.Rows)
			assert.Equal(t, "en", page.Language)

			charts := page.Charts()
			require.Len(t, charts, len(tt.kinds))
			for i, c := range charts {
				assert.Equal(t, tt.kinds[i], c.Kind)
				assert.False(t, c.Empty())
				assert.NotEmpty(t, c.Title)
				assert.NotEmpty(t, page.Panels[i].Heading)
			}

			_, err = json.Marshal(page)
			assert.NoError(t, err)
		})
	}
}

func TestRenderTimeView(t *testing.T) {
	ds := testDataset()
	page, err := New(ds).Render(ViewTime, analysis.AllSelected(ds))
	require.NoError(t, err)

	line, err := page.Chart(0)
	require.NoError(t, err)
	require.Len(t, line.Series, 4)
	assert.Equal(t, 0.0, line.Series[0].X)
	assert.Equal(t, 18.0, line.Series[3].X)
	assert.Equal(t, "Hour", line.XLabel)

	bar, err := page.Chart(1)
	require.NoError(t, err)
	assert.Equal(t, dataset.Weekdays, bar.Categories)

	_, err = page.Chart(2)
	assert.Error(t, err)
}

func TestRenderFilters(t *testing.T) {
	ds := testDataset()
	obs := &recordingObserver{}
	d := New(ds, WithObserver(obs))

	page, err := d.Render(ViewDayType, analysis.Selection{Seasons: []string{"Spring"}, Weekends: []string{"0", "1"}})
	require.NoError(t, err)

	season := page.Panels[1].Chart
	assert.Equal(t, []string{"Spring"}, season.Categories)
	assert.Equal(t, []ViewID{ViewDayType}, obs.views)
	assert.Equal(t, []int{page.Rows}, obs.rows)
	assert.Less(t, page.Rows, ds.Len())
}

func TestRenderEmptySelection(t *testing.T) {
	d := New(testDataset())

	for _, view := range []ViewID{ViewTime, ViewDayType, ViewFactors, ViewDistribution} {
		t.Run(string(view), func(t *testing.T) {
			page, err := d.Render(view, analysis.Selection{})
			require.NoError(t, err)
			assert.Equal(t, 0, page.Rows)
			assert.NotNil(t, page.Selection.Seasons)
			for _, c := range page.Charts() {
				assert.True(t, c.Empty(), "%s chart should be empty", c.Kind)
				assert.Equal(t, "No data for the current selection", c.NoData)
			}
		})
	}
}

func TestRenderIndonesianLabels(t *testing.T) {
	ds := testDataset()
	d := New(ds, WithLanguage(language.MustParse("id-ID")))

	page, err := d.Render(ViewFactors, analysis.AllSelected(ds))
	require.NoError(t, err)
	assert.Equal(t, "id", page.Language)
	assert.Equal(t, "Faktor yang Mempengaruhi Jumlah Penggunaan Sepeda", page.Title)
	assert.Equal(t, "Suhu", page.Panels[1].Chart.XLabel)
	assert.Equal(t, "Pilih Musim:", page.Text.ChooseSeason)
}

func TestRenderUnknownView(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	d := New(testDataset(), WithLogger(logger))

	_, err := d.Render(ViewID("weather"), analysis.Selection{})
	require.Error(t, err)

	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
	assert.Equal(t, "view", valErr.ParamName)
	assert.True(t, errors.Is(err, errors.ErrUnknownView))

	_, err = ParseView("weather")
	assert.True(t, errors.Is(err, errors.ErrUnknownView))
	id, err := ParseView("factors")
	require.NoError(t, err)
	assert.Equal(t, ViewFactors, id)
}

func TestRenderLogs(t *testing.T) {
	ds := testDataset()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	d := New(ds, WithLogger(logger))

	_, err := d.Render(ViewTime, analysis.AllSelected(ds))
	require.NoError(t, err)
	assert.True(t, logger.ContainsMessage("view rendered"))
	assert.True(t, logger.ContainsField(log.ViewKey, "time"))
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		prefs []string
		want  language.Tag
	}{
		{nil, language.English},
		{[]string{""}, language.English},
		{[]string{"id"}, language.Indonesian},
		{[]string{"id-ID,id;q=0.9,en;q=0.8"}, language.Indonesian},
		{[]string{"fr-FR"}, language.English},
		{[]string{"not a tag!!"}, language.English},
		{[]string{"", "id"}, language.Indonesian},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchLanguage(tt.prefs...), "%v", tt.prefs)
	}
}

func TestPageTextRows(t *testing.T) {
	ds := testDataset()
	page, err := New(ds).Render(ViewTime, analysis.AllSelected(ds))
	require.NoError(t, err)
	assert.Equal(t, "28 rows selected", page.Text.Rows)
}
