// Package dashboard maps an analysis view and a selection to a page of charts.
//
// Four views are available:
//
//   - time: mean usage per hour (line) and per weekday (bar)
//   - daytype: mean usage by day type and by season (bars)
//   - factors: weather correlation (heatmap) and temperature vs usage (scatter)
//   - distribution: usage histogram with density, and a boxplot
//
// A Dashboard holds an immutable dataset, so Render may be called from any
// number of goroutines.
package dashboard

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/YuminosukeSato/bikedash/analysis"
	"github.com/YuminosukeSato/bikedash/chart"
	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// ViewID identifies an analysis view.
type ViewID string

const (
	ViewTime         ViewID = "time"
	ViewDayType      ViewID = "daytype"
	ViewFactors      ViewID = "factors"
	ViewDistribution ViewID = "distribution"
)

var viewOrder = []ViewID{ViewTime, ViewDayType, ViewFactors, ViewDistribution}

var viewTitles = map[ViewID]string{
	ViewTime:         msgTimeView,
	ViewDayType:      msgDayTypeView,
	ViewFactors:      msgFactorsView,
	ViewDistribution: msgDistributionView,
}

// ParseView validates a view id.
func ParseView(s string) (ViewID, error) {
	id := ViewID(s)
	if _, ok := viewTitles[id]; !ok {
		return "", unknownView(s)
	}
	return id, nil
}

func unknownView(s string) error {
	return errors.Mark(errors.NewValidationError("view", "unknown view", s), errors.ErrUnknownView)
}

// ViewInfo describes a view for the selector.
type ViewInfo struct {
	ID    ViewID `json:"id"`
	Title string `json:"title"`
}

// Options lists the values the selection controls offer.
type Options struct {
	Seasons  []string           `json:"seasons"`
	Weekends []string           `json:"weekends"`
	Default  analysis.Selection `json:"default"`
}

// Panel is one chart with its section heading.
type Panel struct {
	Heading string       `json:"heading"`
	Chart   *chart.Chart `json:"chart"`
}

// Page is the result of rendering a view.
type Page struct {
	View      ViewID             `json:"view"`
	Title     string             `json:"title"`
	Language  string             `json:"language"`
	Selection analysis.Selection `json:"selection"`
	Rows      int                `json:"rows"`
	Text      Text               `json:"text"`
	Panels    []Panel            `json:"panels"`
}

// Charts returns the charts of the page in display order.
func (p *Page) Charts() []*chart.Chart {
	out := make([]*chart.Chart, len(p.Panels))
	for i, panel := range p.Panels {
		out[i] = panel.Chart
	}
	return out
}

// Chart returns the i-th chart of the page.
func (p *Page) Chart(i int) (*chart.Chart, error) {
	if i < 0 || i >= len(p.Panels) {
		return nil, errors.NewValidationError("index", "chart index out of range", i)
	}
	return p.Panels[i].Chart, nil
}

// Observer is notified after each rendered page.
type Observer interface {
	PageRendered(view ViewID, rows int, elapsed time.Duration)
}

// Dashboard renders views over one dataset.
type Dashboard struct {
	ds     *dataset.Dataset
	lang   language.Tag
	logger log.Logger
	obs    Observer
}

// New creates a Dashboard over ds.
func New(ds *dataset.Dataset, opts ...Option) *Dashboard {
	d := &Dashboard{
		ds:     ds,
		lang:   language.English,
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(log.ComponentKey, "dashboard")
	return d
}

// Localized returns a copy of d that labels charts in the supported language
// closest to tag.
func (d *Dashboard) Localized(tag language.Tag) *Dashboard {
	cp := *d
	cp.lang = matchTag(tag)
	return &cp
}

// Language returns the label language.
func (d *Dashboard) Language() language.Tag {
	return d.lang
}

// Dataset returns the dataset being shown.
func (d *Dashboard) Dataset() *dataset.Dataset {
	return d.ds
}

// Views lists the available views in selector order.
func (d *Dashboard) Views() []ViewInfo {
	p := newPrinter(d.lang)
	out := make([]ViewInfo, len(viewOrder))
	for i, id := range viewOrder {
		out[i] = ViewInfo{ID: id, Title: p.Sprintf(viewTitles[id])}
	}
	return out
}

// Options returns the distinct season and weekend values; by default all of
// them are selected.
func (d *Dashboard) Options() Options {
	return Options{
		Seasons:  d.ds.Seasons(),
		Weekends: d.ds.Weekends(),
		Default:  analysis.AllSelected(d.ds),
	}
}

// Render filters the dataset by sel and builds the charts of view.
// An unknown view is a ValidationError; empty selections are not errors and
// yield placeholder charts.
func (d *Dashboard) Render(view ViewID, sel analysis.Selection) (*Page, error) {
	if _, ok := viewTitles[view]; !ok {
		return nil, unknownView(string(view))
	}
	start := time.Now()

	sel = normalize(sel)
	v := analysis.Filter(d.ds, sel)
	p := newPrinter(d.lang)

	var panels []Panel
	var err error
	switch view {
	case ViewTime:
		panels, err = timePanels(p, v)
	case ViewDayType:
		panels, err = dayTypePanels(p, v)
	case ViewFactors:
		panels, err = factorPanels(p, v)
	case ViewDistribution:
		panels, err = distributionPanels(p, v)
	}
	if err != nil {
		d.logger.Error("render failed", err, log.ViewKey, string(view))
		return nil, errors.Wrapf(err, "render view %s", view)
	}

	noData := p.Sprintf(msgNoData)
	for _, panel := range panels {
		if panel.Chart.Empty() {
			panel.Chart.NoData = noData
		}
	}

	page := &Page{
		View:      view,
		Title:     p.Sprintf(viewTitles[view]),
		Language:  d.lang.String(),
		Selection: sel,
		Rows:      v.Len(),
		Text:      pageText(p, v.Len()),
		Panels:    panels,
	}

	elapsed := time.Since(start)
	d.logger.Debug("view rendered",
		log.ViewKey, string(view),
		log.SeasonsKey, sel.Seasons,
		log.WeekendsKey, sel.Weekends,
		log.RowsKey, v.Len(),
		log.DurationMsKey, elapsed.Milliseconds(),
	)
	if d.obs != nil {
		d.obs.PageRendered(view, v.Len(), elapsed)
	}
	return page, nil
}

func normalize(sel analysis.Selection) analysis.Selection {
	return analysis.Selection{
		Seasons:  append([]string{}, sel.Seasons...),
		Weekends: append([]string{}, sel.Weekends...),
	}
}

func labels(p *message.Printer, title, x, y string) chart.Labels {
	l := chart.Labels{Title: p.Sprintf(title)}
	if x != "" {
		l.XLabel = p.Sprintf(x)
	}
	if y != "" {
		l.YLabel = p.Sprintf(y)
	}
	return l
}

func timePanels(p *message.Printer, v analysis.View) ([]Panel, error) {
	hourly, err := analysis.GroupMean(v, analysis.KeyHour, dataset.ColumnCount)
	if err != nil {
		return nil, err
	}
	line, err := chart.Line(labels(p, msgHourlyTitle, msgHour, msgUsage), hourly)
	if err != nil {
		return nil, err
	}

	daily, err := analysis.GroupMean(v, analysis.KeyWeekday, dataset.ColumnCount)
	if err != nil {
		return nil, err
	}
	bar := chart.Bar(labels(p, msgDailyTitle, msgDay, msgUsage), daily, dataset.Weekdays...)

	return []Panel{
		{Heading: p.Sprintf(msgHourlyHeading), Chart: line},
		{Heading: p.Sprintf(msgDailyHeading), Chart: bar},
	}, nil
}

func dayTypePanels(p *message.Printer, v analysis.View) ([]Panel, error) {
	weekend, err := analysis.GroupMean(v, analysis.KeyWeekend, dataset.ColumnCount)
	if err != nil {
		return nil, err
	}
	season, err := analysis.GroupMean(v, analysis.KeySeason, dataset.ColumnCount)
	if err != nil {
		return nil, err
	}
	return []Panel{
		{
			Heading: p.Sprintf(msgWeekendHeading),
			Chart:   chart.Bar(labels(p, msgWeekendTitle, msgDayType, msgUsage), weekend),
		},
		{
			Heading: p.Sprintf(msgSeasonHeading),
			Chart:   chart.Bar(labels(p, msgSeasonTitle, msgSeason, msgUsage), season),
		},
	}, nil
}

func factorPanels(p *message.Printer, v analysis.View) ([]Panel, error) {
	corr, err := analysis.Correlate(v, analysis.DefaultCorrelationColumns()...)
	if err != nil {
		return nil, err
	}
	pts, err := analysis.Points(v, dataset.ColumnTemp, dataset.ColumnCount)
	if err != nil {
		return nil, err
	}
	return []Panel{
		{
			Heading: p.Sprintf(msgCorrHeading),
			Chart:   chart.Heatmap(labels(p, msgCorrTitle, "", ""), corr),
		},
		{
			Heading: p.Sprintf(msgTempHeading),
			Chart:   chart.Scatter(labels(p, msgTempTitle, msgTemperature, msgUsage), pts),
		},
	}, nil
}

func distributionPanels(p *message.Printer, v analysis.View) ([]Panel, error) {
	hist, err := analysis.Histogram(v, dataset.ColumnCount, analysis.DefaultBins)
	if err != nil {
		return nil, err
	}
	box, err := analysis.Summarize(v, dataset.ColumnCount)
	if err != nil {
		return nil, err
	}
	return []Panel{
		{
			Heading: p.Sprintf(msgHistHeading),
			Chart:   chart.Histogram(labels(p, msgHistTitle, msgUsage, msgFrequency), hist),
		},
		{
			Heading: p.Sprintf(msgBoxHeading),
			Chart:   chart.Boxplot(labels(p, msgBoxTitle, msgUsage, ""), box),
		},
	}, nil
}
