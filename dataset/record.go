package dataset

import (
	"math"
	"time"
)

// Column names a column of the input file.
type Column string

// Input columns.
const (
	ColumnDate      Column = "dteday"
	ColumnHour      Column = "hr"
	ColumnSeason    Column = "season"
	ColumnWeekend   Column = "is_weekend"
	ColumnTemp      Column = "temp"
	ColumnHumidity  Column = "hum"
	ColumnWindspeed Column = "windspeed"
	ColumnCount     Column = "hour_count"
)

// RequiredColumns lists the columns every input file must carry.
func RequiredColumns() []Column {
	return []Column{
		ColumnDate, ColumnHour, ColumnSeason, ColumnWeekend,
		ColumnTemp, ColumnHumidity, ColumnWindspeed, ColumnCount,
	}
}

// NumericColumns lists the columns readable through Record.Value.
func NumericColumns() []Column {
	return []Column{ColumnCount, ColumnTemp, ColumnHumidity, ColumnWindspeed}
}

// Weekdays is the display order of weekday names, Monday first.
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// Record is one row of the dataset. Missing numeric values are NaN.
type Record struct {
	Date        time.Time
	Hour        int
	WeekdayName string
	Season      string
	IsWeekend   string
	Temp        float64
	Humidity    float64
	Windspeed   float64
	Count       float64
}

// Value returns the numeric value of column c. The second result is false
// for non-numeric columns. Hour is reported as a float.
func (r Record) Value(c Column) (float64, bool) {
	switch c {
	case ColumnCount:
		return r.Count, true
	case ColumnTemp:
		return r.Temp, true
	case ColumnHumidity:
		return r.Humidity, true
	case ColumnWindspeed:
		return r.Windspeed, true
	case ColumnHour:
		return float64(r.Hour), true
	default:
		return math.NaN(), false
	}
}

// IsNumeric reports whether Record.Value accepts c.
func IsNumeric(c Column) bool {
	_, ok := Record{}.Value(c)
	return ok
}
