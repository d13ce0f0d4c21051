package dataset

import (
	"time"
)

// Dataset is the full table loaded from one input file. It is immutable:
// every accessor returns values or copies.
type Dataset struct {
	path     string
	records  []Record
	seasons  []string
	weekends []string
	loadedAt time.Time
}

func newDataset(path string, records []Record) *Dataset {
	ds := &Dataset{
		path:     path,
		records:  records,
		loadedAt: time.Now(),
	}
	ds.seasons = distinct(records, func(r Record) string { return r.Season })
	ds.weekends = distinct(records, func(r Record) string { return r.IsWeekend })
	return ds
}

// FromRecords builds a Dataset from already parsed records. The slice is
// copied and each record's WeekdayName is derived from its Date.
func FromRecords(records []Record) *Dataset {
	cp := make([]Record, len(records))
	copy(cp, records)
	for i := range cp {
		cp[i].WeekdayName = cp[i].Date.Weekday().String()
	}
	return newDataset("", cp)
}

// Path returns the file the dataset was loaded from ("" for in-memory data).
func (d *Dataset) Path() string {
	return d.path
}

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns row i.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of all rows in file order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Seasons returns the distinct season values in order of first appearance.
func (d *Dataset) Seasons() []string {
	return append([]string(nil), d.seasons...)
}

// Weekends returns the distinct is_weekend values in order of first appearance.
func (d *Dataset) Weekends() []string {
	return append([]string(nil), d.weekends...)
}

func distinct(records []Record, key func(Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
