// Package dataset loads the bicycle-rental CSV into an immutable in-memory
// table.
//
// Loading parses the file with go-gota, checks that the required columns are
// present, parses the "dteday" column as a calendar date and derives two
// fields per row: Hour (copied from "hr") and WeekdayName (the English
// weekday name of the date).
//
//	ds, err := dataset.Load("all_data.csv")
//	if err != nil {
//	    // *errors.LoadError: missing file, malformed CSV, missing column ...
//	}
//	fmt.Println(ds.Len(), ds.Seasons(), ds.Weekends())
//
// A Dataset is never modified after Load returns. Cache memoizes one Dataset
// per file path for the lifetime of the process, and Watch can optionally
// swap in a freshly loaded Dataset when the file is rewritten.
package dataset
