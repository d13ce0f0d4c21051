// Package bikedash is an interactive dashboard for exploring hourly
// bike-sharing usage.
//
// It loads a rental CSV (one row per date and hour), lets the user narrow the
// data by season and by weekday/weekend, and renders four analysis views:
//
//   - time: mean rentals per hour of day and per day of week
//   - daytype: weekday versus weekend, and the seasons
//   - factors: correlation of weather with usage, temperature against usage
//   - distribution: histogram with density estimate, and a boxplot
//
// # Quick Start
//
//	go run ./cmd/bikedash -data all_data.csv -addr :8080
//
// then open http://localhost:8080/. Charts can also be written to disk:
//
//	go run ./cmd/bikedash render -data all_data.csv -out charts -format png
//
// # Packages
//
//   - dataset: CSV loading, the shared dataset cache and file watching
//   - analysis: filtering, grouped means, correlation and distribution statistics
//   - chart: chart descriptions and SVG/PNG rendering
//   - dashboard: views, selections and localized labels (English, Indonesian)
//   - export: CSV and XLSX output of the data behind each chart
//   - server: HTTP routes, middleware and the HTML page
//   - metrics: Prometheus collectors
//   - config: JSON, environment and flag settings
//   - core/parallel: splitting row ranges across CPU cores
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Configuration
//
// Every setting can be given in a JSON file (-config), as a BIKEDASH_*
// environment variable, or as a flag; flags win over the environment, which
// wins over the file:
//
//	BIKEDASH_DATA=all_data.csv BIKEDASH_LANG=id bikedash -watch
package bikedash
