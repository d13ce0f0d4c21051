// Package log defines standard attribute keys for dashboard operations.
//
// Keys follow a hierarchical naming convention ("data.rows", "view.id") so
// that log lines from the loader, the aggregation stage and the HTTP server
// can be filtered consistently.

package log

// Component and operation context.
const (
	// ComponentKey identifies which package is logging.
	// Examples: "dataset", "dashboard", "server"
	ComponentKey = "app.component"

	// OperationKey specifies the operation being performed.
	// Standard values: see the Operation* constants below.
	OperationKey = "app.operation"

	// RequestIDKey carries the X-Request-ID of an HTTP request.
	RequestIDKey = "http.request_id"

	// RouteKey is the matched route template of an HTTP request.
	RouteKey = "http.route"

	// StatusKey is the HTTP response status.
	StatusKey = "http.status"
)

// Data shape.
const (
	// PathKey is the input file path.
	PathKey = "data.path"

	// RowsKey is the number of rows in a dataset or view.
	RowsKey = "data.rows"

	// ColumnKey names a dataset column.
	ColumnKey = "data.column"

	// GroupsKey is the number of groups produced by an aggregation.
	GroupsKey = "data.groups"
)

// Dashboard context.
const (
	// ViewKey is the analysis view identifier.
	ViewKey = "view.id"

	// SeasonsKey is the selected season set.
	SeasonsKey = "view.seasons"

	// WeekendsKey is the selected weekend-flag set.
	WeekendsKey = "view.weekends"

	// ChartKindKey is the chart kind (line, bar, heatmap, ...).
	ChartKindKey = "chart.kind"

	// FormatKey is an output format (svg, png, csv, xlsx).
	FormatKey = "chart.format"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the error.
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationLoad   = "load"
	OperationFilter = "filter"
	OperationRender = "render"
	OperationExport = "export"
	OperationReload = "reload"

	ErrorLoad       = "LOAD_FAILED"
	ErrorValidation = "INVALID_INPUT"
	ErrorRender     = "RENDER_FAILED"
)
