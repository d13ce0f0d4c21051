package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/YuminosukeSato/bikedash/analysis"
	"github.com/YuminosukeSato/bikedash/chart"
	"github.com/YuminosukeSato/bikedash/dashboard"
	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/export"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

const (
	paramSeason  = "season"
	paramWeekend = "weekend"
	paramChart   = "chart"
)

// selectionFrom reads the selection from q. A missing parameter selects
// every value of ds; empty values are dropped, so "season=" selects nothing.
func selectionFrom(q url.Values, ds *dataset.Dataset) analysis.Selection {
	sel := analysis.AllSelected(ds)
	if vals, ok := q[paramSeason]; ok {
		sel.Seasons = nonEmpty(vals)
	}
	if vals, ok := q[paramWeekend]; ok {
		sel.Weekends = nonEmpty(vals)
	}
	return sel
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// renderPage resolves the view and selection of r and renders the page.
func (s *Server) renderPage(r *http.Request) (*dashboard.Page, error) {
	d, err := s.dashboardFor(r)
	if err != nil {
		return nil, err
	}
	view, err := dashboard.ParseView(mux.Vars(r)["view"])
	if err != nil {
		return nil, err
	}
	return d.Render(view, selectionFrom(r.URL.Query(), d.Dataset()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds, err := s.cache.Get(s.path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"rows":      ds.Len(),
		"loaded_at": ds.LoadedAt().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboardFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d.Views())
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboardFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d.Options())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.renderPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format, err := chart.ParseFormat(vars["format"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		s.writeError(w, r, errors.NewValidationError("index", "must be an integer", vars["index"]))
		return
	}

	page, err := s.renderPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := page.Chart(index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = chart.Render(c, format, &buf)
	s.metrics.ChartRendered(string(c.Kind), string(format), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.renderPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	filename := "bikedash-" + string(page.View) + "." + string(format)
	switch format {
	case export.CSV:
		index := 0
		if v := r.URL.Query().Get(paramChart); v != "" {
			if index, err = strconv.Atoi(v); err != nil {
				s.writeError(w, r, errors.NewValidationError(paramChart, "must be an integer", v))
				return
			}
		}
		c, err := page.Chart(index)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := export.WriteCSV(&buf, c); err != nil {
			s.writeError(w, r, err)
			return
		}
		filename = "bikedash-" + string(page.View) + "-" + strconv.Itoa(index) + ".csv"
	case export.XLSX:
		if err := export.WriteXLSX(&buf, page); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	loggerFrom(r.Context(), s.logger).Info("exported",
		log.OperationKey, log.OperationExport,
		log.ViewKey, string(page.View),
		log.FormatKey, string(format),
		log.RowsKey, page.Rows,
	)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var (
		loadErr *errors.LoadError
		valErr  *errors.ValidationError
	)
	switch {
	case errors.Is(err, errors.ErrUnknownView):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.As(err, &valErr):
		if valErr.ParamName == "path" {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case errors.As(err, &loadErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := loggerFrom(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", err, log.RouteKey, r.URL.Path, log.StatusKey, status)
	} else {
		logger.Debug("request rejected", log.RouteKey, r.URL.Path, log.StatusKey, status, log.ErrAttrKey, err)
	}
	body, _ := json.Marshal(errorBody{Error: err.Error(), RequestID: RequestIDFrom(r.Context())})
	writeBody(w, status, body)
}

// writeJSON encodes v before the status is sent. Encoding failures are
// reported as errors.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "encode response"))
		return
	}
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
