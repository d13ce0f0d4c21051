package server

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"

	"github.com/YuminosukeSato/bikedash/dashboard"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="{{.Page.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Page.Title}}</title>
<style>
body { display: flex; font-family: sans-serif; margin: 0; }
aside { width: 16rem; padding: 1rem; background: #f4f4f4; min-height: 100vh; }
main { flex: 1; padding: 1rem 2rem; }
fieldset { border: none; padding: 0; margin: 0 0 1rem 0; }
img { max-width: 100%; }
</style>
</head>
<body>
<aside>
<h2>{{.Page.Text.Settings}}</h2>
<form method="get" action="/">
<input type="hidden" name="lang" value="{{.Page.Language}}">
<fieldset>
<legend>{{.Page.Text.ChooseAnalysis}}</legend>
<select name="view">
{{- range .Views}}
<option value="{{.ID}}"{{if eq .ID $.Page.View}} selected{{end}}>{{.Title}}</option>
{{- end}}
</select>
</fieldset>
<fieldset>
<legend>{{.Page.Text.ChooseSeason}}</legend>
<input type="hidden" name="season" value="">
{{- range .Seasons}}
<label><input type="checkbox" name="season" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Value}}</label><br>
{{- end}}
</fieldset>
<fieldset>
<legend>{{.Page.Text.ChooseDayType}}</legend>
<input type="hidden" name="weekend" value="">
{{- range .Weekends}}
<label><input type="checkbox" name="weekend" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Value}}</label><br>
{{- end}}
</fieldset>
<button type="submit">{{.Page.Text.Apply}}</button>
</form>
<p>{{.Page.Text.Rows}}</p>
</aside>
<main>
<h1>{{.Page.Title}}</h1>
{{- range $i, $p := .Page.Panels}}
<section>
<h3>{{$p.Heading}}</h3>
<img src="/api/views/{{$.Page.View}}/charts/{{$i}}.svg?{{$.Query}}" alt="{{$p.Chart.Title}}">
<p><a href="/api/views/{{$.Page.View}}/export.csv?chart={{$i}}&amp;{{$.Query}}">CSV</a></p>
</section>
{{- end}}
<p><a href="/api/views/{{.Page.View}}/export.xlsx?{{.Query}}">XLSX</a></p>
</main>
</body>
</html>
`))

type choice struct {
	Value   string
	Checked bool
}

type indexData struct {
	Page     *dashboard.Page
	Views    []dashboard.ViewInfo
	Seasons  []choice
	Weekends []choice
	Query    template.URL
}

func choices(all, selected []string) []choice {
	in := make(map[string]bool, len(selected))
	for _, s := range selected {
		in[s] = true
	}
	out := make([]choice, len(all))
	for i, v := range all {
		out[i] = choice{Value: v, Checked: in[v]}
	}
	return out
}

// chartQuery carries the selection and language over to chart and export
// links. Empty sets are kept as "season=" so the selection survives.
func chartQuery(page *dashboard.Page) string {
	q := url.Values{}
	q.Set("lang", page.Language)
	if len(page.Selection.Seasons) == 0 {
		q["season"] = []string{""}
	} else {
		q["season"] = page.Selection.Seasons
	}
	if len(page.Selection.Weekends) == 0 {
		q["weekend"] = []string{""}
	} else {
		q["weekend"] = page.Selection.Weekends
	}
	return q.Encode()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboardFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view := dashboard.ViewTime
	if v := r.URL.Query().Get("view"); v != "" {
		if view, err = dashboard.ParseView(v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	page, err := d.Render(view, selectionFrom(r.URL.Query(), d.Dataset()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := d.Options()
	data := indexData{
		Page:     page,
		Views:    d.Views(),
		Seasons:  choices(opts.Seasons, page.Selection.Seasons),
		Weekends: choices(opts.Weekends, page.Selection.Weekends),
		Query:    template.URL(chartQuery(page)),
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
