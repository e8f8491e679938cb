// Package webform is the local entry form: a small chi server for adding
// leads by hand without touching the CSV in an editor. Strictly a front door
// to the same validated add path the CLI uses.
package webform

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/reconcile"
	"github.com/audreymhoughton/lead-lab/internal/store"
)

type Server struct {
	Store *store.CSV
}

func NewServer(csv *store.CSV) *Server {
	return &Server{Store: csv}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Post("/leads", s.handleAdd)
	return r
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logging.Info().Str("addr", addr).Msg("lead entry form listening")
	return srv.ListenAndServe()
}

type indexData struct {
	Categories []domain.Category
	Leads      []domain.Lead
	Message    string
	Error      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, indexData{
		Message: r.URL.Query().Get("ok"),
		Error:   r.URL.Query().Get("err"),
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	row := map[string]string{
		"Company":     r.PostFormValue("Company"),
		"Website":     r.PostFormValue("Website"),
		"ContactName": r.PostFormValue("ContactName"),
		"Role":        r.PostFormValue("Role"),
		"Email":       r.PostFormValue("Email"),
		"Category":    r.PostFormValue("Category"),
		"WhyFit":      r.PostFormValue("WhyFit"),
		"SourceURL":   r.PostFormValue("SourceURL"),
		"Notes":       r.PostFormValue("Notes"),
		"Status":      string(domain.StatusNew),
		"DateAdded":   domain.Today(),
	}

	release, err := s.Store.Acquire(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer release()

	existing, err := s.Store.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	leads, res := reconcile.AddRows(existing, []map[string]string{row})
	if len(res.Rejected) > 0 {
		http.Redirect(w, r, "/?err="+template.URLQueryEscaper(res.Rejected[0].Reason), http.StatusSeeOther)
		return
	}
	if err := s.Store.Save(leads); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/?ok=saved", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, data indexData) {
	rows, err := s.Store.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, row := range rows {
		data.Leads = append(data.Leads, domain.FromRowMap(row))
	}
	data.Categories = domain.Categories()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		logging.Error().Err(err).Msg("render index")
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Lead Lab</title>
<style>
 body { font-family: sans-serif; max-width: 64rem; margin: 2rem auto; }
 label { display: block; margin-top: .5rem; }
 input, select, textarea { width: 100%; }
 table { border-collapse: collapse; margin-top: 2rem; width: 100%; }
 td, th { border: 1px solid #ccc; padding: .25rem .5rem; font-size: .85rem; }
 .ok { color: green; } .err { color: firebrick; }
</style>
</head>
<body>
<h1>Lead Lab — research-only entry</h1>
{{if .Message}}<p class="ok">{{.Message}}</p>{{end}}
{{if .Error}}<p class="err">{{.Error}}</p>{{end}}
<form method="post" action="/leads">
  <label>Company * <input name="Company" required></label>
  <label>Website <input name="Website"></label>
  <label>ContactName <input name="ContactName"></label>
  <label>Role <input name="Role"></label>
  <label>Email <input name="Email" type="email"></label>
  <label>Category
    <select name="Category">
      {{range .Categories}}<option>{{.}}</option>{{end}}
    </select>
  </label>
  <label>WhyFit <textarea name="WhyFit"></textarea></label>
  <label>SourceURL <input name="SourceURL"></label>
  <label>Notes <textarea name="Notes"></textarea></label>
  <p><button type="submit">Save lead</button></p>
</form>
<h2>Current local leads</h2>
<table>
<tr><th>Company</th><th>Website</th><th>Email</th><th>Category</th><th>Status</th><th>DateAdded</th><th>Key</th></tr>
{{range .Leads}}
<tr><td>{{.Company}}</td><td>{{.Website}}</td><td>{{.Email}}</td><td>{{.Category}}</td><td>{{.Status}}</td><td>{{.DateAdded}}</td><td>{{.Key}}</td></tr>
{{end}}
</table>
</body>
</html>`))
