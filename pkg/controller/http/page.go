package http

import (
	"bytes"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/frontend"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/usecase"
)

// PageRenderer renders the embedded HTML templates
type PageRenderer struct {
	templates *template.Template
}

// badgeData is the argument of the "badge" template
type badgeData struct {
	Text string
	Tone types.Tone
}

// errorPage is the data of the error template
type errorPage struct {
	Status  int
	Title   string
	Message string
}

// NewPageRenderer parses the embedded templates. Team badges in rows that
// carry no precomputed tone are colored with palette.
func NewPageRenderer(palette *model.Palette) (*PageRenderer, error) {
	if palette == nil {
		palette = model.DefaultPalette()
	}

	funcs := template.FuncMap{
		"toneClass": func(t types.Tone) string {
			if !t.IsValid() {
				t = types.ToneGray
			}
			return "tone-" + t.String()
		},
		"badge": func(text string, tone types.Tone) badgeData {
			return badgeData{Text: text, Tone: tone}
		},
		"teamTone": palette.TeamTone,
		"coord": func(v float64) string {
			return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
		},
		"add": func(a, b float64) float64 {
			return a + b
		},
	}

	tmpl, err := frontend.Templates(funcs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse page templates")
	}

	return &PageRenderer{templates: tmpl}, nil
}

// render executes a template into a buffer first so a failing template
// never produces a half-written page
func (p *PageRenderer) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, name, data); err != nil {
		ctxlog.From(r.Context()).Error("Failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write page", "error", err)
	}
}

// RenderDashboard writes the dashboard page
func (p *PageRenderer) RenderDashboard(w http.ResponseWriter, r *http.Request, view *usecase.DashboardView) {
	p.render(w, r, http.StatusOK, "dashboard.html", view)
}

// RenderError writes the error page for err
func (p *PageRenderer) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)

	logger := ctxlog.From(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Failed to build dashboard", "error", err)
	} else {
		logger.Info("Dashboard request rejected", "status", status, "error", err)
	}

	p.render(w, r, status, "error.html", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}

// handleDashboard renders the report page of the requested month
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	view, err := s.dashboardUC.Build(r.Context(), usecase.DashboardRequest{
		Month: query.Get("month"),
		Team:  query.Get("team"),
	})
	if err != nil {
		s.pages.RenderError(w, r, err)
		return
	}

	s.pages.RenderDashboard(w, r, view)
}
