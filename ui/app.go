package ui

import (
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"autochart/adapters/render"
	"autochart/domain/chart"
	"autochart/internal"
	"autochart/internal/dashboard"
	"autochart/internal/report"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App serves the rendered data report
type App struct {
	router    *chi.Mux
	dashboard *dashboard.Service
	templates *template.Template
	renderer  *render.Renderer
	logger    *internal.Logger
}

// NewApp creates the report application
func NewApp(svc *dashboard.Service) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		dashboard: svc,
		templates: templates,
		renderer:  render.NewRenderer(render.DefaultOptions()),
		logger:    internal.DefaultLogger,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/report", http.StatusFound)
	})
	a.router.Get("/report", a.handleReport)
	a.router.Get("/report.md", a.handleMarkdown)
	a.router.Get("/charts/{id}", a.handleChartImage)
}

// Handler exposes the router for embedding and tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	a.logger.Info("[App] report available at http://%s/report", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) reportInput(r *http.Request) (report.Input, error) {
	snap := a.dashboard.Snapshot()
	profile, err := a.dashboard.Profile(r.Context())
	if err != nil {
		return report.Input{}, err
	}
	saved, err := a.dashboard.DashboardCharts(r.Context())
	if err != nil {
		return report.Input{}, err
	}
	title := "Data Report"
	if snap.Source != nil {
		title = snap.Source.FileName
	}
	return report.Input{
		Title:   title,
		Source:  snap.Source,
		Dataset: snap.Dataset,
		Profile: profile,
		Charts:  saved,
	}, nil
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	in, err := a.reportInput(r)
	if err != nil {
		a.logger.Error("[App] failed to build report: %v", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	gallery, err := a.gallery(r)
	if err != nil {
		a.logger.Error("[App] failed to build charts: %v", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title       string
		Body        template.HTML
		Charts      []chart.Spec
		GeneratedAt string
	}{
		Title:       in.Title,
		Body:        template.HTML(report.HTML(in)),
		Charts:      gallery,
		GeneratedAt: time.Now().UTC().Format(time.RFC1123),
	}
	if err := a.templates.ExecuteTemplate(w, "report.html", data); err != nil {
		a.logger.Error("[App] template error: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (a *App) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	in, err := a.reportInput(r)
	if err != nil {
		a.logger.Error("[App] failed to build report: %v", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, report.Markdown(in))
}

// gallery lists the drawable charts: saved charts first, then recommendations
func (a *App) gallery(r *http.Request) ([]chart.Spec, error) {
	saved, err := a.dashboard.DashboardCharts(r.Context())
	if err != nil {
		return nil, err
	}
	auto, err := a.dashboard.AutoCharts(r.Context())
	if err != nil {
		return nil, err
	}

	specs := make([]chart.Spec, 0, len(saved)+len(auto))
	for _, group := range [][]chart.Spec{saved, auto} {
		for _, spec := range group {
			if !spec.IsEmpty() {
				specs = append(specs, spec)
			}
		}
	}
	return specs, nil
}

func (a *App) handleChartImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatPNG
	}

	specs, err := a.gallery(r)
	if err != nil {
		a.logger.Error("[App] failed to build charts: %v", err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}

	for _, spec := range specs {
		if spec.ID != id {
			continue
		}
		img, err := a.renderer.Render(spec, format)
		switch {
		case stderrors.Is(err, render.ErrEmptyChart):
			http.Error(w, err.Error(), http.StatusNotFound)
		case err != nil:
			a.logger.Warn("[App] failed to render chart %s: %v", id, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			w.Header().Set("Content-Type", render.ContentType(format))
			w.Header().Set("Cache-Control", "no-store")
			_, _ = w.Write(img)
		}
		return
	}
	http.Error(w, fmt.Sprintf("chart %q not found", id), http.StatusNotFound)
}
