// Package server provides the HTTP server and handlers.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bryan-buckman/vakantie/internal/countdown"
	"github.com/bryan-buckman/vakantie/internal/database"
	"github.com/bryan-buckman/vakantie/internal/model"
	"github.com/bryan-buckman/vakantie/internal/preference"
	"github.com/bryan-buckman/vakantie/internal/vacation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// readyTimeout bounds how long a page waits for preferences to load.
const readyTimeout = 5 * time.Second

// VacationSource provides the holiday data per school year.
type VacationSource interface {
	Periods(ctx context.Context, year model.SchoolYear) []model.VacationPeriod
	FetchYears(ctx context.Context, years []model.SchoolYear) map[model.SchoolYear][]model.VacationPeriod
}

// Server is the main HTTP server.
type Server struct {
	store     database.Store
	prefs     *preference.Preferences
	source    VacationSource
	router    chi.Router
	templates *template.Template
	http      *http.Server

	now func() time.Time
	loc *time.Location
}

// New creates a new server.
func New(store database.Store, prefs *preference.Preferences, source VacationSource) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"shortDate":   shortDate,
		"longDate":    longDate,
		"numericDate": numericDate,
		"lower":       strings.ToLower,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		log.Printf("Timezone Europe/Amsterdam unavailable, using local time: %v", err)
		loc = time.Local
	}

	s := &Server{
		store:     store,
		prefs:     prefs,
		source:    source,
		templates: tmpl,
		now:       time.Now,
		loc:       loc,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Serve static files.
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages wait until the stored preferences are known.
	r.Group(func(r chi.Router) {
		r.Use(s.requirePreferences)
		r.Get("/", s.handleOverview)
		r.Get("/countdown", s.handleCountdown)
		r.Post("/preferences", s.handleSetPreferences)

		// Exports.
		r.Get("/calendar/{region}.ics", s.handleCalendar)
		r.Get("/feed/{region}.xml", s.handleFeed)
	})
	r.Get("/about", s.handleAbout)

	// API.
	r.Route("/api", func(r chi.Router) {
		r.Use(s.requirePreferences)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
		r.Get("/vacations", s.handleVacations)
		r.Get("/countdown", s.handleCountdownAPI)
	})

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Server starting on %s", addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down and waits for pending preference writes.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.prefs.Wait()
	return err
}

// requirePreferences holds requests until both preferences are loaded.
func (s *Server) requirePreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.prefs.WaitReady(ctx); err != nil {
			http.Error(w, "Loading...", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// today returns the current time in the Dutch timezone.
func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

// --- Helpers ---

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}

var dutchMonths = [...]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}

// shortDate formats as "18 okt".
func shortDate(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), dutchMonths[t.Month()-1])
}

// longDate formats as "26 okt 2025".
func longDate(t time.Time) string {
	return fmt.Sprintf("%s %d", shortDate(t), t.Year())
}

// numericDate formats as "18-10-2025".
func numericDate(t time.Time) string {
	return t.Format("2-1-2006")
}

// nextVacation resolves the next vacation for a region, looking into the
// following school year when the selected one has nothing left.
func (s *Server) nextVacation(ctx context.Context, region model.Region, year model.SchoolYear) (model.ResolvedVacation, bool) {
	load := func(y model.SchoolYear) []model.VacationPeriod { return s.source.Periods(ctx, y) }
	return vacation.NextAcross(load, region, year, s.today())
}

// remaining returns the countdown to a vacation's local start.
func (s *Server) remaining(v model.ResolvedVacation) countdown.Remaining {
	return countdown.Until(countdown.StartOf(v.Start, s.loc), s.now())
}
