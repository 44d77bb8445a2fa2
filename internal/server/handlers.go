package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/bryan-buckman/vakantie/internal/export"
	"github.com/bryan-buckman/vakantie/internal/model"
	"github.com/bryan-buckman/vakantie/internal/vacation"
	"github.com/go-chi/chi/v5"
)

// yearOption is one entry of the school year switcher.
type yearOption struct {
	Value  model.SchoolYear
	Label  string
	Active bool
}

// pageData is shared by all page templates.
type pageData struct {
	Title    string
	Path     string
	Refresh  bool
	Database string

	Region      model.Region
	Regions     []model.Region
	SchoolYear  model.SchoolYear
	SchoolYears []yearOption

	Next      *model.ResolvedVacation
	All       []model.ResolvedVacation
	Countdown string
	Season    string
}

func (s *Server) basePage(title, path string) pageData {
	return pageData{
		Title:      title,
		Path:       path,
		Region:     s.prefs.Region.Get(),
		Regions:    model.Regions,
		SchoolYear: s.prefs.SchoolYear.Get(),
	}
}

// --- Page Handlers ---

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("Vakanties", "/")

	for i, y := range model.SchoolYearOptions(s.today()) {
		label := string(y)
		if i == 0 {
			label = "Huidig jaar"
		}
		data.SchoolYears = append(data.SchoolYears, yearOption{Value: y, Label: label, Active: y == data.SchoolYear})
	}

	periods := s.source.Periods(r.Context(), data.SchoolYear)
	if v, ok := vacation.Upcoming(periods, data.Region, s.today()); ok {
		data.Next = &v
	}
	data.All = vacation.All(periods, data.Region)

	s.render(w, "index.html", data)
}

func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("Aftellen", "/countdown")
	data.Season = model.Season(s.today())

	if v, ok := s.nextVacation(r.Context(), data.Region, data.SchoolYear); ok {
		data.Next = &v
		rem := s.remaining(v)
		data.Countdown = rem.String()
		data.Refresh = !rem.Started
	}

	s.render(w, "countdown.html", data)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("Over", "/about")
	data.Database = s.store.DatabaseType()
	s.render(w, "about.html", data)
}

// handleSetPreferences handles the region and school year switchers.
func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if err := s.applyPreferences(r.PostForm.Get("region"), r.PostForm.Get("schoolyear")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	next := r.PostForm.Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// applyPreferences validates both values before setting either. Empty values
// are left unchanged.
func (s *Server) applyPreferences(region, schoolYear string) error {
	var (
		rg  model.Region
		sy  model.SchoolYear
		err error
	)
	if region != "" {
		if rg, err = model.ParseRegion(region); err != nil {
			return err
		}
	}
	if schoolYear != "" {
		if sy, err = model.ParseSchoolYear(schoolYear); err != nil {
			return err
		}
	}
	if rg != "" {
		s.prefs.Region.Set(rg)
	}
	if sy != "" {
		s.prefs.SchoolYear.Set(sy)
	}
	return nil
}

// --- API Handlers ---

type preferencesBody struct {
	Region     model.Region     `json:"region"`
	SchoolYear model.SchoolYear `json:"schoolYear"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, preferencesBody{
		Region:     s.prefs.Region.Get(),
		SchoolYear: s.prefs.SchoolYear.Get(),
	})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := s.applyPreferences(string(req.Region), string(req.SchoolYear)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.handleGetPreferences(w, r)
}

type vacationsResponse struct {
	Region     model.Region             `json:"region"`
	SchoolYear model.SchoolYear         `json:"schoolYear"`
	Next       *model.ResolvedVacation  `json:"next"`
	All        []model.ResolvedVacation `json:"all"`
}

func (s *Server) handleVacations(w http.ResponseWriter, r *http.Request) {
	region, year, err := s.queryOverrides(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	periods := s.source.Periods(r.Context(), year)
	resp := vacationsResponse{
		Region:     region,
		SchoolYear: year,
		All:        vacation.All(periods, region),
	}
	if resp.All == nil {
		resp.All = []model.ResolvedVacation{}
	}
	if v, ok := vacation.Upcoming(periods, region, s.today()); ok {
		resp.Next = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

type countdownResponse struct {
	Region  model.Region            `json:"region"`
	Next    *model.ResolvedVacation `json:"next"`
	Days    int                     `json:"days"`
	Hours   int                     `json:"hours"`
	Minutes int                     `json:"minutes"`
	Seconds int                     `json:"seconds"`
	Started bool                    `json:"started"`
	Text    string                  `json:"text"`
	Season  string                  `json:"season"`
}

func (s *Server) handleCountdownAPI(w http.ResponseWriter, r *http.Request) {
	region, year, err := s.queryOverrides(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := countdownResponse{Region: region, Season: model.Season(s.today())}
	if v, ok := s.nextVacation(r.Context(), region, year); ok {
		rem := s.remaining(v)
		resp.Next = &v
		resp.Days, resp.Hours, resp.Minutes, resp.Seconds = rem.Days, rem.Hours, rem.Minutes, rem.Seconds
		resp.Started = rem.Started
		resp.Text = rem.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryOverrides returns the region and school year for a request: query
// parameters when given, otherwise the stored preferences.
func (s *Server) queryOverrides(r *http.Request) (model.Region, model.SchoolYear, error) {
	region := s.prefs.Region.Get()
	year := s.prefs.SchoolYear.Get()

	if q := r.URL.Query().Get("region"); q != "" {
		rg, err := model.ParseRegion(q)
		if err != nil {
			return "", "", err
		}
		region = rg
	}
	if q := r.URL.Query().Get("schoolyear"); q != "" {
		sy, err := model.ParseSchoolYear(q)
		if err != nil {
			return "", "", err
		}
		year = sy
	}
	return region, year, nil
}

// --- Export Handlers ---

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	region, err := model.ParseRegion(chi.URLParam(r, "region"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	year := s.prefs.SchoolYear.Get()
	if q := r.URL.Query().Get("schoolyear"); q != "" {
		if year, err = model.ParseSchoolYear(q); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	cal := export.Calendar{
		Region:    region,
		Vacations: vacation.All(s.source.Periods(r.Context(), year), region),
		Stamp:     s.now(),
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=schoolvakanties-"+strings.ToLower(string(region))+".ics")
	if err := export.WriteICS(w, cal); err != nil {
		log.Printf("Failed to write calendar: %v", err)
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	region, err := model.ParseRegion(chi.URLParam(r, "region"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	current := model.CurrentSchoolYear(s.today())
	years := []model.SchoolYear{current, current.Next()}
	byYear := s.source.FetchYears(r.Context(), years)

	var periods []model.VacationPeriod
	for _, y := range years {
		periods = append(periods, byYear[y]...)
	}

	feed := export.Feed{
		Region:    region,
		Link:      requestBaseURL(r),
		Vacations: vacation.UpcomingAll(periods, region, s.today()),
		Built:     s.now(),
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := export.WriteRSS(w, feed); err != nil {
		log.Printf("Failed to write feed: %v", err)
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
