package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"calplan/internal/calendar"
	"calplan/internal/config"
	"calplan/internal/holiday"
	"calplan/internal/ics"
	appLog "calplan/internal/log"
	"calplan/internal/model"
	"calplan/internal/notify"
	"calplan/internal/planner"
	"calplan/internal/search"
	"calplan/internal/store"
)

// overlapTitle is the error text of a 409 response.
const overlapTitle = "일정 겹침 경고"

// Server exposes the planner, the calendar views and the notification
// session over HTTP.
type Server struct {
	cfg     *config.Config
	planner *planner.Service
	session *notify.Session
	clock   notify.Clock
	mux     *http.ServeMux
}

// NewServer constructs a new Server. A nil clock uses the system clock.
func NewServer(cfg *config.Config, svc *planner.Service, session *notify.Session, clock notify.Clock) *Server {
	if clock == nil {
		clock = notify.SystemClock{}
	}
	s := &Server{
		cfg:     cfg,
		planner: svc,
		session: session,
		clock:   clock,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// 빈 사용자명 또는 비밀번호는 비활성화로 취급한다.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calplan", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves the API on cfg.Listen until ctx is cancelled, then
// shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, svc *planner.Service, session *notify.Session) error {
	s := NewServer(cfg, svc, session, nil)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/events/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)

	s.mux.HandleFunc("GET /api/calendar/week", s.handleWeek)
	s.mux.HandleFunc("GET /api/calendar/month", s.handleMonth)

	s.mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	s.mux.HandleFunc("DELETE /api/notifications/{index}", s.handleDismiss)

	s.mux.HandleFunc("GET /api/options", s.handleOptions)
	s.mux.HandleFunc("GET /api/export.ics", s.handleExport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type eventsResponse struct {
	Events []model.Event `json:"events"`
}

type searchResponse struct {
	Label  string         `json:"label"`
	View   model.ViewMode `json:"view"`
	Events []model.Event  `json:"events"`
}

type overlapResponse struct {
	Error    string        `json:"error"`
	Overlaps []model.Event `json:"overlaps"`
}

type dayEvents struct {
	Date    string        `json:"date"`
	Holiday string        `json:"holiday,omitempty"`
	Events  []model.Event `json:"events"`
}

type weekResponse struct {
	Label string      `json:"label"`
	Days  []dayEvents `json:"days"`
}

type monthResponse struct {
	Label    string            `json:"label"`
	Grid     []calendar.Week   `json:"grid"`
	Holidays map[string]string `json:"holidays"`
	Days     []dayEvents       `json:"days"`
}

type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Notified      []string             `json:"notified"`
}

type optionsResponse struct {
	Categories          []string                   `json:"categories"`
	NotificationOptions []model.NotificationOption `json:"notificationOptions"`
	DefaultView         string                     `json:"defaultView"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.planner.List(r.Context())
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: nonNil(events)})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.planner.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	ev, err := s.planner.Create(r.Context(), d, planner.Options{Confirm: parseBool(r, "confirm")})
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	ev, err := s.planner.Update(r.Context(), r.PathValue("id"), d, planner.Options{Confirm: parseBool(r, "confirm")})
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearch returns the event list for a view window and search term.
//
// GET /api/events/search?q=회의&date=2024-10-01&view=week
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	view, err := model.ParseViewMode(qs.Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "view must be week or month")
		return
	}
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}

	q := search.Query{Term: qs.Get("q"), Date: date, View: view}
	events, err := s.planner.Filter(r.Context(), q)
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Label: q.Label(), View: view, Events: nonNil(events)})
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	events, err := s.planner.List(r.Context())
	if err != nil {
		s.writePlannerError(w, err)
		return
	}

	resp := weekResponse{Label: calendar.FormatWeekLabel(date), Days: make([]dayEvents, 0, 7)}
	for _, d := range calendar.WeekDates(date) {
		key := calendar.FormatDate(d)
		day := dayEvents{Date: key, Holiday: holiday.Name(key), Events: []model.Event{}}
		for _, ev := range events {
			if ev.Date == key {
				day.Events = append(day.Events, ev)
			}
		}
		resp.Days = append(resp.Days, day)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	events, err := s.planner.List(r.Context())
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	inMonth := search.FilterByView(events, date, model.ViewMonth)

	resp := monthResponse{
		Label:    calendar.FormatMonthLabel(date),
		Grid:     calendar.MonthGrid(date),
		Holidays: holiday.ForMonth(date),
	}
	days := calendar.DaysInMonth(date.Year(), int(date.Month()))
	resp.Days = make([]dayEvents, 0, days)
	for day := 1; day <= days; day++ {
		key := calendar.FormatDateWithDay(date, day)
		resp.Days = append(resp.Days, dayEvents{
			Date:    key,
			Holiday: resp.Holidays[key],
			Events:  nonNil(calendar.EventsOnDay(inMonth, day)),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, notificationsResponse{
		Notifications: nonNilNotifications(s.session.Notifications()),
		Notified:      s.session.Notified().IDs(),
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || !s.session.Dismiss(index) {
		writeError(w, http.StatusNotFound, "not found notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	resp := optionsResponse{
		Categories:          model.Categories,
		NotificationOptions: model.NotificationOptions,
		DefaultView:         string(model.ViewMonth),
	}
	if s.cfg != nil {
		if len(s.cfg.Categories) > 0 {
			resp.Categories = s.cfg.Categories
		}
		resp.DefaultView = s.cfg.DefaultView
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	events, err := s.planner.List(r.Context())
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calplan.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(events, s.clock.Now())))
}

// dateParam reads ?date=YYYY-MM-DD, defaulting to today.
func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return calendar.StartOfDay(s.clock.Now()), true
	}
	t, ok := calendar.ParseDate(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

// writePlannerError maps planner and store errors onto status codes.
func (s *Server) writePlannerError(w http.ResponseWriter, err error) {
	var conflict *planner.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, overlapResponse{Error: overlapTitle, Overlaps: conflict.Events})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
	case errors.Is(err, calendar.ErrRequiredFields),
		errors.Is(err, calendar.ErrTimeOrder),
		errors.Is(err, calendar.ErrInvalidDateTime),
		errors.Is(err, calendar.ErrInvalidNotification),
		errors.Is(err, calendar.ErrInvalidRepeat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		appLog.Error("api request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (model.Draft, bool) {
	var d model.Draft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return model.Draft{}, false
	}
	d.Repeat.Normalize()
	return d, true
}

func parseBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func nonNil(events []model.Event) []model.Event {
	if events == nil {
		return []model.Event{}
	}
	return events
}

func nonNilNotifications(n []model.Notification) []model.Notification {
	if n == nil {
		return []model.Notification{}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
