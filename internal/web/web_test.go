package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"calplan/internal/config"
	appLog "calplan/internal/log"
	"calplan/internal/model"
	"calplan/internal/notify"
	"calplan/internal/planner"
	"calplan/internal/store"
	"calplan/internal/web"
)

var now = time.Date(2024, 10, 15, 8, 55, 0, 0, time.Local)

type fixture struct {
	handler http.Handler
	planner *planner.Service
	session *notify.Session
}

func newFixture(t *testing.T, cfg *config.Config) fixture {
	t.Helper()
	appLog.SetOutput(io.Discard)

	st, err := store.Open(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	svc := planner.New(st)
	session := notify.NewSession()
	srv := web.NewServer(cfg, svc, session, notify.FixedClock{T: now})
	return fixture{handler: srv.Handler(), planner: svc, session: session}
}

func (f fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func meeting() model.Draft {
	return model.Draft{
		Title:            "팀 회의",
		Date:             "2024-10-15",
		StartTime:        "09:00",
		EndTime:          "10:00",
		Category:         "업무",
		Repeat:           model.Repeat{Type: model.RepeatNone, Interval: 1},
		NotificationTime: 10,
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestEventLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/events", meeting())
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST = %d %s", rec.Code, rec.Body.String())
	}
	created := decode[model.Event](t, rec)
	if created.ID == "" || created.Title != "팀 회의" {
		t.Fatalf("created = %+v", created)
	}

	clash := meeting()
	clash.Title = "고객 미팅"
	clash.StartTime, clash.EndTime = "09:30", "10:30"
	rec = f.do(t, http.MethodPost, "/api/events", clash)
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlapping POST = %d %s", rec.Code, rec.Body.String())
	}
	conflict := decode[struct {
		Error    string        `json:"error"`
		Overlaps []model.Event `json:"overlaps"`
	}](t, rec)
	if conflict.Error != "일정 겹침 경고" || len(conflict.Overlaps) != 1 || conflict.Overlaps[0].ID != created.ID {
		t.Errorf("conflict body = %+v", conflict)
	}

	rec = f.do(t, http.MethodPost, "/api/events?confirm=true", clash)
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirmed POST = %d %s", rec.Code, rec.Body.String())
	}

	moved := meeting()
	moved.StartTime, moved.EndTime = "14:00", "15:00"
	rec = f.do(t, http.MethodPut, "/api/events/"+created.ID, moved)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT = %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[model.Event](t, rec); got.ID != created.ID || got.StartTime != "14:00" {
		t.Errorf("updated = %+v", got)
	}

	rec = f.do(t, http.MethodGet, "/api/events", nil)
	list := decode[struct {
		Events []model.Event `json:"events"`
	}](t, rec)
	if len(list.Events) != 2 {
		t.Errorf("GET /api/events returned %d events, want 2", len(list.Events))
	}

	rec = f.do(t, http.MethodDelete, "/api/events/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/api/events/"+created.ID, nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "not found event") {
		t.Errorf("second DELETE = %d %s", rec.Code, rec.Body.String())
	}
}

func TestEventErrors(t *testing.T) {
	f := newFixture(t, nil)

	backwards := meeting()
	backwards.StartTime, backwards.EndTime = "11:00", "10:00"
	missing := meeting()
	missing.Title = ""
	unpadded := meeting()
	unpadded.StartTime = "9:00"
	negative := meeting()
	negative.NotificationTime = -5

	tests := []struct {
		name   string
		method string
		target string
		body   any
		code   int
		substr string
	}{
		{"time order", http.MethodPost, "/api/events", backwards, http.StatusBadRequest, "시간 설정을 확인해주세요."},
		{"required fields", http.MethodPost, "/api/events", missing, http.StatusBadRequest, "필수 정보를 모두 입력해주세요."},
		{"unpadded time", http.MethodPost, "/api/events", unpadded, http.StatusBadRequest, "날짜와 시간 형식을 확인해주세요."},
		{"negative notification", http.MethodPost, "/api/events", negative, http.StatusBadRequest, "알림 시간을 확인해주세요."},
		{"bad json", http.MethodPost, "/api/events", "not an object", http.StatusBadRequest, "invalid JSON"},
		{"update unknown", http.MethodPut, "/api/events/nope", meeting(), http.StatusNotFound, "not found event"},
		{"get unknown", http.MethodGet, "/api/events/nope", nil, http.StatusNotFound, "not found event"},
		{"bad date", http.MethodGet, "/api/calendar/week?date=2024/10/15", nil, http.StatusBadRequest, "YYYY-MM-DD"},
		{"bad view", http.MethodGet, "/api/events/search?view=day", nil, http.StatusBadRequest, "view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.target, tt.body)
			if rec.Code != tt.code || !strings.Contains(rec.Body.String(), tt.substr) {
				t.Errorf("%s %s = %d %s, want %d containing %q", tt.method, tt.target, rec.Code, rec.Body.String(), tt.code, tt.substr)
			}
		})
	}
}

func TestSearchAndCalendarViews(t *testing.T) {
	f := newFixture(t, nil)
	for _, d := range []model.Draft{
		meeting(),
		{Title: "점심 약속", Date: "2024-10-09", StartTime: "12:00", EndTime: "13:00", Location: "강남", NotificationTime: 10},
		{Title: "11월 회의", Date: "2024-11-05", StartTime: "09:00", EndTime: "10:00", NotificationTime: 10},
	} {
		if rec := f.do(t, http.MethodPost, "/api/events", d); rec.Code != http.StatusCreated {
			t.Fatalf("seed POST = %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := f.do(t, http.MethodGet, "/api/events/search?q=회의&view=month", nil)
	res := decode[struct {
		Label  string        `json:"label"`
		Events []model.Event `json:"events"`
	}](t, rec)
	if res.Label != "2024년 10월" || len(res.Events) != 1 || res.Events[0].Title != "팀 회의" {
		t.Errorf("month search = %+v", res)
	}

	rec = f.do(t, http.MethodGet, "/api/events/search?q=강남&view=week&date=2024-10-09", nil)
	res = decode[struct {
		Label  string        `json:"label"`
		Events []model.Event `json:"events"`
	}](t, rec)
	if res.Label != "2024년 10월 2주" || len(res.Events) != 1 {
		t.Errorf("week search = %+v", res)
	}

	rec = f.do(t, http.MethodGet, "/api/calendar/week", nil)
	week := decode[struct {
		Label string `json:"label"`
		Days  []struct {
			Date   string        `json:"date"`
			Events []model.Event `json:"events"`
		} `json:"days"`
	}](t, rec)
	if week.Label != "2024년 10월 3주" || len(week.Days) != 7 {
		t.Fatalf("week = %+v", week)
	}
	if week.Days[0].Date != "2024-10-13" || len(week.Days[2].Events) != 1 {
		t.Errorf("week days = %+v", week.Days)
	}

	rec = f.do(t, http.MethodGet, "/api/calendar/month?date=2024-10-01", nil)
	month := decode[struct {
		Label    string            `json:"label"`
		Grid     [][]*int          `json:"grid"`
		Holidays map[string]string `json:"holidays"`
		Days     []struct {
			Date    string        `json:"date"`
			Holiday string        `json:"holiday"`
			Events  []model.Event `json:"events"`
		} `json:"days"`
	}](t, rec)
	if month.Label != "2024년 10월" || len(month.Grid) != 5 || len(month.Days) != 31 {
		t.Fatalf("month = label %q, %d rows, %d days", month.Label, len(month.Grid), len(month.Days))
	}
	if month.Grid[0][0] != nil || month.Grid[0][2] == nil || *month.Grid[0][2] != 1 {
		t.Errorf("first grid row = %v", month.Grid[0])
	}
	if month.Holidays["2024-10-09"] != "한글날" || month.Days[8].Holiday != "한글날" {
		t.Errorf("holidays = %v, day 9 = %+v", month.Holidays, month.Days[8])
	}
	if len(month.Days[8].Events) != 1 || len(month.Days[14].Events) != 1 || len(month.Days[4].Events) != 0 {
		t.Errorf("November event leaked into October or day buckets wrong: %+v", month.Days)
	}
}

func TestNotifications(t *testing.T) {
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodPost, "/api/events", meeting()); rec.Code != http.StatusCreated {
		t.Fatalf("POST = %d", rec.Code)
	}

	events, err := f.planner.List(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if raised := f.session.Tick(events, now); len(raised) != 1 {
		t.Fatalf("Tick raised %d, want 1", len(raised))
	}

	rec := f.do(t, http.MethodGet, "/api/notifications", nil)
	got := decode[struct {
		Notifications []model.Notification `json:"notifications"`
		Notified      []string             `json:"notified"`
	}](t, rec)
	if len(got.Notifications) != 1 || got.Notifications[0].Message != "10분 후 팀 회의 일정이 시작됩니다." || len(got.Notified) != 1 {
		t.Errorf("notifications = %+v", got)
	}

	if rec := f.do(t, http.MethodDelete, "/api/notifications/3", nil); rec.Code != http.StatusNotFound {
		t.Errorf("DELETE out of range = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/notifications/0", nil); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /0 = %d", rec.Code)
	}
	if n := len(f.session.Notifications()); n != 0 {
		t.Errorf("notifications after dismiss = %d", n)
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/api/events", meeting())

	rec := f.do(t, http.MethodGet, "/api/export.ics", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar") {
		t.Fatalf("export = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VEVENT") || !strings.Contains(body, "DTSTART:20241015T090000") {
		t.Errorf("export body:\n%s", body)
	}
}

func TestOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultView = "week"
	f := newFixture(t, cfg)

	rec := f.do(t, http.MethodGet, "/api/options", nil)
	got := decode[struct {
		Categories          []string                   `json:"categories"`
		NotificationOptions []model.NotificationOption `json:"notificationOptions"`
		DefaultView         string                     `json:"defaultView"`
	}](t, rec)
	if len(got.Categories) != 4 || len(got.NotificationOptions) != 5 || got.DefaultView != "week" {
		t.Errorf("options = %+v", got)
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "me", Password: "secret"}
	f := newFixture(t, cfg)

	if rec := f.do(t, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("/health with auth enabled = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/events", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /api/events = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("me", "secret")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated /api/events = %d", rec.Code)
	}
}
