package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"calplan/internal/config"
	appLog "calplan/internal/log"
)

func setup(t *testing.T) string {
	t.Helper()
	appLog.SetOutput(io.Discard)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataFile = filepath.Join(dir, "events.json")
	cfg.CacheDir = filepath.Join(dir, "cache")
	path := filepath.Join(dir, "calplan.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("config.Save: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAddListEditDelete(t *testing.T) {
	cfg := setup(t)

	out, err := run(t, cfg, "add", "--title", "팀 회의", "--date", "2024-10-15", "--start", "09:00", "--end", "10:00", "--category", "업무")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	id := strings.TrimSpace(strings.TrimPrefix(out, "added "))
	if id == "" {
		t.Fatalf("add output = %q", out)
	}

	out, err = run(t, cfg, "add", "--title", "겹침", "--date", "2024-10-15", "--start", "09:30", "--end", "11:00")
	if err == nil || !strings.Contains(out, "일정 겹침 경고") || !strings.Contains(out, "팀 회의") {
		t.Errorf("overlapping add = %v\n%s", err, out)
	}

	out, err = run(t, cfg, "list", "--view", "week", "--date", "2024-10-15")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.HasPrefix(out, "2024년 10월 3주\n") || !strings.Contains(out, "09:00-10:00  팀 회의 [업무]") {
		t.Errorf("list output:\n%s", out)
	}

	if out, err = run(t, cfg, "edit", id, "--start", "13:00", "--end", "14:00", "--location", "3층", "--notify", "60"); err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	out, _ = run(t, cfg, "list", "--date", "2024-10-15", "--search", "3층")
	if !strings.Contains(out, "13:00-14:00  팀 회의 [업무] @3층 알림: 1시간 전") {
		t.Errorf("list after edit:\n%s", out)
	}

	if _, err := run(t, cfg, "edit", id, "--end", "12:00"); err == nil {
		t.Error("edit with end before start succeeded")
	}

	if _, err := run(t, cfg, "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, cfg, "delete", id); err == nil {
		t.Error("second delete succeeded")
	}
}

func TestMonth(t *testing.T) {
	cfg := setup(t)
	if _, err := run(t, cfg, "add", "--title", "점심", "--date", "2024-10-09", "--start", "12:00", "--end", "13:00"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, cfg, "month", "--date", "2024-10-20")
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	for _, want := range []string{"2024년 10월", "  9*+1", "* 2024-10-09 한글날", "* 2024-10-03 개천절"} {
		if !strings.Contains(out, want) {
			t.Errorf("month output missing %q:\n%s", want, out)
		}
	}
}

func TestExportImport(t *testing.T) {
	cfg := setup(t)
	if _, err := run(t, cfg, "add", "--title", "주간 보고", "--date", "2024-10-14", "--start", "10:00", "--end", "11:00", "--repeat", "weekly"); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(t.TempDir(), "out.ics")
	if out, err := run(t, cfg, "export", "--out", file); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "RRULE:FREQ=WEEKLY") {
		t.Errorf("export missing RRULE:\n%s", data)
	}

	// Re-importing into a fresh store saves the event; importing again
	// upserts it without conflicting with itself.
	other := setup(t)
	out, err := run(t, other, "import", file)
	if err != nil || !strings.Contains(out, "1 saved") {
		t.Fatalf("import: %v\n%s", err, out)
	}
	out, err = run(t, other, "import", file)
	if err != nil || !strings.Contains(out, "1 saved, 0 conflicted") {
		t.Errorf("re-import: %v\n%s", err, out)
	}
}

func TestNotifyOnce(t *testing.T) {
	cfg := setup(t)
	out, err := run(t, cfg, "notify")
	if err != nil || !strings.Contains(out, "예정된 알림이 없습니다.") {
		t.Errorf("notify on empty store = %v\n%s", err, out)
	}
}

func TestSyncWithoutSubscriptions(t *testing.T) {
	cfg := setup(t)
	out, err := run(t, cfg, "sync")
	if err != nil || !strings.Contains(out, "no subscriptions configured") {
		t.Errorf("sync = %v\n%s", err, out)
	}
}
