package holiday_test

import (
	"strings"
	"testing"
	"time"

	"calplan/internal/holiday"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.Local)
}

func TestForMonth(t *testing.T) {
	jan := holiday.ForMonth(month(2024, time.January))
	if len(jan) != 1 || jan["2024-01-01"] != "신정" {
		t.Errorf("ForMonth(2024-01) = %v", jan)
	}

	if apr := holiday.ForMonth(month(2024, time.April)); apr == nil || len(apr) != 0 {
		t.Errorf("ForMonth(2024-04) = %v, want empty non-nil map", apr)
	}

	feb := holiday.ForMonth(month(2024, time.February))
	if len(feb) < 3 {
		t.Errorf("ForMonth(2024-02) = %v, want every 설날 day", feb)
	}
	for date := range feb {
		if !strings.HasPrefix(date, "2024-02-") {
			t.Errorf("ForMonth(2024-02) contains %s", date)
		}
	}
}

func TestName(t *testing.T) {
	if got := holiday.Name("2024-10-09"); got != "한글날" {
		t.Errorf("Name(2024-10-09) = %q", got)
	}
	if got := holiday.Name("2024-10-10"); got != "" {
		t.Errorf("Name(2024-10-10) = %q, want empty", got)
	}
}
