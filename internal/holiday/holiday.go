// Package holiday is a static lookup of Korean public holidays.
package holiday

import (
	"fmt"
	"time"
)

// Records maps YYYY-MM-DD to the holiday name.
var Records = map[string]string{
	"2024-01-01": "신정",
	"2024-02-09": "설날",
	"2024-02-10": "설날",
	"2024-02-11": "설날",
	"2024-02-12": "대체 휴일",
	"2024-03-01": "삼일절",
	"2024-05-05": "어린이날",
	"2024-05-06": "대체 휴일",
	"2024-05-15": "부처님 오신 날",
	"2024-06-06": "현충일",
	"2024-08-15": "광복절",
	"2024-09-16": "추석",
	"2024-09-17": "추석",
	"2024-09-18": "추석",
	"2024-10-03": "개천절",
	"2024-10-09": "한글날",
	"2024-12-25": "크리스마스",

	"2025-01-01": "신정",
	"2025-01-28": "설날",
	"2025-01-29": "설날",
	"2025-01-30": "설날",
	"2025-03-01": "삼일절",
	"2025-03-03": "대체 휴일",
	"2025-05-05": "어린이날",
	"2025-05-06": "대체 휴일",
	"2025-06-06": "현충일",
	"2025-08-15": "광복절",
	"2025-10-03": "개천절",
	"2025-10-05": "추석",
	"2025-10-06": "추석",
	"2025-10-07": "추석",
	"2025-10-08": "대체 휴일",
	"2025-10-09": "한글날",
	"2025-12-25": "크리스마스",
}

// ForMonth returns the holidays in t's year and month. The map is empty,
// never nil, when there are none.
func ForMonth(t time.Time) map[string]string {
	prefix := fmt.Sprintf("%04d-%02d-", t.Year(), int(t.Month()))
	out := make(map[string]string)
	for date, name := range Records {
		if len(date) == len("2006-01-02") && date[:len(prefix)] == prefix {
			out[date] = name
		}
	}
	return out
}

// Name returns the holiday name for a YYYY-MM-DD date, or "".
func Name(date string) string {
	return Records[date]
}
