package calendar

import (
	"errors"
	"time"

	"calplan/internal/model"
)

const (
	StartTimeErrorMessage = "시작 시간은 종료 시간보다 빨라야 합니다."
	EndTimeErrorMessage   = "종료 시간은 시작 시간보다 늦어야 합니다."
)

var (
	ErrRequiredFields = errors.New("필수 정보를 모두 입력해주세요.")
	ErrTimeOrder      = errors.New("시간 설정을 확인해주세요.")
	ErrInvalidRepeat  = errors.New("반복 설정을 확인해주세요.")

	ErrInvalidDateTime     = errors.New("날짜와 시간 형식을 확인해주세요.")
	ErrInvalidNotification = errors.New("알림 시간을 확인해주세요.")
)

// TimeErrors carries the per-field messages produced by ValidateTimeOrder.
// An empty string means no error for that field.
type TimeErrors struct {
	Start string `json:"startTimeError,omitempty"`
	End   string `json:"endTimeError,omitempty"`
}

// Any reports whether either field has an error.
func (e TimeErrors) Any() bool {
	return e.Start != "" || e.End != ""
}

// ValidateTimeOrder checks that start is strictly before end. Incomplete or
// unparsable input is not an error yet.
func ValidateTimeOrder(start, end string) TimeErrors {
	if start == "" || end == "" {
		return TimeErrors{}
	}
	s, err := time.Parse(TimeLayout, start)
	if err != nil || !timePattern.MatchString(start) {
		return TimeErrors{}
	}
	e, err := time.Parse(TimeLayout, end)
	if err != nil || !timePattern.MatchString(end) {
		return TimeErrors{}
	}
	if !s.Before(e) {
		return TimeErrors{Start: StartTimeErrorMessage, End: EndTimeErrorMessage}
	}
	return TimeErrors{}
}

// ValidateDraft classifies a draft before it is saved. Unlike
// ValidateTimeOrder it treats non-canonical or impossible dates and times
// as errors, so every saved event has a valid time range.
func ValidateDraft(d model.Draft) error {
	if d.Title == "" || d.Date == "" || d.StartTime == "" || d.EndTime == "" {
		return ErrRequiredFields
	}
	if !EventTimeRange(d).Valid {
		return ErrInvalidDateTime
	}
	if ValidateTimeOrder(d.StartTime, d.EndTime).Any() {
		return ErrTimeOrder
	}
	if d.NotificationTime < 0 {
		return ErrInvalidNotification
	}
	if d.Repeat.Type != "" && !d.Repeat.Type.Valid() {
		return ErrInvalidRepeat
	}
	if d.Repeat.EndDate != "" {
		if _, ok := ParseDate(d.Repeat.EndDate); !ok {
			return ErrInvalidRepeat
		}
	}
	return nil
}
