package notify

import (
	"sync"
	"time"

	"calplan/internal/model"
)

// Session owns the notified-id set and the displayed notification list for
// one polling run. It is cleared on restart, never persisted.
type Session struct {
	mu            sync.Mutex
	notified      IDSet
	notifications []model.Notification
}

func NewSession() *Session {
	return &Session{notified: IDSet{}}
}

// Tick evaluates events at now. Every newly due event is marked notified
// and appended to the displayed list exactly once; the new notifications
// are returned.
func (s *Session) Tick(events []model.Event, now time.Time) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := UpcomingEvents(events, now, s.notified)
	if len(due) == 0 {
		return nil
	}

	raised := make([]model.Notification, 0, len(due))
	for _, ev := range due {
		s.notified.Add(ev.ID)
		raised = append(raised, model.Notification{ID: ev.ID, Message: Message(ev)})
	}
	s.notifications = append(s.notifications, raised...)
	return raised
}

// Dismiss removes the notification at index from the displayed list. The
// event stays notified and will not fire again. It reports whether index
// was in range.
func (s *Session) Dismiss(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.notifications) {
		return false
	}
	s.notifications = append(s.notifications[:index], s.notifications[index+1:]...)
	return true
}

// Notifications returns a copy of the displayed list.
func (s *Session) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.notifications...)
}

// Notified returns a copy of the notified-id set.
func (s *Session) Notified() IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notified.Clone()
}

// Reset forgets everything, as a page reload would.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified = IDSet{}
	s.notifications = nil
}
