// Package planner validates and conflict-checks event changes before they
// reach the store.
package planner

import (
	"context"
	"fmt"
	"sync"

	"calplan/internal/calendar"
	appLog "calplan/internal/log"
	"calplan/internal/model"
	"calplan/internal/overlap"
	"calplan/internal/search"
	"calplan/internal/store"
)

// ConflictError blocks a save because the event overlaps existing ones.
// The caller shows Events and retries with Options.Confirm if the user
// agrees.
type ConflictError struct {
	Events []model.Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("일정 겹침 경고: %d개의 일정과 겹칩니다", len(e.Events))
}

// Options controls a single save.
type Options struct {
	// Confirm saves even when overlaps are found.
	Confirm bool
}

// Service is the write path for events. Saves are serialized so the
// overlap check and the write see the same collection.
type Service struct {
	mu    sync.Mutex
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

// List returns all stored events.
func (s *Service) List(ctx context.Context) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.List(), nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id string) (model.Event, error) {
	if err := ctx.Err(); err != nil {
		return model.Event{}, err
	}
	return s.store.Get(id)
}

// Filter returns the events visible for q.
func (s *Service) Filter(ctx context.Context, q search.Query) ([]model.Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return q.Apply(events), nil
}

// Create validates d, checks it against existing events and stores it.
func (s *Service) Create(ctx context.Context, d model.Draft, opts Options) (model.Event, error) {
	if err := ctx.Err(); err != nil {
		return model.Event{}, err
	}
	if err := calendar.ValidateDraft(d); err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conflicts := overlap.FindForDraft(d, s.store.List()); len(conflicts) > 0 && !opts.Confirm {
		appLog.Info("event create blocked by overlap", "title", d.Title, "date", d.Date, "overlaps", len(conflicts))
		return model.Event{}, &ConflictError{Events: conflicts}
	}

	ev, err := s.store.Create(d)
	if err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	appLog.Info("event created", "id", ev.ID, "title", ev.Title, "date", ev.Date)
	return ev, nil
}

// Update replaces the event with id by d, excluding the event itself from
// the overlap check.
func (s *Service) Update(ctx context.Context, id string, d model.Draft, opts Options) (model.Event, error) {
	if err := ctx.Err(); err != nil {
		return model.Event{}, err
	}
	if err := calendar.ValidateDraft(d); err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(id); err != nil {
		return model.Event{}, err
	}
	if conflicts := overlap.FindForEvent(d.Save(id), s.store.List()); len(conflicts) > 0 && !opts.Confirm {
		appLog.Info("event update blocked by overlap", "id", id, "overlaps", len(conflicts))
		return model.Event{}, &ConflictError{Events: conflicts}
	}

	ev, err := s.store.Update(id, d)
	if err != nil {
		return model.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}
	appLog.Info("event updated", "id", ev.ID, "title", ev.Title, "date", ev.Date)
	return ev, nil
}

// Delete removes the event with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(id); err != nil {
		return err
	}
	appLog.Info("event deleted", "id", id)
	return nil
}
