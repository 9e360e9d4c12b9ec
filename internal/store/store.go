// Package store persists events as a single JSON document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"calplan/internal/model"
)

// ErrNotFound is returned when an event id does not exist.
var ErrNotFound = errors.New("not found event")

// document is the on-disk shape; it matches the GET /api/events payload.
type document struct {
	Events []model.Event `json:"events"`
}

// Store is a file-backed event collection. All methods are safe for
// concurrent use; every write replaces the file atomically.
type Store struct {
	path string

	mu     sync.RWMutex
	events []model.Event
}

// Open loads the store at path, creating an empty one on first run.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := s.flush(); err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, err
	}

	var doc document
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", path, err)
		}
	}
	s.events = doc.Events
	return s, nil
}

// List returns a copy of all events in insertion order.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Event(nil), s.events...)
}

// Get returns the event with id.
func (s *Store) Get(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], nil
	}
	return model.Event{}, ErrNotFound
}

// Create assigns a new id to d and persists it.
func (s *Store) Create(d model.Draft) (model.Event, error) {
	d.Repeat.Normalize()
	ev := d.Save(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	if err := s.flush(); err != nil {
		s.events = s.events[:len(s.events)-1]
		return model.Event{}, err
	}
	return ev, nil
}

// Update replaces the event with id by d.
func (s *Store) Update(id string, d model.Draft) (model.Event, error) {
	d.Repeat.Normalize()
	ev := d.Save(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Event{}, ErrNotFound
	}
	prev := s.events[i]
	s.events[i] = ev
	if err := s.flush(); err != nil {
		s.events[i] = prev
		return model.Event{}, err
	}
	return ev, nil
}

// Put inserts or replaces ev by its id. Used for imports whose ids come
// from an external source.
func (s *Store) Put(ev model.Event) error {
	if ev.ID == "" {
		return errors.New("store: event id is empty")
	}
	ev.Repeat.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := append([]model.Event(nil), s.events...)
	if i := s.indexOf(ev.ID); i >= 0 {
		s.events[i] = ev
	} else {
		s.events = append(s.events, ev)
	}
	if err := s.flush(); err != nil {
		s.events = prev
		return err
	}
	return nil
}

// Delete removes the event with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	prev := append([]model.Event(nil), s.events...)
	s.events = append(s.events[:i], s.events[i+1:]...)
	if err := s.flush(); err != nil {
		s.events = prev
		return err
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// flush writes the current events atomically. Callers hold s.mu.
func (s *Store) flush() error {
	events := s.events
	if events == nil {
		events = []model.Event{}
	}
	data, err := json.MarshalIndent(document{Events: events}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".calplan-events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
