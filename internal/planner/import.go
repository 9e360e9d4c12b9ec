package planner

import (
	"context"
	"errors"

	"calplan/internal/calendar"
	appLog "calplan/internal/log"
	"calplan/internal/model"
	"calplan/internal/overlap"
)

// ImportStatus is the outcome for a single imported event.
type ImportStatus string

const (
	ImportSaved      ImportStatus = "saved"
	ImportConflicted ImportStatus = "conflicted"
	ImportInvalid    ImportStatus = "invalid"
	ImportFailed     ImportStatus = "failed"
)

// ImportResult reports what happened to one event of an import batch.
type ImportResult struct {
	Event     model.Event
	Status    ImportStatus
	Err       error
	Conflicts []model.Event
}

// Import upserts externally identified events (for example iCalendar UIDs).
// Each event goes through the same validation and overlap rules as Update;
// re-importing an event never conflicts with its own previous copy.
func (s *Service) Import(ctx context.Context, events []model.Event, opts Options) ([]ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]ImportResult, 0, len(events))
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := ImportResult{Event: ev}

		switch {
		case ev.ID == "":
			res.Status, res.Err = ImportInvalid, errors.New("event has no id")
		case calendar.ValidateDraft(ev.Draft) != nil:
			res.Status, res.Err = ImportInvalid, calendar.ValidateDraft(ev.Draft)
		default:
			conflicts := overlap.FindForEvent(ev, s.store.List())
			if len(conflicts) > 0 && !opts.Confirm {
				res.Status, res.Conflicts = ImportConflicted, conflicts
				res.Err = &ConflictError{Events: conflicts}
				break
			}
			if err := s.store.Put(ev); err != nil {
				res.Status, res.Err = ImportFailed, err
				break
			}
			res.Status = ImportSaved
		}

		if res.Err != nil {
			appLog.Warn("event import skipped", "id", ev.ID, "title", ev.Title, "status", res.Status, "reason", res.Err)
		}
		results = append(results, res)
	}

	appLog.Info("event import finished", "count", len(events), "saved", countStatus(results, ImportSaved))
	return results, nil
}

func countStatus(results []ImportResult, st ImportStatus) int {
	n := 0
	for _, r := range results {
		if r.Status == st {
			n++
		}
	}
	return n
}
