package lead

import (
	"time"

	"realty-crm/internal/common/apperr"

	"github.com/google/uuid"
)

// NormalizeShowing fills in what every stored showing must carry: an id,
// a creation time and a status.
func NormalizeShowing(s Showing, now time.Time) Showing {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt == "" {
		s.CreatedAt = now.UTC().Format(time.RFC3339Nano)
	}
	if s.Status == "" {
		s.Status = "scheduled"
	}
	return s
}

func NormalizeShowings(showings []Showing, now time.Time) []Showing {
	out := make([]Showing, len(showings))
	for i, s := range showings {
		out[i] = NormalizeShowing(s, now)
	}
	return out
}

// CheckShowingIDs rejects a list in which two showings share an id. Each
// id keys exactly one calendar event.
func CheckShowingIDs(showings []Showing) error {
	seen := make(map[string]struct{}, len(showings))
	for _, s := range showings {
		if s.ID == "" {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			return apperr.Validation("Duplicate showing id: " + s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// CheckNewShowing rejects appending s when its id is already taken
func CheckNewShowing(existing []Showing, s Showing) error {
	if s.ID == "" {
		return nil
	}
	for _, e := range existing {
		if e.ID == s.ID {
			return apperr.Conflict("Showing already exists: " + s.ID)
		}
	}
	return nil
}

func NormalizeTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out[i] = t
	}
	return out
}

// nextNoteTime returns now at storage precision, pushed past the newest
// existing entry so history timestamps strictly increase.
func nextNoteTime(history []NoteEntry, now time.Time) time.Time {
	ts := now.UTC().Truncate(time.Millisecond)
	for _, e := range history {
		if !ts.After(e.Timestamp) {
			ts = e.Timestamp.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
		}
	}
	return ts
}
