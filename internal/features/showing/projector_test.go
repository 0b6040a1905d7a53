package showing

import (
	"context"
	"errors"
	"testing"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/event"
	"realty-crm/internal/features/lead"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MemoryEvents keeps events in insertion order and upserts by showingId
// the way the collection does.
type MemoryEvents struct {
	events  []*event.Event
	failFor map[string]bool
}

func (m *MemoryEvents) Create(ctx context.Context, e *event.Event) error {
	e.ID = primitive.NewObjectID()
	m.events = append(m.events, e)
	return nil
}

func (m *MemoryEvents) FindByID(ctx context.Context, id primitive.ObjectID) (*event.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, apperr.NotFound("Event not found")
}

func (m *MemoryEvents) List(ctx context.Context, filter event.ListFilter) ([]event.Event, error) {
	out := []event.Event{}
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, nil
}

func (m *MemoryEvents) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*event.Event, error) {
	return nil, errors.New("not used")
}

func (m *MemoryEvents) Delete(ctx context.Context, id primitive.ObjectID) error {
	return errors.New("not used")
}

func (m *MemoryEvents) UpsertByShowingID(ctx context.Context, showingID string, payload bson.M) (*event.Event, error) {
	if m.failFor[showingID] {
		return nil, errors.New("write concern timeout")
	}

	raw, err := bson.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fresh event.Event
	if err := bson.Unmarshal(raw, &fresh); err != nil {
		return nil, err
	}

	for _, e := range m.events {
		if e.ShowingID == showingID {
			fresh.ID, fresh.CreatedAt = e.ID, e.CreatedAt
			*e = fresh
			return e, nil
		}
	}
	fresh.ID = primitive.NewObjectID()
	fresh.CreatedAt = *fresh.LastSynced
	m.events = append(m.events, &fresh)
	return &fresh, nil
}

func (m *MemoryEvents) DeleteByLead(ctx context.Context, leadID string, keep []string) (int64, error) {
	keepSet := map[string]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}

	kept := m.events[:0]
	var n int64
	for _, e := range m.events {
		if e.LeadID == leadID && e.ShowingID != "" && !keepSet[e.ShowingID] {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return n, nil
}

func (m *MemoryEvents) byShowing(id string) []*event.Event {
	var out []*event.Event
	for _, e := range m.events {
		if e.ShowingID == id {
			out = append(out, e)
		}
	}
	return out
}

type MemoryLeads struct {
	leads map[string]*lead.Lead
}

func newMemoryLeads(leads ...*lead.Lead) *MemoryLeads {
	m := &MemoryLeads{leads: map[string]*lead.Lead{}}
	for _, l := range leads {
		m.Insert(context.Background(), l)
	}
	return m
}

func (m *MemoryLeads) Insert(ctx context.Context, l *lead.Lead) error {
	if l.ID == nil {
		l.ID = primitive.NewObjectID()
	}
	m.leads[l.IDString()] = l
	return nil
}

func (m *MemoryLeads) InsertMany(ctx context.Context, leads []*lead.Lead) (int, error) {
	for _, l := range leads {
		m.Insert(ctx, l)
	}
	return len(leads), nil
}

func (m *MemoryLeads) FindByID(ctx context.Context, id string) (*lead.Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return nil, apperr.NotFound("Lead not found")
	}
	cp := *l
	cp.Showings = append([]lead.Showing(nil), l.Showings...)
	return &cp, nil
}

func (m *MemoryLeads) List(ctx context.Context, filter lead.ListFilter, limit, offset int64) ([]lead.Lead, int64, error) {
	return nil, 0, nil
}

func (m *MemoryLeads) ListWithShowings(ctx context.Context) ([]lead.Lead, error) {
	out := []lead.Lead{}
	for _, l := range m.leads {
		if len(l.Showings) > 0 {
			cp := *l
			cp.Showings = append([]lead.Showing(nil), l.Showings...)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *MemoryLeads) Update(ctx context.Context, id interface{}, set, push bson.M) (*lead.Lead, error) {
	key := (&lead.Lead{ID: id}).IDString()
	l, ok := m.leads[key]
	if !ok {
		return nil, apperr.NotFound("Lead not found")
	}
	if v, ok := set["showings"].([]lead.Showing); ok {
		l.Showings = append([]lead.Showing(nil), v...)
	}
	if v, ok := push["showings"].(lead.Showing); ok {
		l.Showings = append(l.Showings, v)
	}
	return m.FindByID(ctx, key)
}

func (m *MemoryLeads) Delete(ctx context.Context, id string) error {
	delete(m.leads, id)
	return nil
}

type nopPublisher struct{ n int }

func (p *nopPublisher) Publish(change event.Change) { p.n++ }

type nopAudit struct{}

func (nopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) {
}

func (nopAudit) ListLogs(ctx context.Context, filter audit.Filter, page common_models.Page) ([]common_models.AuditLog, common_models.Page, error) {
	return nil, page, nil
}

type fixture struct {
	events    *MemoryEvents
	leads     *MemoryLeads
	projector *Projector
	svc       ShowingService
	jane      *lead.Lead
}

func newFixture() *fixture {
	jane := &lead.Lead{Name: "Jane", Email: "j@x.com", Phone: "555"}
	f := &fixture{
		events: &MemoryEvents{failFor: map[string]bool{}},
		leads:  newMemoryLeads(jane),
		jane:   jane,
	}
	f.projector = NewProjector(f.events, &nopPublisher{}, zap.NewNop())
	f.svc = NewShowingService(f.leads, f.projector, nopAudit{}, zap.NewNop())
	return f
}

func TestPayload_Defaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	p := Payload("lead-1", "Jane", lead.Showing{ID: "s1", Date: "2024-06-01"}, now)

	want := bson.M{
		"title":       "Property Showing - Jane",
		"date":        "2024-06-01",
		"time":        "12:00",
		"type":        "viewing",
		"description": "Showing for Jane",
		"location":    "",
		"status":      "scheduled",
		"leadId":      "lead-1",
		"leadName":    "Jane",
		"showingId":   "s1",
		"lastSynced":  now,
	}
	for k, v := range want {
		if p[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, p[k])
		}
	}
	if len(p) != len(want) {
		t.Errorf("Expected %d keys, got %d", len(want), len(p))
	}
}

func TestPayload_UsesShowingFields(t *testing.T) {
	s := lead.Showing{ID: "s1", Date: "2024-06-01", Time: "14:00", Property: "1 Main St", Notes: "bring keys", Status: "completed"}
	p := Payload("lead-1", "Jane", s, time.Now())

	if p["title"] != "1 Main St - Jane" || p["time"] != "14:00" || p["description"] != "bring keys" ||
		p["location"] != "1 Main St" || p["status"] != "completed" {
		t.Errorf("Unexpected payload: %v", p)
	}
}

func TestAddShowing_ScenarioJane(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.AddForLead(ctx, f.jane.IDString(), lead.Showing{Date: "2024-06-01", Time: "14:00", Property: "1 Main St"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.LeadName != "Jane" || res.ID == "" {
		t.Errorf("Unexpected response: %+v", res)
	}

	events, _ := f.events.List(ctx, event.ListFilter{})
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.LeadName != "Jane" || e.Location != "1 Main St" || e.Status != "scheduled" {
		t.Errorf("Unexpected event: %+v", e)
	}
	if e.ShowingID != res.ID || e.LeadID != f.jane.IDString() || e.Time != "14:00" || e.Type != "viewing" {
		t.Errorf("Event not linked to showing: %+v", e)
	}
}

func TestReplaceShowings_EveryShowingHasOneMatchingEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := ReplaceShowingsInput{Showings: []lead.Showing{
		{ID: "a", Date: "2024-06-01", Time: "09:00", Status: "completed"},
		{Date: "2024-06-02"},
		{ID: "c", Date: "2024-06-03", Status: "cancelled"},
	}}
	stored, err := f.svc.ReplaceForLead(ctx, f.jane.IDString(), in)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	l, _ := f.leads.FindByID(ctx, f.jane.IDString())
	if len(l.Showings) != 3 {
		t.Fatalf("Expected 3 stored showings, got %d", len(l.Showings))
	}
	for i, s := range l.Showings {
		if s.ID != stored[i].ID {
			t.Errorf("Showing %d: stored id %q differs from returned id %q", i, s.ID, stored[i].ID)
		}
		matches := f.events.byShowing(s.ID)
		if len(matches) != 1 {
			t.Fatalf("Showing %s: expected 1 event, got %d", s.ID, len(matches))
		}
		e := matches[0]
		wantTime := s.Time
		if wantTime == "" {
			wantTime = "12:00"
		}
		if e.Status != s.Status || e.Date != s.Date || e.Time != wantTime {
			t.Errorf("Showing %s: event %+v does not match %+v", s.ID, e, s)
		}
	}
}

func TestSync_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	showings := []lead.Showing{{ID: "s1", Date: "2024-06-01", Property: "1 Main St", Status: "scheduled"}}

	f.projector.Sync(ctx, "lead-1", "Jane", showings)
	first := *f.events.byShowing("s1")[0]

	f.projector.Sync(ctx, "lead-1", "Jane", showings)
	matches := f.events.byShowing("s1")
	if len(matches) != 1 {
		t.Fatalf("Expected 1 event after resync, got %d", len(matches))
	}

	second := *matches[0]
	if first.ID != second.ID || first.Title != second.Title || first.Date != second.Date ||
		first.Time != second.Time || first.Status != second.Status || first.Location != second.Location {
		t.Errorf("Resync changed the event: %+v vs %+v", first, second)
	}
}

func TestSync_FailureIsCountedNotReturned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.events.failFor["bad"] = true

	_, err := f.svc.ReplaceForLead(ctx, f.jane.IDString(), ReplaceShowingsInput{Showings: []lead.Showing{
		{ID: "bad", Date: "2024-06-01"},
		{ID: "good", Date: "2024-06-02"},
	}})
	if err != nil {
		t.Fatalf("Sync failure leaked to caller: %v", err)
	}

	if got := f.projector.SyncFailures(); got != 1 {
		t.Errorf("Expected 1 sync failure, got %d", got)
	}
	if len(f.events.byShowing("good")) != 1 {
		t.Error("Expected the healthy showing to still be synced")
	}
	l, _ := f.leads.FindByID(ctx, f.jane.IDString())
	if len(l.Showings) != 2 {
		t.Errorf("Lead write should succeed regardless, got %d showings", len(l.Showings))
	}
}

func TestReplaceShowings_LastWriteWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.jane.IDString()

	f.svc.ReplaceForLead(ctx, id, ReplaceShowingsInput{Showings: []lead.Showing{{ID: "x", Date: "2024-06-01"}, {ID: "y", Date: "2024-06-02"}}})
	f.svc.ReplaceForLead(ctx, id, ReplaceShowingsInput{Showings: []lead.Showing{{ID: "z", Date: "2024-07-01"}}})

	l, _ := f.leads.FindByID(ctx, id)
	if len(l.Showings) != 1 || l.Showings[0].ID != "z" {
		t.Errorf("Expected only the second array, got %+v", l.Showings)
	}
}

func TestReplaceShowings_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.ReplaceForLead(ctx, "missing", ReplaceShowingsInput{Showings: []lead.Showing{}}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := f.svc.ReplaceForLead(ctx, f.jane.IDString(), ReplaceShowingsInput{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected validation error for missing showings, got %v", err)
	}
	if _, err := f.svc.AddForLead(ctx, f.jane.IDString(), lead.Showing{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected validation error for missing date, got %v", err)
	}
}

func TestListAll_BackfillsIDsAndSyncs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.jane.Showings = []lead.Showing{{Date: "2024-06-01", Property: "1 Main St"}}

	first, err := f.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(first) != 1 || first[0].ID == "" || first[0].Title != "1 Main St - Jane" || first[0].Time != "12:00" {
		t.Fatalf("Unexpected listing: %+v", first)
	}

	second, _ := f.svc.ListAll(ctx)
	if second[0].ID != first[0].ID {
		t.Error("Showing id changed between listings")
	}
	if n := len(f.events.byShowing(first[0].ID)); n != 1 {
		t.Errorf("Expected 1 event after two listings, got %d", n)
	}
}

func TestRemoveLead_DeletesMirroredEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.projector.Sync(ctx, "lead-1", "Jane", []lead.Showing{{ID: "s1", Date: "2024-06-01"}})
	f.events.Create(ctx, &event.Event{Title: "Team sync", LeadID: "lead-1"})

	f.projector.RemoveLead(ctx, "lead-1")

	if len(f.events.byShowing("s1")) != 0 {
		t.Error("Expected mirrored event to be removed")
	}
	if len(f.events.events) != 1 {
		t.Errorf("Expected the ad-hoc event to remain, got %d events", len(f.events.events))
	}
}

func TestShowings_DuplicateIDsRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.jane.IDString()

	_, err := f.svc.ReplaceForLead(ctx, id, ReplaceShowingsInput{Showings: []lead.Showing{
		{ID: "dup", Date: "2024-06-01", Status: "scheduled"},
		{ID: "dup", Date: "2024-07-01", Status: "cancelled"},
	}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(f.events.events) != 0 {
		t.Errorf("Expected no events, got %d", len(f.events.events))
	}

	if _, err := f.svc.AddForLead(ctx, id, lead.Showing{ID: "s1", Date: "2024-06-01"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.svc.AddForLead(ctx, id, lead.Showing{ID: "s1", Date: "2024-07-01"}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Expected conflict for an existing id, got %v", err)
	}

	l, _ := f.leads.FindByID(ctx, id)
	if len(l.Showings) != 1 {
		t.Errorf("Expected 1 stored showing, got %d", len(l.Showings))
	}
	if e := f.events.byShowing("s1"); len(e) != 1 || e[0].Date != "2024-06-01" {
		t.Errorf("Expected the event to mirror the first showing, got %+v", e)
	}
}

func TestReplaceShowings_RemovesDroppedEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.jane.IDString()
	f.events.Create(ctx, &event.Event{Title: "Coffee", LeadID: id})

	f.svc.ReplaceForLead(ctx, id, ReplaceShowingsInput{Showings: []lead.Showing{{ID: "x", Date: "2024-06-01"}, {ID: "y", Date: "2024-06-02"}}})
	f.svc.ReplaceForLead(ctx, id, ReplaceShowingsInput{Showings: []lead.Showing{{ID: "y", Date: "2024-06-05"}}})

	if n := len(f.events.byShowing("x")); n != 0 {
		t.Errorf("Expected the dropped showing's event to be removed, got %d", n)
	}
	if e := f.events.byShowing("y"); len(e) != 1 || e[0].Date != "2024-06-05" {
		t.Errorf("Expected the kept showing to be updated, got %+v", e)
	}
	if len(f.events.events) != 2 {
		t.Errorf("Expected the kept event and the ad-hoc event, got %d", len(f.events.events))
	}
}
