package lead

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MockLeadRepo stores leads as bson documents so $set and $push behave the
// way they do against the real collection.
type MockLeadRepo struct {
	docs  map[string]bson.M
	order []string
}

func newMockLeadRepo() *MockLeadRepo {
	return &MockLeadRepo{docs: map[string]bson.M{}}
}

func (m *MockLeadRepo) key(id interface{}) string {
	l := Lead{ID: id}
	return l.IDString()
}

func (m *MockLeadRepo) decode(doc bson.M) *Lead {
	raw, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var l Lead
	if err := bson.Unmarshal(raw, &l); err != nil {
		panic(err)
	}
	return &l
}

func (m *MockLeadRepo) Insert(ctx context.Context, l *Lead) error {
	if l.ID == nil {
		l.ID = primitive.NewObjectID()
	}
	raw, err := bson.Marshal(l)
	if err != nil {
		return err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	k := m.key(l.ID)
	m.docs[k] = doc
	m.order = append(m.order, k)
	return nil
}

func (m *MockLeadRepo) InsertMany(ctx context.Context, leads []*Lead) (int, error) {
	for _, l := range leads {
		if err := m.Insert(ctx, l); err != nil {
			return 0, err
		}
	}
	return len(leads), nil
}

func (m *MockLeadRepo) FindByID(ctx context.Context, id string) (*Lead, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, apperr.NotFound("Lead not found")
	}
	return m.decode(doc), nil
}

func (m *MockLeadRepo) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, int64, error) {
	out := []Lead{}
	for _, k := range m.order {
		if doc, ok := m.docs[k]; ok {
			out = append(out, *m.decode(doc))
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockLeadRepo) ListWithShowings(ctx context.Context) ([]Lead, error) {
	leads, _, err := m.List(ctx, ListFilter{}, 0, 0)
	return leads, err
}

func (m *MockLeadRepo) Update(ctx context.Context, id interface{}, set, push bson.M) (*Lead, error) {
	doc, ok := m.docs[m.key(id)]
	if !ok {
		return nil, apperr.NotFound("Lead not found")
	}
	for k, v := range set {
		doc[k] = v
	}
	for k, v := range push {
		arr, _ := doc[k].(bson.A)
		doc[k] = append(arr, v)
	}

	// normalise Go values back into bson types
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	fresh := bson.M{}
	if err := bson.Unmarshal(raw, &fresh); err != nil {
		return nil, err
	}
	m.docs[m.key(id)] = fresh
	return m.decode(fresh), nil
}

func (m *MockLeadRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return apperr.NotFound("Lead not found")
	}
	delete(m.docs, id)
	return nil
}

type syncCall struct {
	leadID   string
	leadName string
	showings []Showing
	replace  bool
}

type MockSyncer struct {
	calls   []syncCall
	removed []string
}

func (m *MockSyncer) Sync(ctx context.Context, leadID, leadName string, showings []Showing) {
	m.calls = append(m.calls, syncCall{leadID: leadID, leadName: leadName, showings: showings})
}

func (m *MockSyncer) Replace(ctx context.Context, leadID, leadName string, showings []Showing) {
	m.calls = append(m.calls, syncCall{leadID: leadID, leadName: leadName, showings: showings, replace: true})
}

func (m *MockSyncer) RemoveLead(ctx context.Context, leadID string) {
	m.removed = append(m.removed, leadID)
}

type MockAuditService struct {
	actions []common_models.AuditAction
}

func (m *MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) {
	m.actions = append(m.actions, action)
}

func (m *MockAuditService) ListLogs(ctx context.Context, filter audit.Filter, page common_models.Page) ([]common_models.AuditLog, common_models.Page, error) {
	return nil, page, nil
}

func newTestService() (*LeadServiceImpl, *MockLeadRepo, *MockSyncer) {
	repo := newMockLeadRepo()
	sync := &MockSyncer{}
	svc := NewLeadService(repo, sync, &MockAuditService{}, zap.NewNop()).(*LeadServiceImpl)
	return svc, repo, sync
}

func strPtr(s string) *string { return &s }

func TestCreateLead_RequiresName(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateLead(context.Background(), CreateLeadInput{Email: "j@x.com"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCreateLead_SeedsNotesHistoryAndShowingIDs(t *testing.T) {
	svc, _, sync := newTestService()

	l, err := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:     "Jane",
		Notes:    "first call",
		Showings: []Showing{{Date: "2024-06-01", Property: "1 Main St"}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := l.ID.(primitive.ObjectID); !ok {
		t.Errorf("Expected ObjectID for new lead, got %T", l.ID)
	}
	if len(l.NotesHistory) != 1 || l.NotesHistory[0].Content != "first call" || l.NotesHistory[0].LeadName != "Jane" {
		t.Errorf("Unexpected notes history: %+v", l.NotesHistory)
	}
	if l.Showings[0].ID == "" || l.Showings[0].Status != "scheduled" || l.Showings[0].CreatedAt == "" {
		t.Errorf("Showing not normalised: %+v", l.Showings[0])
	}
	if len(sync.calls) != 1 || sync.calls[0].leadName != "Jane" {
		t.Errorf("Expected one sync call for Jane, got %+v", sync.calls)
	}
}

func TestUpdateLead_NotesTwiceBuildsHistory(t *testing.T) {
	svc, _, _ := newTestService()
	fixed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	l, err := svc.CreateLead(context.Background(), CreateLeadInput{Name: "Jane"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	id := l.IDString()

	if _, err := svc.UpdateLead(context.Background(), id, UpdateLeadInput{Notes: strPtr("called, no answer")}); err != nil {
		t.Fatalf("First update failed: %v", err)
	}
	updated, err := svc.UpdateLead(context.Background(), id, UpdateLeadInput{Notes: strPtr("called back")})
	if err != nil {
		t.Fatalf("Second update failed: %v", err)
	}

	h := updated.NotesHistory
	if len(h) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(h))
	}
	if h[0].ID == h[1].ID {
		t.Error("Expected distinct entry ids")
	}
	if !h[1].Timestamp.After(h[0].Timestamp) {
		t.Errorf("Expected increasing timestamps, got %v then %v", h[0].Timestamp, h[1].Timestamp)
	}
	if updated.Notes != "called back" {
		t.Errorf("Expected notes to hold the latest text, got %q", updated.Notes)
	}
}

func TestUpdateLead_EmptyNotesSkipHistory(t *testing.T) {
	svc, _, _ := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{Name: "Jane"})

	updated, err := svc.UpdateLead(context.Background(), l.IDString(), UpdateLeadInput{Notes: strPtr("  ")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(updated.NotesHistory) != 0 {
		t.Errorf("Expected no history entry, got %d", len(updated.NotesHistory))
	}
}

func TestUpdateLead_AddShowingSyncsOnlyNewOne(t *testing.T) {
	svc, _, sync := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:     "Jane",
		Showings: []Showing{{ID: "s1", Date: "2024-05-01"}},
	})
	sync.calls = nil

	var in UpdateLeadInput
	if err := json.Unmarshal([]byte(`{"showings":{"date":"2024-06-01","time":"14:00","property":"1 Main St"}}`), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	updated, err := svc.UpdateLead(context.Background(), l.IDString(), in)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(updated.Showings) != 2 {
		t.Fatalf("Expected 2 showings, got %d", len(updated.Showings))
	}
	if len(sync.calls) != 1 || len(sync.calls[0].showings) != 1 {
		t.Fatalf("Expected one sync of one showing, got %+v", sync.calls)
	}
	added := sync.calls[0].showings[0]
	if added.ID == "" || added.ID == "s1" || added.Property != "1 Main St" {
		t.Errorf("Unexpected synced showing: %+v", added)
	}
	if updated.Showings[1].ID != added.ID {
		t.Error("Stored and synced showing ids differ")
	}
}

func TestUpdateLead_ReplaceShowingsSyncsAll(t *testing.T) {
	svc, _, sync := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{Name: "Jane"})

	var in UpdateLeadInput
	body := `{"showings":[{"id":"keep","date":"2024-06-01","status":"completed"},{"date":"2024-06-02"}]}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	updated, err := svc.UpdateLead(context.Background(), l.IDString(), in)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(updated.Showings) != 2 || updated.Showings[0].ID != "keep" || updated.Showings[0].Status != "completed" {
		t.Errorf("Unexpected stored showings: %+v", updated.Showings)
	}
	if updated.Showings[1].ID == "" || updated.Showings[1].Status != "scheduled" {
		t.Errorf("Second showing not normalised: %+v", updated.Showings[1])
	}
	if len(sync.calls) != 1 || len(sync.calls[0].showings) != 2 {
		t.Errorf("Expected all showings synced, got %+v", sync.calls)
	}
}

func TestUpdateLead_RenameResyncsShowings(t *testing.T) {
	svc, _, sync := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:     "Jane",
		Showings: []Showing{{ID: "s1", Date: "2024-05-01"}},
	})
	sync.calls = nil

	if _, err := svc.UpdateLead(context.Background(), l.IDString(), UpdateLeadInput{Name: strPtr("Jane Doe")}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sync.calls) != 1 || sync.calls[0].leadName != "Jane Doe" {
		t.Errorf("Expected resync under the new name, got %+v", sync.calls)
	}
}

func TestUpdateLead_TaskIDs(t *testing.T) {
	svc, _, _ := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{Name: "Jane"})

	tasks := []Task{{Title: "Call back", Priority: "high"}}
	updated, err := svc.UpdateLead(context.Background(), l.IDString(), UpdateLeadInput{Tasks: &tasks})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(updated.Tasks) != 1 || updated.Tasks[0].ID == "" {
		t.Errorf("Expected task id to be synthesised, got %+v", updated.Tasks)
	}
}

func TestUpdateLead_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpdateLead(context.Background(), "missing", UpdateLeadInput{Name: strPtr("x")})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Expected not found, got %v", err)
	}
}

func TestDeleteLead_RemovesMirroredEvents(t *testing.T) {
	svc, repo, sync := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{Name: "Jane"})

	if err := svc.DeleteLead(context.Background(), l.IDString()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(repo.docs) != 0 {
		t.Error("Expected lead to be deleted")
	}
	if len(sync.removed) != 1 || sync.removed[0] != l.IDString() {
		t.Errorf("Expected events removed for %s, got %v", l.IDString(), sync.removed)
	}
}

func TestImportLeads_SkipsInvalidRows(t *testing.T) {
	svc, repo, _ := newTestService()

	res, err := svc.ImportLeads(context.Background(), []CreateLeadInput{
		{Name: "Jane"},
		{Email: "nobody@x.com"},
		{Name: "Bob", LeadStatus: "lukewarm"},
		{Name: "Ann", LeadStatus: "hot"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Imported != 2 || res.Failed != 2 {
		t.Errorf("Expected 2 imported and 2 failed, got %+v", res)
	}
	if len(res.Errors) != 2 || !strings.HasPrefix(res.Errors[0], "row 3:") {
		t.Errorf("Unexpected errors: %v", res.Errors)
	}
	if len(repo.docs) != 2 {
		t.Errorf("Expected 2 stored leads, got %d", len(repo.docs))
	}
}

func TestShowingsPatch_Shapes(t *testing.T) {
	var arr ShowingsPatch
	if err := json.Unmarshal([]byte(`[]`), &arr); err != nil {
		t.Fatal(err)
	}
	if !arr.IsReplace() || arr.Replace == nil || len(arr.Replace) != 0 {
		t.Errorf("Empty array should be a replace with no showings: %+v", arr)
	}

	var one ShowingsPatch
	if err := json.Unmarshal([]byte(`{"date":"2024-06-01"}`), &one); err != nil {
		t.Fatal(err)
	}
	if one.IsReplace() || one.Add.Date != "2024-06-01" {
		t.Errorf("Object should be an add: %+v", one)
	}
}

func TestNextNoteTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 500, time.UTC)
	history := []NoteEntry{{Timestamp: now.Truncate(time.Millisecond)}}

	got := nextNoteTime(history, now)
	want := now.Truncate(time.Millisecond).Add(time.Millisecond)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	later := now.Add(time.Second)
	if got := nextNoteTime(history, later); !got.Equal(later.Truncate(time.Millisecond)) {
		t.Errorf("Expected %v, got %v", later, got)
	}
}

func TestUpdateLead_RejectsDuplicateShowingIDs(t *testing.T) {
	svc, repo, sync := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:     "Jane",
		Showings: []Showing{{ID: "s1", Date: "2024-05-01"}},
	})
	sync.calls = nil

	var replace UpdateLeadInput
	body := `{"showings":[{"id":"dup","date":"2024-06-01"},{"id":"dup","date":"2024-07-01"}]}`
	if err := json.Unmarshal([]byte(body), &replace); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, err := svc.UpdateLead(context.Background(), l.IDString(), replace); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected validation error for repeated ids, got %v", err)
	}

	var add UpdateLeadInput
	if err := json.Unmarshal([]byte(`{"showings":{"id":"s1","date":"2024-06-01"}}`), &add); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, err := svc.UpdateLead(context.Background(), l.IDString(), add); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Expected conflict for an existing id, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), l.IDString())
	if len(stored.Showings) != 1 {
		t.Errorf("Rejected updates must not be stored, got %d showings", len(stored.Showings))
	}
	if len(sync.calls) != 0 {
		t.Errorf("Rejected updates must not sync, got %+v", sync.calls)
	}
}

func TestCreateLead_RejectsDuplicateShowingIDs(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:     "Jane",
		Showings: []Showing{{ID: "dup", Date: "2024-06-01"}, {ID: "dup", Date: "2024-07-01"}},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(repo.docs) != 0 {
		t.Error("Expected nothing stored")
	}
}

func TestUpdateLead_ReplaceUsesFullMirror(t *testing.T) {
	svc, _, sync := newTestService()
	l, _ := svc.CreateLead(context.Background(), CreateLeadInput{Name: "Jane"})

	var in UpdateLeadInput
	if err := json.Unmarshal([]byte(`{"showings":[]}`), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, err := svc.UpdateLead(context.Background(), l.IDString(), in); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sync.calls) != 1 || !sync.calls[0].replace || len(sync.calls[0].showings) != 0 {
		t.Errorf("Expected a full replace with no showings, got %+v", sync.calls)
	}
}

func TestCheckShowingIDs(t *testing.T) {
	tests := []struct {
		name     string
		showings []Showing
		wantErr  bool
	}{
		{"unique", []Showing{{ID: "a"}, {ID: "b"}}, false},
		{"missing ids are not duplicates", []Showing{{}, {}}, false},
		{"repeated", []Showing{{ID: "a"}, {ID: "b"}, {ID: "a"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckShowingIDs(tt.showings); (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
