package lead

import (
	"context"
	"fmt"
	"strings"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const auditModule = "leads"

// ShowingSyncer mirrors a lead's showings into the calendar. It never fails
// the caller. Replace is for a full list and also drops stale events.
type ShowingSyncer interface {
	Sync(ctx context.Context, leadID, leadName string, showings []Showing)
	Replace(ctx context.Context, leadID, leadName string, showings []Showing)
	RemoveLead(ctx context.Context, leadID string)
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

type LeadService interface {
	ListLeads(ctx context.Context, filter ListFilter, page common_models.Page) ([]Lead, common_models.Page, error)
	GetLead(ctx context.Context, id string) (*Lead, error)
	CreateLead(ctx context.Context, in CreateLeadInput) (*Lead, error)
	UpdateLead(ctx context.Context, id string, in UpdateLeadInput) (*Lead, error)
	DeleteLead(ctx context.Context, id string) error
	ImportLeads(ctx context.Context, rows []CreateLeadInput) (*ImportResult, error)
}

type LeadServiceImpl struct {
	Repo   LeadRepository
	Sync   ShowingSyncer
	Audit  audit.AuditService
	Logger *zap.Logger
	now    func() time.Time
}

func NewLeadService(repo LeadRepository, sync ShowingSyncer, auditService audit.AuditService, logger *zap.Logger) LeadService {
	return &LeadServiceImpl{
		Repo:   repo,
		Sync:   sync,
		Audit:  auditService,
		Logger: logger,
		now:    time.Now,
	}
}

func (s *LeadServiceImpl) ListLeads(ctx context.Context, filter ListFilter, page common_models.Page) ([]Lead, common_models.Page, error) {
	leads, total, err := s.Repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, page, apperr.Unexpected("Failed to fetch leads", err)
	}
	return leads, page.WithTotal(total), nil
}

func (s *LeadServiceImpl) GetLead(ctx context.Context, id string) (*Lead, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *LeadServiceImpl) CreateLead(ctx context.Context, in CreateLeadInput) (*Lead, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := CheckShowingIDs(in.Showings); err != nil {
		return nil, err
	}

	l := s.build(in)
	if err := s.Repo.Insert(ctx, l); err != nil {
		return nil, err
	}

	if len(l.Showings) > 0 {
		s.Sync.Sync(ctx, l.IDString(), l.Name, l.Showings)
	}
	s.Audit.LogChange(ctx, common_models.AuditActionCreate, auditModule, l.IDString(), nil)
	return l, nil
}

func (s *LeadServiceImpl) build(in CreateLeadInput) *Lead {
	now := s.now()
	l := &Lead{
		ID:                  primitive.NewObjectID(),
		Name:                in.Name,
		Email:               strings.TrimSpace(in.Email),
		Phone:               in.Phone,
		Date:                in.Date,
		Status:              in.Status,
		Property:            in.Property,
		Location:            in.Location,
		Notes:               in.Notes,
		AssignedTo:          in.AssignedTo,
		LeadStatus:          in.LeadStatus,
		LeadType:            in.LeadType,
		LeadSource:          in.LeadSource,
		LeadResponse:        in.LeadResponse,
		ClientType:          in.ClientType,
		LeadConversion:      in.LeadConversion,
		Language:            in.Language,
		PropertyPreferences: in.PropertyPreferences,
		Showings:            NormalizeShowings(in.Showings, now),
		Tasks:               NormalizeTasks(in.Tasks),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if strings.TrimSpace(in.Notes) != "" {
		l.NotesHistory = []NoteEntry{{
			ID:        primitive.NewObjectID().Hex(),
			Timestamp: nextNoteTime(nil, now),
			Content:   in.Notes,
			LeadName:  in.Name,
		}}
	}
	return l
}

// UpdateLead applies a partial update. Non-empty notes are appended to the
// history; showings and tasks get ids where missing, and any showings
// written are mirrored to the calendar after the lead is stored.
func (s *LeadServiceImpl) UpdateLead(ctx context.Context, id string, in UpdateLeadInput) (*Lead, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	set := bson.M{"updatedAt": now}
	push := bson.M{}
	changes := map[string]common_models.Change{}

	setString := func(key string, v *string, old string) {
		if v == nil {
			return
		}
		set[key] = *v
		if *v != old {
			changes[key] = common_models.Change{Old: old, New: *v}
		}
	}
	setString("name", in.Name, existing.Name)
	setString("email", in.Email, existing.Email)
	setString("phone", in.Phone, existing.Phone)
	setString("date", in.Date, existing.Date)
	setString("status", in.Status, existing.Status)
	setString("property", in.Property, existing.Property)
	setString("location", in.Location, existing.Location)
	setString("assignedTo", in.AssignedTo, existing.AssignedTo)
	setString("leadStatus", in.LeadStatus, existing.LeadStatus)
	setString("leadType", in.LeadType, existing.LeadType)
	setString("leadSource", in.LeadSource, existing.LeadSource)
	setString("leadResponse", in.LeadResponse, existing.LeadResponse)
	setString("clientType", in.ClientType, existing.ClientType)
	setString("leadConversion", in.LeadConversion, existing.LeadConversion)
	setString("language", in.Language, existing.Language)

	if in.PropertyPreferences != nil {
		set["propertyPreferences"] = in.PropertyPreferences
	}
	if in.CallHistory != nil {
		set["callHistory"] = *in.CallHistory
	}
	if in.Tasks != nil {
		set["tasks"] = NormalizeTasks(*in.Tasks)
	}

	leadName := existing.Name
	if in.Name != nil {
		leadName = *in.Name
	}

	if in.Notes != nil {
		set["notes"] = *in.Notes
		if strings.TrimSpace(*in.Notes) != "" {
			push["notesHistory"] = NoteEntry{
				ID:        primitive.NewObjectID().Hex(),
				Timestamp: nextNoteTime(existing.NotesHistory, now),
				Content:   *in.Notes,
				LeadName:  leadName,
			}
		}
	}

	var written []Showing
	replaced := false
	if in.Showings != nil {
		if in.Showings.IsReplace() {
			if err := CheckShowingIDs(in.Showings.Replace); err != nil {
				return nil, err
			}
			written = NormalizeShowings(in.Showings.Replace, now)
			set["showings"] = written
			replaced = true
		} else {
			if err := CheckNewShowing(existing.Showings, *in.Showings.Add); err != nil {
				return nil, err
			}
			added := NormalizeShowing(*in.Showings.Add, now)
			push["showings"] = added
			written = []Showing{added}
		}
	}

	updated, err := s.Repo.Update(ctx, existing.ID, set, push)
	if err != nil {
		return nil, err
	}

	// A rename changes every mirrored event title
	if written == nil && leadName != existing.Name {
		written = updated.Showings
	}
	switch {
	case replaced:
		s.Sync.Replace(ctx, updated.IDString(), updated.Name, written)
	case len(written) > 0:
		s.Sync.Sync(ctx, updated.IDString(), updated.Name, written)
	}

	if len(changes) > 0 {
		s.Audit.LogChange(ctx, common_models.AuditActionUpdate, auditModule, updated.IDString(), changes)
	}
	return updated, nil
}

func (s *LeadServiceImpl) DeleteLead(ctx context.Context, id string) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Sync.RemoveLead(ctx, existing.IDString())
	s.Audit.LogChange(ctx, common_models.AuditActionDelete, auditModule, existing.IDString(), nil)
	return nil
}

// ImportLeads validates each row, skips the invalid ones and inserts the rest
// in one batch.
func (s *LeadServiceImpl) ImportLeads(ctx context.Context, rows []CreateLeadInput) (*ImportResult, error) {
	res := &ImportResult{}
	leads := make([]*Lead, 0, len(rows))

	for i, row := range rows {
		if err := validate.Struct(row); err != nil {
			res.Failed++
			// header is row 1
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", i+2, err.Error()))
			continue
		}
		leads = append(leads, s.build(row))
	}

	n, err := s.Repo.InsertMany(ctx, leads)
	res.Imported = n
	res.Failed += len(leads) - n
	if err != nil {
		s.Logger.Warn("Lead import partially failed", zap.Int("inserted", n), zap.Int("attempted", len(leads)), zap.Error(err))
		if n == 0 && len(leads) > 0 {
			return nil, apperr.Unexpected("Failed to import leads", err)
		}
		res.Errors = append(res.Errors, "some rows could not be stored")
	}

	s.Audit.LogChange(ctx, common_models.AuditActionImport, auditModule, "", map[string]common_models.Change{
		"imported": {New: res.Imported},
	})
	return res, nil
}
