package showing

import (
	"context"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/lead"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ShowingService interface {
	ListForLead(ctx context.Context, leadID string) ([]LeadShowing, error)
	ReplaceForLead(ctx context.Context, leadID string, in ReplaceShowingsInput) ([]lead.Showing, error)
	AddForLead(ctx context.Context, leadID string, s lead.Showing) (*LeadShowing, error)
	ListAll(ctx context.Context) ([]CalendarShowing, error)
}

type ShowingServiceImpl struct {
	Leads  lead.LeadRepository
	Sync   lead.ShowingSyncer
	Audit  audit.AuditService
	Logger *zap.Logger
	now    func() time.Time
}

func NewShowingService(leads lead.LeadRepository, sync lead.ShowingSyncer, auditService audit.AuditService, logger *zap.Logger) ShowingService {
	return &ShowingServiceImpl{
		Leads:  leads,
		Sync:   sync,
		Audit:  auditService,
		Logger: logger,
		now:    time.Now,
	}
}

func withLead(l *lead.Lead, s lead.Showing) LeadShowing {
	return LeadShowing{Showing: s, LeadID: l.IDString(), LeadName: l.Name}
}

func (s *ShowingServiceImpl) ListForLead(ctx context.Context, leadID string) ([]LeadShowing, error) {
	l, err := s.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	out := make([]LeadShowing, 0, len(l.Showings))
	for _, sh := range l.Showings {
		out = append(out, withLead(l, sh))
	}
	return out, nil
}

// ReplaceForLead overwrites the lead's showings, re-projects all of them and
// removes events of showings that were dropped. Concurrent replaces are
// last-write-wins.
func (s *ShowingServiceImpl) ReplaceForLead(ctx context.Context, leadID string, in ReplaceShowingsInput) ([]lead.Showing, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := lead.CheckShowingIDs(in.Showings); err != nil {
		return nil, err
	}

	l, err := s.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	showings := lead.NormalizeShowings(in.Showings, now)
	updated, err := s.Leads.Update(ctx, l.ID, bson.M{"showings": showings, "updatedAt": now}, nil)
	if err != nil {
		return nil, err
	}

	s.Sync.Replace(ctx, updated.IDString(), updated.Name, showings)
	s.Audit.LogChange(ctx, common_models.AuditActionSync, "showings", updated.IDString(), map[string]common_models.Change{
		"showings": {Old: len(l.Showings), New: len(showings)},
	})
	return showings, nil
}

// AddForLead appends one showing and projects only that one
func (s *ShowingServiceImpl) AddForLead(ctx context.Context, leadID string, sh lead.Showing) (*LeadShowing, error) {
	if sh.Date == "" {
		return nil, apperr.Validation("date is required")
	}
	if err := validate.Struct(sh); err != nil {
		return nil, err
	}

	l, err := s.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := lead.CheckNewShowing(l.Showings, sh); err != nil {
		return nil, err
	}

	now := s.now()
	sh = lead.NormalizeShowing(sh, now)
	updated, err := s.Leads.Update(ctx, l.ID, bson.M{"updatedAt": now}, bson.M{"showings": sh})
	if err != nil {
		return nil, err
	}

	s.Sync.Sync(ctx, updated.IDString(), updated.Name, []lead.Showing{sh})
	res := withLead(updated, sh)
	return &res, nil
}

// ListAll flattens every lead's showings for the calendar and re-projects
// each of them. Showings stored without an id get one persisted first.
func (s *ShowingServiceImpl) ListAll(ctx context.Context) ([]CalendarShowing, error) {
	leads, err := s.Leads.ListWithShowings(ctx)
	if err != nil {
		return nil, apperr.Unexpected("Failed to fetch showings", err)
	}

	now := s.now()
	out := []CalendarShowing{}
	for i := range leads {
		l := &leads[i]
		if s.backfill(ctx, l, now) {
			s.Logger.Info("Assigned ids to legacy showings", zap.String("leadId", l.IDString()))
		}

		for _, sh := range l.Showings {
			p := Payload(l.IDString(), l.Name, sh, now)
			out = append(out, CalendarShowing{
				LeadShowing: LeadShowing{Showing: withTime(sh, p["time"].(string)), LeadID: l.IDString(), LeadName: l.Name},
				Title:       p["title"].(string),
				Type:        eventType,
				Description: p["description"].(string),
				Location:    p["location"].(string),
			})
		}
		s.Sync.Sync(ctx, l.IDString(), l.Name, l.Showings)
	}
	return out, nil
}

func withTime(sh lead.Showing, t string) lead.Showing {
	sh.Time = t
	return sh
}

// backfill gives id-less showings a stored id so their events have a stable
// key. It reports whether anything was written.
func (s *ShowingServiceImpl) backfill(ctx context.Context, l *lead.Lead, now time.Time) bool {
	missing := false
	for _, sh := range l.Showings {
		if sh.ID == "" {
			missing = true
			break
		}
	}
	if !missing {
		return false
	}

	l.Showings = lead.NormalizeShowings(l.Showings, now)
	if _, err := s.Leads.Update(ctx, l.ID, bson.M{"showings": l.Showings}, nil); err != nil {
		s.Logger.Warn("Failed to store showing ids", zap.String("leadId", l.IDString()), zap.Error(err))
		return false
	}
	return true
}
