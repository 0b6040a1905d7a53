package showing

import (
	"context"
	"sync/atomic"
	"time"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/features/event"
	"realty-crm/internal/features/lead"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	defaultTitle = "Property Showing"
	defaultTime  = "12:00"
	eventType    = "viewing"
)

// Projector mirrors lead showings into the events collection. Events are a
// projection of Lead.showings: every write upserts by showing id and is
// safe to repeat.
type Projector struct {
	Events    event.EventRepository
	Publisher event.Publisher
	Logger    *zap.Logger

	failures atomic.Int64
	now      func() time.Time
}

func NewProjector(events event.EventRepository, publisher event.Publisher, logger *zap.Logger) *Projector {
	return &Projector{
		Events:    events,
		Publisher: publisher,
		Logger:    logger,
		now:       time.Now,
	}
}

// Payload is the full event document for one showing
func Payload(leadID, leadName string, s lead.Showing, now time.Time) bson.M {
	property := s.Property
	if property == "" {
		property = defaultTitle
	}
	t := s.Time
	if t == "" {
		t = defaultTime
	}
	description := s.Notes
	if description == "" {
		description = "Showing for " + leadName
	}
	status := s.Status
	if status == "" {
		status = event.StatusScheduled
	}

	return bson.M{
		"title":       property + " - " + leadName,
		"date":        string(s.Date),
		"time":        t,
		"type":        eventType,
		"description": description,
		"location":    s.Property,
		"status":      status,
		"leadId":      leadID,
		"leadName":    leadName,
		"showingId":   s.ID,
		"lastSynced":  now,
	}
}

// Sync upserts one event per showing. Failures are logged and counted and
// never returned.
func (p *Projector) Sync(ctx context.Context, leadID, leadName string, showings []lead.Showing) {
	now := p.now()
	for _, s := range showings {
		if s.ID == "" {
			p.fail(leadID, s.ID, apperr.Sync(s.ID, apperr.Validation("showing has no id")))
			continue
		}

		e, err := p.Events.UpsertByShowingID(ctx, s.ID, Payload(leadID, leadName, s, now))
		if err != nil {
			p.fail(leadID, s.ID, apperr.Sync(s.ID, err))
			continue
		}
		p.Publisher.Publish(event.Change{Kind: event.ChangeSynced, EventID: e.ID.Hex(), Event: e, LeadID: leadID})
	}
}

// Replace mirrors a lead's complete showing list. Events whose showing is
// no longer on the lead are removed.
func (p *Projector) Replace(ctx context.Context, leadID, leadName string, showings []lead.Showing) {
	p.Sync(ctx, leadID, leadName, showings)

	keep := make([]string, 0, len(showings))
	for _, s := range showings {
		if s.ID != "" {
			keep = append(keep, s.ID)
		}
	}
	p.prune(ctx, leadID, keep)
}

// RemoveLead drops the events mirroring a deleted lead's showings
func (p *Projector) RemoveLead(ctx context.Context, leadID string) {
	p.prune(ctx, leadID, nil)
}

func (p *Projector) prune(ctx context.Context, leadID string, keep []string) {
	n, err := p.Events.DeleteByLead(ctx, leadID, keep)
	if err != nil {
		p.fail(leadID, "", err)
		return
	}
	if n > 0 {
		p.Publisher.Publish(event.Change{Kind: event.ChangeDeleted, LeadID: leadID})
	}
}

func (p *Projector) fail(leadID, showingID string, err error) {
	total := p.failures.Add(1)
	p.Logger.Warn("Showing sync failed",
		zap.String("leadId", leadID),
		zap.String("showingId", showingID),
		zap.Int64("failuresTotal", total),
		zap.Error(err))
}

// SyncFailures is the number of failed projections since start
func (p *Projector) SyncFailures() int64 {
	return p.failures.Load()
}
