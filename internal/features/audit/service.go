package audit

import (
	"context"
	"time"

	common_models "realty-crm/internal/common/models"
	"realty-crm/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change)
	ListLogs(ctx context.Context, filter Filter, page common_models.Page) ([]common_models.AuditLog, common_models.Page, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Logger *zap.Logger
}

func NewAuditService(repo AuditRepository, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

// LogChange records who changed what. Failures are logged and dropped so an
// audit outage never fails the request that caused the change.
func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) {
	actorID := "system"
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		actorID = claims.UserID
	}

	entry := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	if err := s.Repo.Create(ctx, entry); err != nil {
		s.Logger.Warn("Failed to write audit log",
			zap.String("module", module),
			zap.String("recordId", recordID),
			zap.Error(err))
	}
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter Filter, page common_models.Page) ([]common_models.AuditLog, common_models.Page, error) {
	logs, total, err := s.Repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, page, err
	}
	return logs, page.WithTotal(total), nil
}
