package audit

import (
	"context"

	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error)
}

// Filter narrows an audit listing; empty fields match everything
type Filter struct {
	Module   string
	RecordID string
	ActorID  string
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error) {
	query := bson.M{}
	if filter.Module != "" {
		query["module"] = filter.Module
	}
	if filter.RecordID != "" {
		query["record_id"] = filter.RecordID
	}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	logs := []common_models.AuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
