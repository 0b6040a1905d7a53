package event

import (
	"context"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	List(ctx context.Context, filter ListFilter) ([]Event, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// UpsertByShowingID sets payload on the event mirroring showingID,
	// creating it when none exists.
	UpsertByShowingID(ctx context.Context, showingID string, payload bson.M) (*Event, error)
	// DeleteByLead removes the lead's mirrored events, except those whose
	// showing id is in keep.
	DeleteByLead(ctx context.Context, leadID string, keep []string) (int64, error)
}

type EventRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewEventRepository(mongodb *database.MongodbDB) EventRepository {
	return &EventRepositoryImpl{
		Collection: mongodb.DB.Collection("events"),
	}
}

// EnsureIndexes makes showingId unique among mirrored events, so racing
// upserts surface as a duplicate key instead of a second event.
func (r *EventRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "showingId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"showingId": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "leadId", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}},
	})
	return err
}

func (r *EventRepositoryImpl) Create(ctx context.Context, e *Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, e)
	return apperr.FromMongo(err, "Event not found")
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	var e Event
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, apperr.FromMongo(err, "Event not found")
	}
	return &e, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Event, error) {
	query := bson.M{}
	date := bson.M{}
	if filter.From != "" {
		date["$gte"] = filter.From
	}
	if filter.To != "" {
		date["$lte"] = filter.To
	}
	if len(date) > 0 {
		query["date"] = date
	}
	if filter.LeadID != "" {
		query["leadId"] = filter.LeadID
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Event, error) {
	var e Event
	err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&e)
	if err != nil {
		return nil, apperr.FromMongo(err, "Event not found")
	}
	return &e, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Event not found")
	}
	return nil
}

func (r *EventRepositoryImpl) UpsertByShowingID(ctx context.Context, showingID string, payload bson.M) (*Event, error) {
	update := bson.M{
		"$set":         payload,
		"$setOnInsert": bson.M{"createdAt": payload["lastSynced"]},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var e Event
	if err := r.Collection.FindOneAndUpdate(ctx, bson.M{"showingId": showingID}, update, opts).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepositoryImpl) DeleteByLead(ctx context.Context, leadID string, keep []string) (int64, error) {
	showing := bson.M{"$exists": true}
	if len(keep) > 0 {
		showing["$nin"] = keep
	}
	res, err := r.Collection.DeleteMany(ctx, bson.M{
		"leadId":    leadID,
		"showingId": showing,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
