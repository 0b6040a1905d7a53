package lead

import (
	"context"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows a lead listing; empty fields match everything
type ListFilter struct {
	Search     string
	LeadStatus string
	AssignedTo string
}

type LeadRepository interface {
	Insert(ctx context.Context, lead *Lead) error
	InsertMany(ctx context.Context, leads []*Lead) (int, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, int64, error)
	ListWithShowings(ctx context.Context) ([]Lead, error)
	// Update applies $set and $push to the lead whose stored _id equals id
	// and returns the document after the update.
	Update(ctx context.Context, id interface{}, set, push bson.M) (*Lead, error)
	Delete(ctx context.Context, id string) error
}

type LeadRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewLeadRepository(mongodb *database.MongodbDB) LeadRepository {
	return &LeadRepositoryImpl{
		Collection: mongodb.DB.Collection("leads"),
	}
}

func (r *LeadRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "showings.id", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *LeadRepositoryImpl) Insert(ctx context.Context, lead *Lead) error {
	if lead.ID == nil {
		lead.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, lead)
	return apperr.FromMongo(err, "Lead not found")
}

// InsertMany inserts unordered so one bad document does not stop the rest.
// It returns how many were written.
func (r *LeadRepositoryImpl) InsertMany(ctx context.Context, leads []*Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(leads))
	for i, l := range leads {
		if l.ID == nil {
			l.ID = primitive.NewObjectID()
		}
		docs[i] = l
	}
	res, err := r.Collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if res == nil {
		return 0, err
	}
	return len(res.InsertedIDs), err
}

func (r *LeadRepositoryImpl) FindByID(ctx context.Context, id string) (*Lead, error) {
	var lead Lead
	err := r.Collection.FindOne(ctx, database.IDFilter(id)).Decode(&lead)
	if err != nil {
		return nil, apperr.FromMongo(err, "Lead not found")
	}
	return &lead, nil
}

func (r *LeadRepositoryImpl) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, int64, error) {
	query := database.SearchFilter(filter.Search, "name", "email", "phone", "property")
	if filter.LeadStatus != "" {
		query["leadStatus"] = filter.LeadStatus
	}
	if filter.AssignedTo != "" {
		query["assignedTo"] = filter.AssignedTo
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	leads := []Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepositoryImpl) ListWithShowings(ctx context.Context) ([]Lead, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1, "showings": 1})
	cursor, err := r.Collection.Find(ctx, bson.M{"showings.0": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	leads := []Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *LeadRepositoryImpl) Update(ctx context.Context, id interface{}, set, push bson.M) (*Lead, error) {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(push) > 0 {
		update["$push"] = push
	}

	var lead Lead
	err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&lead)
	if err != nil {
		return nil, apperr.FromMongo(err, "Lead not found")
	}
	return &lead, nil
}

func (r *LeadRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.Collection.DeleteOne(ctx, database.IDFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Lead not found")
	}
	return nil
}
