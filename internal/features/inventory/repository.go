package inventory

import (
	"context"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Item, error)
	List(ctx context.Context, q Query, limit, offset int64) ([]Item, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
}

type InventoryRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewInventoryRepository(mongodb *database.MongodbDB) InventoryRepository {
	return &InventoryRepositoryImpl{
		Collection: mongodb.DB.Collection("inventory"),
	}
}

func (r *InventoryRepositoryImpl) Create(ctx context.Context, item *Item) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, item)
	return err
}

func (r *InventoryRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Item, error) {
	var item Item
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, apperr.FromMongo(err, "Item not found")
	}
	return &item, nil
}

func (r *InventoryRepositoryImpl) List(ctx context.Context, q Query, limit, offset int64) ([]Item, int64, error) {
	filter := database.SearchFilter(q.Search, "title", "description", "address", "city")

	order := 1
	if q.Desc {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: q.Sort, Value: order}}).
		SetSkip(offset).
		SetLimit(limit)

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := []Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *InventoryRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Item not found")
	}
	return nil
}
