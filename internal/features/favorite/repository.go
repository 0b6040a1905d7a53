package favorite

import (
	"context"

	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavoriteRepository interface {
	Insert(ctx context.Context, f *Favorite) error
	// Remove deletes the user's favorite for listingKey and reports whether
	// one existed.
	Remove(ctx context.Context, userID, listingKey string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type FavoriteRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewFavoriteRepository(mongodb *database.MongodbDB) FavoriteRepository {
	return &FavoriteRepositoryImpl{
		Collection: mongodb.DB.Collection("favorites"),
	}
}

func (r *FavoriteRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "property.ListingKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *FavoriteRepositoryImpl) Insert(ctx context.Context, f *Favorite) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, f)
	return err
}

func (r *FavoriteRepositoryImpl) Remove(ctx context.Context, userID, listingKey string) (bool, error) {
	res, err := r.Collection.DeleteOne(ctx, bson.M{
		"userId":              userID,
		"property.ListingKey": listingKey,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *FavoriteRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	favorites := []Favorite{}
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// DeleteByUser removes every favorite of a deleted account
func (r *FavoriteRepositoryImpl) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.Collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
