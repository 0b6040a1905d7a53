package user

import (
	"context"
	"regexp"
	"strings"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Insert(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error)
	UsernameTaken(ctx context.Context, username string, except primitive.ObjectID) (bool, error)
	List(ctx context.Context, search string, limit, offset int64) ([]User, int64, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddFavorite(ctx context.Context, id, itemID primitive.ObjectID) error
	RemoveFavorite(ctx context.Context, id, itemID primitive.ObjectID) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

// EnsureIndexes creates the unique email index
func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepositoryImpl) Insert(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, user)
	return apperr.FromMongo(err, "User not found")
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, apperr.FromMongo(err, "User not found")
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		return nil, apperr.FromMongo(err, "User not found")
	}
	return &user, nil
}

func (r *UserRepositoryImpl) EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error) {
	n, err := r.Collection.CountDocuments(ctx, bson.M{
		"email": strings.ToLower(email),
		"_id":   bson.M{"$ne": except},
	})
	return n > 0, err
}

// UsernameTaken matches usernames case-insensitively
func (r *UserRepositoryImpl) UsernameTaken(ctx context.Context, username string, except primitive.ObjectID) (bool, error) {
	n, err := r.Collection.CountDocuments(ctx, bson.M{
		"username": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(username) + "$", Options: "i"},
		"_id":      bson.M{"$ne": except},
	})
	return n > 0, err
}

func (r *UserRepositoryImpl) List(ctx context.Context, search string, limit, offset int64) ([]User, int64, error) {
	filter := database.SearchFilter(search, "name", "email")

	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSkip(offset).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperr.FromMongo(err, "User not found")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *UserRepositoryImpl) AddFavorite(ctx context.Context, id, itemID primitive.ObjectID) error {
	return r.updateFavorites(ctx, id, bson.M{"$addToSet": bson.M{"favorites": itemID}})
}

func (r *UserRepositoryImpl) RemoveFavorite(ctx context.Context, id, itemID primitive.ObjectID) error {
	return r.updateFavorites(ctx, id, bson.M{"$pull": bson.M{"favorites": itemID}})
}

func (r *UserRepositoryImpl) updateFavorites(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
