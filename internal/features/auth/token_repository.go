package auth

import (
	"context"
	"time"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TokenRepository interface {
	Save(ctx context.Context, kind TokenKind, userID primitive.ObjectID, token string, ttl time.Duration) error
	FindValid(ctx context.Context, kind TokenKind, userID primitive.ObjectID, token string) (*StoredToken, error)
	Delete(ctx context.Context, kind TokenKind, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID string) error
}

type TokenRepositoryImpl struct {
	DB *mongo.Database
}

func NewTokenRepository(mongodb *database.MongodbDB) TokenRepository {
	return &TokenRepositoryImpl{DB: mongodb.DB}
}

func (r *TokenRepositoryImpl) col(kind TokenKind) *mongo.Collection {
	return r.DB.Collection(string(kind))
}

func (r *TokenRepositoryImpl) Save(ctx context.Context, kind TokenKind, userID primitive.ObjectID, token string, ttl time.Duration) error {
	now := time.Now()
	_, err := r.col(kind).InsertOne(ctx, StoredToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	return err
}

// FindValid returns the stored token if it exists and has not expired
func (r *TokenRepositoryImpl) FindValid(ctx context.Context, kind TokenKind, userID primitive.ObjectID, token string) (*StoredToken, error) {
	var t StoredToken
	err := r.col(kind).FindOne(ctx, bson.M{
		"token":     token,
		"userId":    userID,
		"expiresAt": bson.M{"$gt": time.Now()},
	}).Decode(&t)
	if err != nil {
		return nil, apperr.FromMongo(err, "Invalid or expired token")
	}
	return &t, nil
}

func (r *TokenRepositoryImpl) Delete(ctx context.Context, kind TokenKind, id primitive.ObjectID) error {
	_, err := r.col(kind).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByUser removes both kinds of token for a deleted account
func (r *TokenRepositoryImpl) DeleteByUser(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	for _, kind := range []TokenKind{ResetToken, VerifyToken} {
		if _, err := r.col(kind).DeleteMany(ctx, bson.M{"userId": oid}); err != nil {
			return err
		}
	}
	return nil
}
