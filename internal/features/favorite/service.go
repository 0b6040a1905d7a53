package favorite

import (
	"context"
	"time"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/common/validate"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type FavoriteService interface {
	List(ctx context.Context, userID string) ([]Favorite, error)
	Toggle(ctx context.Context, in ToggleInput) (Action, error)
}

type FavoriteServiceImpl struct {
	Repo   FavoriteRepository
	Logger *zap.Logger
}

func NewFavoriteService(repo FavoriteRepository, logger *zap.Logger) FavoriteService {
	return &FavoriteServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func (s *FavoriteServiceImpl) List(ctx context.Context, userID string) ([]Favorite, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	favorites, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to fetch favorites", err)
	}
	return favorites, nil
}

// Toggle removes the favorite when present and adds it otherwise
func (s *FavoriteServiceImpl) Toggle(ctx context.Context, in ToggleInput) (Action, error) {
	if in.UserID == "" {
		return "", apperr.Validation("User ID and property are required")
	}
	if err := validate.Struct(in); err != nil {
		return "", err
	}
	key := listingKey(in.Property)
	if key == "" {
		return "", apperr.Validation("property.ListingKey is required")
	}

	removed, err := s.Repo.Remove(ctx, in.UserID, key)
	if err != nil {
		return "", apperr.Unexpected("Failed to update favorites", err)
	}
	if removed {
		return ActionRemoved, nil
	}

	err = s.Repo.Insert(ctx, &Favorite{
		UserID:    in.UserID,
		Property:  in.Property,
		CreatedAt: time.Now(),
	})
	// a concurrent toggle added it first
	if mongo.IsDuplicateKeyError(err) {
		s.Logger.Debug("Favorite already present", zap.String("userId", in.UserID), zap.String("listingKey", key))
		err = nil
	}
	if err != nil {
		return "", apperr.Unexpected("Failed to update favorites", err)
	}
	return ActionAdded, nil
}
