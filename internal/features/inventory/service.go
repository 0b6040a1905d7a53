package inventory

import (
	"context"
	"reflect"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const auditModule = "inventory"

type InventoryService interface {
	ListItems(ctx context.Context, q Query, page common_models.Page) ([]Item, common_models.Page, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	CreateItem(ctx context.Context, in CreateItemInput) (*Item, error)
	UpdateItem(ctx context.Context, id string, in UpdateItemInput) error
	ToggleFavorite(ctx context.Context, itemID, userID string) (bool, error)
}

type InventoryServiceImpl struct {
	Repo   InventoryRepository
	Users  user.UserRepository
	Audit  audit.AuditService
	Logger *zap.Logger
}

func NewInventoryService(repo InventoryRepository, users user.UserRepository, auditService audit.AuditService, logger *zap.Logger) InventoryService {
	return &InventoryServiceImpl{
		Repo:   repo,
		Users:  users,
		Audit:  auditService,
		Logger: logger,
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid item ID")
	}
	return oid, nil
}

func (s *InventoryServiceImpl) ListItems(ctx context.Context, q Query, page common_models.Page) ([]Item, common_models.Page, error) {
	if !sortable[q.Sort] {
		q.Sort = "createdAt"
	}
	items, total, err := s.Repo.List(ctx, q, page.Limit, page.Offset())
	if err != nil {
		return nil, page, apperr.Unexpected("Failed to fetch inventory", err)
	}
	return items, page.WithTotal(total), nil
}

func (s *InventoryServiceImpl) GetItem(ctx context.Context, id string) (*Item, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

func (s *InventoryServiceImpl) CreateItem(ctx context.Context, in CreateItemInput) (*Item, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &Item{
		Title:        in.Title,
		Description:  in.Description,
		Address:      in.Address,
		City:         in.City,
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		PropertyType: in.PropertyType,
		Status:       in.Status,
		Images:       in.Images,
		Features:     in.Features,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.Status == "" {
		item.Status = "available"
	}

	if err := s.Repo.Create(ctx, item); err != nil {
		return nil, apperr.Unexpected("Failed to create inventory item", err)
	}
	s.Audit.LogChange(ctx, common_models.AuditActionCreate, auditModule, item.ID.Hex(), nil)
	return item, nil
}

// UpdateItem writes only the fields that differ from the stored item. An
// update that changes nothing is rejected.
func (s *InventoryServiceImpl) UpdateItem(ctx context.Context, id string, in UpdateItemInput) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	existing, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return err
	}

	set := bson.M{}
	changes := map[string]common_models.Change{}
	diff := func(key string, old, v interface{}) {
		if reflect.ValueOf(v).IsNil() {
			return
		}
		nv := reflect.ValueOf(v).Elem().Interface()
		if reflect.DeepEqual(old, nv) {
			return
		}
		set[key] = nv
		changes[key] = common_models.Change{Old: old, New: nv}
	}
	diff("title", existing.Title, in.Title)
	diff("description", existing.Description, in.Description)
	diff("address", existing.Address, in.Address)
	diff("city", existing.City, in.City)
	diff("price", existing.Price, in.Price)
	diff("bedrooms", existing.Bedrooms, in.Bedrooms)
	diff("bathrooms", existing.Bathrooms, in.Bathrooms)
	diff("squareFeet", existing.SquareFeet, in.SquareFeet)
	diff("propertyType", existing.PropertyType, in.PropertyType)
	diff("status", existing.Status, in.Status)
	diff("images", existing.Images, in.Images)
	diff("features", existing.Features, in.Features)

	if len(set) == 0 {
		return apperr.Validation("No changes were made to the item")
	}
	set["updatedAt"] = time.Now()

	if err := s.Repo.Update(ctx, oid, set); err != nil {
		return err
	}
	s.Audit.LogChange(ctx, common_models.AuditActionUpdate, auditModule, id, changes)
	return nil
}

// ToggleFavorite flips the item in the user's favorites and returns the new state
func (s *InventoryServiceImpl) ToggleFavorite(ctx context.Context, itemID, userID string) (bool, error) {
	oid, err := parseID(itemID)
	if err != nil {
		return false, err
	}
	uid, err := user.ParseID(userID)
	if err != nil {
		return false, err
	}

	if _, err := s.Repo.FindByID(ctx, oid); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, apperr.NotFound("Inventory item not found")
		}
		return false, err
	}

	u, err := s.Users.FindByID(ctx, uid)
	if err != nil {
		return false, err
	}

	for _, fav := range u.Favorites {
		if fav == oid {
			return false, s.Users.RemoveFavorite(ctx, uid, oid)
		}
	}
	return true, s.Users.AddFavorite(ctx, uid, oid)
}
