package user

import (
	"context"
	"strings"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const auditModule = "users"

type UserService interface {
	ListUsers(ctx context.Context, search string, page common_models.Page) ([]User, common_models.Page, error)
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error)
	SetPermissions(ctx context.Context, id string, patch permission.Patch) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error)
	UpdateAvatar(ctx context.Context, id, url string) (*User, error)
	EffectivePermissions(ctx context.Context, userID string) (permission.Flags, error)
}

type UserServiceImpl struct {
	Repo   UserRepository
	Audit  audit.AuditService
	Logger *zap.Logger
}

func NewUserService(repo UserRepository, auditService audit.AuditService, logger *zap.Logger) UserService {
	return &UserServiceImpl{
		Repo:   repo,
		Audit:  auditService,
		Logger: logger,
	}
}

// ParseID converts a path id into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid user ID")
	}
	return oid, nil
}

// HashPassword hashes with bcrypt's default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Unexpected("Failed to hash password", err)
	}
	return string(hash), nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, search string, page common_models.Page) ([]User, common_models.Page, error) {
	users, total, err := s.Repo.List(ctx, search, page.Limit, page.Offset())
	if err != nil {
		return nil, page, apperr.Unexpected("Failed to fetch users", err)
	}
	return users, page.WithTotal(total), nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

// CreateUser stores a new user. Role defaults to "user" and is normalized
// together with any supplied permissions.
func (s *UserServiceImpl) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if strings.TrimSpace(role) == "" {
		role = "user"
	}
	norm := permission.Normalize(permission.Update{Role: &role, Permissions: in.Permissions}, permission.State{})

	now := time.Now()
	u := &User{
		Name:        in.Name,
		Username:    in.Username,
		Email:       email,
		Password:    hash,
		Phone:       in.Phone,
		Role:        norm.Role.String(),
		Permissions: norm.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Insert(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionCreate, auditModule, u.ID.Hex(), nil)
	return u, nil
}

// UpdateUser applies an administrative update. Role and permission changes
// go through the permission normalizer against the stored state.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	changes := map[string]common_models.Change{}

	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Username != nil {
		set["username"] = *in.Username
	}
	if in.Phone != nil {
		set["phone"] = *in.Phone
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		taken, err := s.Repo.EmailTaken(ctx, email, oid)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Email already exists")
		}
		set["email"] = email
		if email != existing.Email {
			changes["email"] = common_models.Change{Old: existing.Email, New: email}
		}
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		set["password"] = hash
	}

	s.applyNormalized(set, changes, existing, permission.Update{Role: in.Role, Permissions: in.Permissions})

	return s.commit(ctx, existing, set, changes)
}

// SetPermissions updates permissions only, role untouched
func (s *UserServiceImpl) SetPermissions(ctx context.Context, id string, patch permission.Patch) (*User, error) {
	return s.UpdateUser(ctx, id, UpdateUserInput{Permissions: &patch})
}

func (s *UserServiceImpl) applyNormalized(set bson.M, changes map[string]common_models.Change, existing *User, update permission.Update) {
	norm := permission.Normalize(update, existing.State())
	if norm.Role != nil {
		set["role"] = norm.Role.String()
		if norm.Role.String() != existing.Role {
			changes["role"] = common_models.Change{Old: existing.Role, New: norm.Role.String()}
		}
	}
	if norm.Permissions != nil {
		set["permissions"] = *norm.Permissions
		changes["permissions"] = common_models.Change{Old: existing.Permissions, New: *norm.Permissions}
	}
}

func (s *UserServiceImpl) commit(ctx context.Context, existing *User, set bson.M, changes map[string]common_models.Change) (*User, error) {
	set["updatedAt"] = time.Now()
	if err := s.Repo.UpdateFields(ctx, existing.ID, set); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, err
	}

	if len(changes) > 0 {
		s.Audit.LogChange(ctx, common_models.AuditActionUpdate, auditModule, existing.ID.Hex(), changes)
	}
	return s.Repo.FindByID(ctx, existing.ID)
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, oid); err != nil {
		return err
	}
	s.Audit.LogChange(ctx, common_models.AuditActionDelete, auditModule, id, nil)
	return nil
}

// UpdateProfile is the self-service path: name, username and phone only.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(in.Username, existing.Username) {
		taken, err := s.Repo.UsernameTaken(ctx, in.Username, oid)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Username already exists")
		}
	}

	set := bson.M{
		"name":     in.Name,
		"username": in.Username,
		"phone":    in.Phone,
	}
	return s.commit(ctx, existing, set, nil)
}

func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, id, url string) (*User, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.Validation("Avatar URL is required")
	}
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, existing, bson.M{"avatar": url}, nil)
}

func (s *UserServiceImpl) EffectivePermissions(ctx context.Context, userID string) (permission.Flags, error) {
	oid, err := ParseID(userID)
	if err != nil {
		return permission.Flags{}, apperr.NotFound("User not found")
	}
	u, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return permission.Flags{}, err
	}
	return permission.Effective(u.Role, u.Permissions), nil
}
