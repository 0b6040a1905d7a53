package user

import (
	"time"

	"realty-crm/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name          string               `bson:"name" json:"name"`
	Username      string               `bson:"username,omitempty" json:"username,omitempty"`
	Email         string               `bson:"email" json:"email"`
	Password      string               `bson:"password" json:"-"`
	Phone         string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar        string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role          string               `bson:"role" json:"role"`
	Permissions   *permission.Flags    `bson:"permissions,omitempty" json:"permissions,omitempty"`
	EmailVerified bool                 `bson:"emailVerified" json:"emailVerified"`
	Favorites     []primitive.ObjectID `bson:"favorites,omitempty" json:"favorites,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// State is the normalizer view of the stored user
func (u *User) State() permission.State {
	return permission.State{Role: u.Role, Permissions: u.Permissions}
}

type CreateUserInput struct {
	Name        string            `json:"name" validate:"required"`
	Username    string            `json:"username,omitempty"`
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password" validate:"required"`
	Phone       string            `json:"phone,omitempty"`
	Role        string            `json:"role,omitempty"`
	Permissions *permission.Patch `json:"permissions,omitempty"`
}

// UpdateUserInput is an administrative update. Nil fields are left alone.
type UpdateUserInput struct {
	Name        *string           `json:"name,omitempty"`
	Username    *string           `json:"username,omitempty"`
	Email       *string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string           `json:"phone,omitempty"`
	Password    *string           `json:"password,omitempty"`
	Role        *string           `json:"role,omitempty"`
	Permissions *permission.Patch `json:"permissions,omitempty"`
}

type ProfileInput struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}
