package inventory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Item struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	City         string             `bson:"city,omitempty" json:"city,omitempty"`
	Price        float64            `bson:"price" json:"price"`
	Bedrooms     int                `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    float64            `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	SquareFeet   int                `bson:"squareFeet,omitempty" json:"squareFeet,omitempty"`
	PropertyType string             `bson:"propertyType,omitempty" json:"propertyType,omitempty"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	Images       []string           `bson:"images,omitempty" json:"images,omitempty"`
	Features     []string           `bson:"features,omitempty" json:"features,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CreateItemInput struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	Price        float64  `json:"price" validate:"gte=0"`
	Bedrooms     int      `json:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms    float64  `json:"bathrooms,omitempty" validate:"gte=0"`
	SquareFeet   int      `json:"squareFeet,omitempty" validate:"gte=0"`
	PropertyType string   `json:"propertyType,omitempty"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=available pending sold"`
	Images       []string `json:"images,omitempty"`
	Features     []string `json:"features,omitempty"`
}

type UpdateItemInput struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	Price        *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Bedrooms     *int      `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms    *float64  `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	SquareFeet   *int      `json:"squareFeet,omitempty" validate:"omitempty,gte=0"`
	PropertyType *string   `json:"propertyType,omitempty"`
	Status       *string   `json:"status,omitempty" validate:"omitempty,oneof=available pending sold"`
	Images       *[]string `json:"images,omitempty"`
	Features     *[]string `json:"features,omitempty"`
}

// Query is a list request after defaults are applied
type Query struct {
	Search string
	Sort   string
	Desc   bool
}

// sortable fields; anything else falls back to createdAt
var sortable = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"price":     true,
	"title":     true,
	"bedrooms":  true,
}
