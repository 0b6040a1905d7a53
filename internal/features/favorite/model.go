package favorite

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is a saved MLS listing. Property is stored as received; only
// ListingKey is interpreted.
type Favorite struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	UserID    string                 `bson:"userId" json:"userId"`
	Property  map[string]interface{} `bson:"property" json:"property"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

type ToggleInput struct {
	UserID   string                 `json:"userId"`
	Property map[string]interface{} `json:"property" validate:"required"`
}

type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

func listingKey(property map[string]interface{}) string {
	key, _ := property["ListingKey"].(string)
	return key
}
