package favorite

import (
	"context"
	"testing"

	"realty-crm/internal/common/apperr"

	"go.uber.org/zap"
)

type MockFavoriteRepo struct {
	favorites []Favorite
}

func (m *MockFavoriteRepo) Insert(ctx context.Context, f *Favorite) error {
	m.favorites = append(m.favorites, *f)
	return nil
}

func (m *MockFavoriteRepo) Remove(ctx context.Context, userID, key string) (bool, error) {
	for i, f := range m.favorites {
		if f.UserID == userID && listingKey(f.Property) == key {
			m.favorites = append(m.favorites[:i], m.favorites[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	out := []Favorite{}
	for _, f := range m.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MockFavoriteRepo) DeleteByUser(ctx context.Context, userID string) error {
	return nil
}

func TestToggle(t *testing.T) {
	repo := &MockFavoriteRepo{}
	svc := NewFavoriteService(repo, zap.NewNop())
	in := ToggleInput{UserID: "u1", Property: map[string]interface{}{"ListingKey": "X123", "City": "Toronto"}}

	action, err := svc.Toggle(context.Background(), in)
	if err != nil || action != ActionAdded {
		t.Fatalf("Expected added, got %q, %v", action, err)
	}

	list, _ := svc.List(context.Background(), "u1")
	if len(list) != 1 || list[0].Property["City"] != "Toronto" {
		t.Errorf("Unexpected favorites: %+v", list)
	}

	action, err = svc.Toggle(context.Background(), in)
	if err != nil || action != ActionRemoved {
		t.Fatalf("Expected removed, got %q, %v", action, err)
	}
	if len(repo.favorites) != 0 {
		t.Errorf("Expected no favorites, got %d", len(repo.favorites))
	}
}

func TestToggle_Validation(t *testing.T) {
	svc := NewFavoriteService(&MockFavoriteRepo{}, zap.NewNop())

	tests := []struct {
		name string
		in   ToggleInput
	}{
		{"no user", ToggleInput{Property: map[string]interface{}{"ListingKey": "X"}}},
		{"no property", ToggleInput{UserID: "u1"}},
		{"no listing key", ToggleInput{UserID: "u1", Property: map[string]interface{}{"City": "Toronto"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Toggle(context.Background(), tt.in); !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.List(context.Background(), ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected validation error for missing user, got %v", err)
	}
}
