package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dated struct {
	Date ISODate `bson:"date"`
}

func TestISODate_Decode(t *testing.T) {
	at := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value interface{}
		want  ISODate
	}{
		{"string", "2024-06-01", "2024-06-01"},
		{"datetime", primitive.NewDateTimeFromTime(at), "2024-06-01T14:30:00.000Z"},
		{"null", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"date": tt.value})
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var out dated
			if err := bson.Unmarshal(raw, &out); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out.Date != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out.Date)
			}
		})
	}
}

func TestISODate_RejectsOtherTypes(t *testing.T) {
	raw, _ := bson.Marshal(bson.M{"date": 42})
	var out dated
	if err := bson.Unmarshal(raw, &out); err == nil {
		t.Error("Expected an error for a numeric date")
	}
}

func TestISODate_EncodesAsString(t *testing.T) {
	raw, err := bson.Marshal(dated{Date: "2024-06-01"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got := bson.Raw(raw).Lookup("date").StringValue(); got != "2024-06-01" {
		t.Errorf("Expected string date, got %q", got)
	}
}
