package database

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDFilter matches a document whose _id is either the raw string or, when the
// string is a valid hex ObjectID, the ObjectID it encodes.
func IDFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"$or": bson.A{
		bson.M{"_id": id},
		bson.M{"_id": oid},
	}}
}

// ObjectIDFilter matches by ObjectID only. Invalid ids yield ok=false.
func ObjectIDFilter(id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid}, true
}

// SearchFilter builds a case-insensitive regex $or across the given fields.
func SearchFilter(search string, fields ...string) bson.M {
	if search == "" {
		return bson.M{}
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}})
	}
	return bson.M{"$or": or}
}
