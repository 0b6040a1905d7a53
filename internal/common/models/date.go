package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// isoLayout matches JavaScript's Date.toISOString
const isoLayout = "2006-01-02T15:04:05.000Z"

// ISODate is a calendar date kept as text. Older documents stored it as a
// BSON datetime; those decode to their ISO form.
type ISODate string

func (d *ISODate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return fmt.Errorf("malformed date string")
		}
		*d = ISODate(s)
	case bsontype.DateTime:
		ms, _, ok := bsoncore.ReadDateTime(data)
		if !ok {
			return fmt.Errorf("malformed datetime")
		}
		*d = ISODate(time.UnixMilli(ms).UTC().Format(isoLayout))
	case bsontype.Null, bsontype.Undefined:
		*d = ""
	default:
		return fmt.Errorf("cannot decode %s into a date", t)
	}
	return nil
}
