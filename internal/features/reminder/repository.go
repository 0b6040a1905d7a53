package reminder

import (
	"context"
	"errors"
	"time"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReminderRepository interface {
	Create(ctx context.Context, r *Reminder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Reminder, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Reminder, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ClaimDue moves the oldest due pending reminder to sending and returns
	// it, or nil when nothing is due. A reminder left in sending for longer
	// than claimLease is claimable again.
	ClaimDue(ctx context.Context, now time.Time) (*Reminder, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// claimLease is how long a sending claim holds before another dispatch may
// take the reminder over
const claimLease = 10 * time.Minute

type ReminderRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReminderRepository(mongodb *database.MongodbDB) ReminderRepository {
	return &ReminderRepositoryImpl{
		Collection: mongodb.DB.Collection("reminders"),
	}
}

func (r *ReminderRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduledTime", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	return err
}

func (r *ReminderRepositoryImpl) Create(ctx context.Context, rem *Reminder) error {
	if rem.ID.IsZero() {
		rem.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, rem)
	return err
}

func (r *ReminderRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Reminder, error) {
	var rem Reminder
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rem); err != nil {
		return nil, apperr.FromMongo(err, "Reminder not found")
	}
	return &rem, nil
}

func (r *ReminderRepositoryImpl) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Reminder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduledTime", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reminders := []Reminder{}
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Reminder not found")
	}
	return nil
}

func (r *ReminderRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Reminder not found")
	}
	return nil
}

func (r *ReminderRepositoryImpl) ClaimDue(ctx context.Context, now time.Time) (*Reminder, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"status": StatusPending, "scheduledTime": bson.M{"$lte": now}},
		bson.M{"status": StatusSending, "updatedAt": bson.M{"$lt": now.Add(-claimLease)}},
	}}
	update := bson.M{"$set": bson.M{"status": StatusSending, "updatedAt": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "scheduledTime", Value: 1}}).
		SetReturnDocument(options.After)

	var rem Reminder
	err := r.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rem)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

// DeleteByUser removes every reminder of a deleted account
func (r *ReminderRepositoryImpl) DeleteByUser(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	_, err = r.Collection.DeleteMany(ctx, bson.M{"userId": oid})
	return err
}
