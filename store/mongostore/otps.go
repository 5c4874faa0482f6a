package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store"
)

// OTPs stores passcodes. Expired documents are removed by the expires_at TTL
// index created in EnsureIndexes.
type OTPs struct {
	col *mongo.Collection
}

func (r *OTPs) DeleteFor(ctx context.Context, email string, purpose models.OTPPurpose) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"email": email, "purpose": purpose})
	return err
}

func (r *OTPs) Insert(ctx context.Context, rec *models.OTPRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

func (r *OTPs) Latest(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"email": email, "purpose": purpose, "verified": false}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	var rec models.OTPRecord
	if err := r.col.FindOne(ctx, filter, opts).Decode(&rec); err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *OTPs) ReserveAttempt(ctx context.Context, id primitive.ObjectID, limit int) (*models.OTPRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "verified": false, "attempts": bson.M{"$lt": limit}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec models.OTPRecord
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"attempts": 1}}, opts).Decode(&rec)
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *OTPs) ReleaseAttempt(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "attempts": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"attempts": -1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *OTPs) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "verified": false},
		bson.M{"$set": bson.M{"verified": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
