// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rahel786/QuickHire-sub000/store"
)

// Collection names.
const (
	UsersCollection       = "users"
	OTPsCollection        = "otps"
	CollegesCollection    = "colleges"
	ExperiencesCollection = "experiences"
	PlansCollection       = "learning_plans"
)

// opTimeout bounds every single database call.
const opTimeout = 5 * time.Second

// Store bundles one repository per collection of db.
type Store struct {
	Users       *Users
	OTPs        *OTPs
	Colleges    *Colleges
	Experiences *Experiences
	Plans       *Plans
}

func New(db *mongo.Database) *Store {
	return &Store{
		Users:       &Users{col: db.Collection(UsersCollection)},
		OTPs:        &OTPs{col: db.Collection(OTPsCollection)},
		Colleges:    &Colleges{col: db.Collection(CollegesCollection)},
		Experiences: &Experiences{col: db.Collection(ExperiencesCollection)},
		Plans:       &Plans{col: db.Collection(PlansCollection)},
	}
}

// EnsureIndexes creates the unique email index and the TTL index that lets
// the server reap expired passcodes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(OTPsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "purpose", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("email_purpose_created"),
		},
	}); err != nil {
		return err
	}

	if _, err := db.Collection(ExperiencesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "company", Value: 1}}},
	}); err != nil {
		return err
	}

	if _, err := db.Collection(PlansCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return err
	}

	_, err := db.Collection(CollegesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ranking", Value: 1}, {Key: "name", Value: 1}},
	})
	return err
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// fold builds a case-insensitive substring match.
func fold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// exactFold builds a case-insensitive whole-value match.
func exactFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, sort bson.D, skip, limit int) ([]T, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(sort).SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
