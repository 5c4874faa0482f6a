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

type Users struct {
	col *mongo.Collection
}

// Create inserts u. The unique email index turns a racing second insert into
// store.ErrDuplicateEmail.
func (r *Users) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.TechnicalSkills == nil {
		u.TechnicalSkills = []string{}
	}
	if u.InterestedRoles == nil {
		u.InterestedRoles = []string{}
	}

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Update applies patch in one findOneAndUpdate and returns the new document.
func (r *Users) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.College != nil {
		set["college"] = *patch.College
	}
	if patch.BatchYear != nil {
		set["batch_year"] = *patch.BatchYear
	}
	if patch.TechnicalSkills != nil {
		set["technical_skills"] = *patch.TechnicalSkills
	}
	if patch.InterestedRoles != nil {
		set["interested_roles"] = *patch.InterestedRoles
	}
	if patch.OnboardingCompleted != nil {
		set["onboarding_completed"] = *patch.OnboardingCompleted
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
