package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahel786/QuickHire-sub000/models"
)

// UserRepository persists users. Create returns store.ErrDuplicateEmail when
// the email is taken; lookups return store.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error)
}

// OTPRepository persists one-time passcodes. Every method is a single
// document operation.
type OTPRepository interface {
	DeleteFor(ctx context.Context, email string, purpose models.OTPPurpose) error
	Insert(ctx context.Context, rec *models.OTPRecord) error
	// Latest returns the most recently created unverified record.
	Latest(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPRecord, error)
	// ReserveAttempt counts one attempt against an unverified record whose
	// count is still below limit and returns the updated record. It returns
	// store.ErrNotFound when no such record exists.
	ReserveAttempt(ctx context.Context, id primitive.ObjectID, limit int) (*models.OTPRecord, error)
	// ReleaseAttempt gives back an attempt taken by ReserveAttempt.
	ReleaseAttempt(ctx context.Context, id primitive.ObjectID) error
	// MarkVerified flips verified on a still-unverified record and returns
	// store.ErrNotFound if another caller got there first.
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
}

type CollegeRepository interface {
	List(ctx context.Context, f models.CollegeFilter) ([]models.College, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.College, error)
	Create(ctx context.Context, c *models.College) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.CollegePatch) (*models.College, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ExperienceRepository interface {
	List(ctx context.Context, f models.ExperienceFilter) ([]models.Experience, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Experience, error)
	Create(ctx context.Context, e *models.Experience) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.ExperiencePatch) (*models.Experience, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PlanRepository interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.LearningPlan, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LearningPlan, error)
	Create(ctx context.Context, p *models.LearningPlan) error
	Replace(ctx context.Context, p *models.LearningPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
