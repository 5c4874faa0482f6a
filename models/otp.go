package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPPurpose scopes a code to the flow that issued it.
type OTPPurpose string

const (
	PurposeRegistration  OTPPurpose = "registration"
	PurposePasswordReset OTPPurpose = "password_reset"
)

// Valid reports whether p is a known purpose.
func (p OTPPurpose) Valid() bool {
	return p == PurposeRegistration || p == PurposePasswordReset
}

const (
	// OTPMaxAttempts is the number of wrong guesses after which a record is dead.
	OTPMaxAttempts = 5
	// OTPDefaultTTL is how long an issued code stays valid.
	OTPDefaultTTL = 10 * time.Minute
)

// OTPRecord binds an email and purpose to a short-lived code. It is keyed on
// the email, not a user id, because registration codes exist before the user.
type OTPRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"code" json:"-"`
	Purpose   OTPPurpose         `bson:"purpose" json:"purpose"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expiresAt"`
	Verified  bool               `bson:"verified" json:"verified"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Expired reports whether the record is past its expiry at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
