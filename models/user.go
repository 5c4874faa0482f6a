package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold.
const (
	RoleStudent      = "student"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
	RoleRecruiter    = "recruiter"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleProfessional, RoleAdmin, RoleRecruiter:
		return true
	}
	return false
}

// User is a stored account. PasswordHash never leaves the server.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	PasswordHash        string             `bson:"password_hash" json:"-"`
	Role                string             `bson:"role" json:"role"`
	College             string             `bson:"college,omitempty" json:"college,omitempty"`
	BatchYear           int                `bson:"batch_year,omitempty" json:"batchYear,omitempty"`
	YearsExperience     *int               `bson:"years_experience,omitempty" json:"yearsExperience,omitempty"`
	CompanyName         string             `bson:"company_name,omitempty" json:"companyName,omitempty"`
	TechnicalSkills     []string           `bson:"technical_skills" json:"technicalSkills"`
	InterestedRoles     []string           `bson:"interested_roles" json:"interestedRoles"`
	OnboardingCompleted bool               `bson:"onboarding_completed" json:"onboardingCompleted"`
	IsActive            bool               `bson:"is_active" json:"isActive"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// UserPatch is a partial update. Nil fields are left untouched.
// Password carries plaintext and must be turned into PasswordHash before it
// reaches a repository.
type UserPatch struct {
	Name                *string
	College             *string
	BatchYear           *int
	TechnicalSkills     *[]string
	InterestedRoles     *[]string
	OnboardingCompleted *bool
	IsActive            *bool
	Password            *string
	PasswordHash        *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.College == nil && p.BatchYear == nil &&
		p.TechnicalSkills == nil && p.InterestedRoles == nil &&
		p.OnboardingCompleted == nil && p.IsActive == nil &&
		p.Password == nil && p.PasswordHash == nil
}

// Apply copies the set fields of p onto u. Password is ignored.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.College != nil {
		u.College = *p.College
	}
	if p.BatchYear != nil {
		u.BatchYear = *p.BatchYear
	}
	if p.TechnicalSkills != nil {
		u.TechnicalSkills = append([]string(nil), (*p.TechnicalSkills)...)
	}
	if p.InterestedRoles != nil {
		u.InterestedRoles = append([]string(nil), (*p.InterestedRoles)...)
	}
	if p.OnboardingCompleted != nil {
		u.OnboardingCompleted = *p.OnboardingCompleted
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}
