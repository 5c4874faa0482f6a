package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	OutcomeSelected = "selected"
	OutcomeRejected = "rejected"
	OutcomePending  = "pending"

	ExperienceInternship = "internship"
	ExperienceFullTime   = "full_time"
)

// Round is one stage of an interview process.
type Round struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

// Experience is a crowd-sourced interview report owned by UserID.
type Experience struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"-"`
	AuthorName     string             `bson:"author_name" json:"-"`
	Company        string             `bson:"company" json:"company"`
	Role           string             `bson:"role" json:"role"`
	ExperienceType string             `bson:"experience_type" json:"experienceType"`
	Difficulty     string             `bson:"difficulty" json:"difficulty"`
	Outcome        string             `bson:"outcome" json:"outcome"`
	Rounds         []Round            `bson:"rounds" json:"rounds"`
	Content        string             `bson:"content" json:"content"`
	Tips           string             `bson:"tips,omitempty" json:"tips,omitempty"`
	Tags           []string           `bson:"tags" json:"tags"`
	IsAnonymous    bool               `bson:"is_anonymous" json:"isAnonymous"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// ExperienceFilter narrows an experience listing.
type ExperienceFilter struct {
	UserID      primitive.ObjectID
	Company     string
	Role        string
	Difficulty  string
	Outcome     string
	Search      string
	OldestFirst bool
	Page
}

// ExperiencePatch is a partial owner update.
type ExperiencePatch struct {
	Company        *string   `json:"company,omitempty"`
	Role           *string   `json:"role,omitempty"`
	ExperienceType *string   `json:"experienceType,omitempty"`
	Difficulty     *string   `json:"difficulty,omitempty"`
	Outcome        *string   `json:"outcome,omitempty"`
	Rounds         *[]Round  `json:"rounds,omitempty"`
	Content        *string   `json:"content,omitempty"`
	Tips           *string   `json:"tips,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	IsAnonymous    *bool     `json:"isAnonymous,omitempty"`
}

func (p ExperiencePatch) Empty() bool {
	return p.Company == nil && p.Role == nil && p.ExperienceType == nil &&
		p.Difficulty == nil && p.Outcome == nil && p.Rounds == nil &&
		p.Content == nil && p.Tips == nil && p.Tags == nil && p.IsAnonymous == nil
}

func (p ExperiencePatch) Apply(e *Experience) {
	if p.Company != nil {
		e.Company = *p.Company
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.ExperienceType != nil {
		e.ExperienceType = *p.ExperienceType
	}
	if p.Difficulty != nil {
		e.Difficulty = *p.Difficulty
	}
	if p.Outcome != nil {
		e.Outcome = *p.Outcome
	}
	if p.Rounds != nil {
		e.Rounds = append([]Round(nil), (*p.Rounds)...)
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Tips != nil {
		e.Tips = *p.Tips
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsAnonymous != nil {
		e.IsAnonymous = *p.IsAnonymous
	}
}

// ExperienceView is the client representation of an Experience. Anonymous
// posts hide their owner from everyone but the owner.
type ExperienceView struct {
	Experience
	UserID     string `json:"userId,omitempty"`
	AuthorName string `json:"authorName,omitempty"`
	IsOwner    bool   `json:"isOwner"`
}

// View renders e for viewer. A zero viewer is an anonymous reader.
func (e Experience) View(viewer primitive.ObjectID) ExperienceView {
	v := ExperienceView{Experience: e}
	v.IsOwner = !viewer.IsZero() && viewer == e.UserID
	if !e.IsAnonymous || v.IsOwner {
		v.UserID = e.UserID.Hex()
		v.AuthorName = e.AuthorName
	}
	return v
}
