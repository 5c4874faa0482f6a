package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanWeek is one week of a learning plan.
type PlanWeek struct {
	Week      int      `bson:"week" json:"week"`
	Focus     string   `bson:"focus" json:"focus"`
	Topics    []string `bson:"topics" json:"topics"`
	Resources []string `bson:"resources" json:"resources"`
	Completed bool     `bson:"completed" json:"completed"`
}

type LearningPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	Title         string             `bson:"title" json:"title"`
	TargetRole    string             `bson:"target_role" json:"targetRole"`
	DurationWeeks int                `bson:"duration_weeks" json:"durationWeeks"`
	Skills        []string           `bson:"skills" json:"skills"`
	Weeks         []PlanWeek         `bson:"weeks" json:"weeks"`
	Generated     bool               `bson:"generated" json:"generated"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Progress returns the fraction of completed weeks in [0, 1].
func (p *LearningPlan) Progress() float64 {
	if len(p.Weeks) == 0 {
		return 0
	}
	done := 0
	for _, w := range p.Weeks {
		if w.Completed {
			done++
		}
	}
	return float64(done) / float64(len(p.Weeks))
}

// PlanPatch is a partial owner update. CompletedWeeks maps week numbers to
// their new completion flag.
type PlanPatch struct {
	Title          *string      `json:"title,omitempty"`
	CompletedWeeks map[int]bool `json:"completedWeeks,omitempty"`
}

func (p PlanPatch) Empty() bool {
	return p.Title == nil && len(p.CompletedWeeks) == 0
}

func (p PlanPatch) Apply(plan *LearningPlan) {
	if p.Title != nil {
		plan.Title = *p.Title
	}
	for i := range plan.Weeks {
		if done, ok := p.CompletedWeeks[plan.Weeks[i].Week]; ok {
			plan.Weeks[i].Completed = done
		}
	}
}
