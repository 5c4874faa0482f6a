package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type College struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	City      string             `bson:"city" json:"city"`
	State     string             `bson:"state" json:"state"`
	Type      string             `bson:"type" json:"type"`
	Ranking   int                `bson:"ranking,omitempty" json:"ranking,omitempty"`
	Website   string             `bson:"website,omitempty" json:"website,omitempty"`
	Courses   []string           `bson:"courses" json:"courses"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// CollegeFilter narrows a college listing. Zero values match everything.
type CollegeFilter struct {
	Search string
	State  string
	Type   string
	Page
}

// CollegePatch is a partial admin update.
type CollegePatch struct {
	Name    *string   `json:"name,omitempty"`
	City    *string   `json:"city,omitempty"`
	State   *string   `json:"state,omitempty"`
	Type    *string   `json:"type,omitempty"`
	Ranking *int      `json:"ranking,omitempty"`
	Website *string   `json:"website,omitempty"`
	Courses *[]string `json:"courses,omitempty"`
}

func (p CollegePatch) Empty() bool {
	return p.Name == nil && p.City == nil && p.State == nil && p.Type == nil &&
		p.Ranking == nil && p.Website == nil && p.Courses == nil
}

func (p CollegePatch) Apply(c *College) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.City != nil {
		c.City = *p.City
	}
	if p.State != nil {
		c.State = *p.State
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Ranking != nil {
		c.Ranking = *p.Ranking
	}
	if p.Website != nil {
		c.Website = *p.Website
	}
	if p.Courses != nil {
		c.Courses = append([]string(nil), (*p.Courses)...)
	}
}
