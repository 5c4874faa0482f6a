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

type Colleges struct {
	col *mongo.Collection
}

func (r *Colleges) List(ctx context.Context, f models.CollegeFilter) ([]models.College, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": fold(f.Search)},
			bson.M{"city": fold(f.Search)},
		}
	}
	if f.State != "" {
		filter["state"] = exactFold(f.State)
	}
	if f.Type != "" {
		filter["type"] = exactFold(f.Type)
	}
	page := f.Page.Normalize()
	sort := bson.D{{Key: "ranking", Value: 1}, {Key: "name", Value: 1}}
	return findPage[models.College](ctx, r.col, filter, sort, page.Skip(), page.Limit)
}

func (r *Colleges) FindByID(ctx context.Context, id primitive.ObjectID) (*models.College, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c models.College
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *Colleges) Create(ctx context.Context, c *models.College) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *Colleges) Update(ctx context.Context, id primitive.ObjectID, patch models.CollegePatch) (*models.College, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.City != nil {
		set["city"] = *patch.City
	}
	if patch.State != nil {
		set["state"] = *patch.State
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Ranking != nil {
		set["ranking"] = *patch.Ranking
	}
	if patch.Website != nil {
		set["website"] = *patch.Website
	}
	if patch.Courses != nil {
		set["courses"] = *patch.Courses
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.College
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *Colleges) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id)
}

type Experiences struct {
	col *mongo.Collection
}

func (r *Experiences) List(ctx context.Context, f models.ExperienceFilter) ([]models.Experience, int64, error) {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["user_id"] = f.UserID
	}
	if f.Company != "" {
		filter["company"] = fold(f.Company)
	}
	if f.Role != "" {
		filter["role"] = fold(f.Role)
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.Outcome != "" {
		filter["outcome"] = f.Outcome
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"company": fold(f.Search)},
			bson.M{"role": fold(f.Search)},
			bson.M{"content": fold(f.Search)},
		}
	}
	order := -1
	if f.OldestFirst {
		order = 1
	}
	page := f.Page.Normalize()
	sort := bson.D{{Key: "created_at", Value: order}, {Key: "_id", Value: order}}
	return findPage[models.Experience](ctx, r.col, filter, sort, page.Skip(), page.Limit)
}

func (r *Experiences) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Experience, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var e models.Experience
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *Experiences) Create(ctx context.Context, e *models.Experience) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *Experiences) Update(ctx context.Context, id primitive.ObjectID, patch models.ExperiencePatch) (*models.Experience, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Company != nil {
		set["company"] = *patch.Company
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.ExperienceType != nil {
		set["experience_type"] = *patch.ExperienceType
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.Outcome != nil {
		set["outcome"] = *patch.Outcome
	}
	if patch.Rounds != nil {
		set["rounds"] = *patch.Rounds
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Tips != nil {
		set["tips"] = *patch.Tips
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.IsAnonymous != nil {
		set["is_anonymous"] = *patch.IsAnonymous
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Experience
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *Experiences) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id)
}

type Plans struct {
	col *mongo.Collection
}

func (r *Plans) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.LearningPlan, error) {
	plans, _, err := findPage[models.LearningPlan](ctx, r.col,
		bson.M{"user_id": userID},
		bson.D{{Key: "created_at", Value: -1}},
		0, 0)
	return plans, err
}

func (r *Plans) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LearningPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p models.LearningPlan
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *Plans) Create(ctx context.Context, p *models.LearningPlan) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *Plans) Replace(ctx context.Context, p *models.LearningPlan) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Plans) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id)
}

func deleteByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
