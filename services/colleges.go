package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store"
)

// CollegeService is the college directory.
type CollegeService struct {
	repo CollegeRepository
}

func NewCollegeService(repo CollegeRepository) (*CollegeService, error) {
	if repo == nil {
		return nil, errors.New("college repository is required")
	}
	return &CollegeService{repo: repo}, nil
}

// CollegePage is one page of a college listing.
type CollegePage struct {
	Colleges []models.College `json:"colleges"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

func (s *CollegeService) List(ctx context.Context, f models.CollegeFilter) (*CollegePage, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.State = strings.TrimSpace(f.State)
	f.Type = strings.TrimSpace(f.Type)
	f.Page = f.Page.Normalize()

	colleges, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal("ListColleges", err)
	}
	return &CollegePage{Colleges: colleges, Total: total, Page: f.Page.Number, Limit: f.Page.Limit}, nil
}

func (s *CollegeService) Get(ctx context.Context, id string) (*models.College, error) {
	oid, err := parseID(id, "college")
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, repoError(err, "college", "FindCollege")
	}
	return c, nil
}

func (s *CollegeService) Create(ctx context.Context, c *models.College) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validationError("college name is required")
	}
	if c.Ranking < 0 {
		return validationError("ranking cannot be negative")
	}
	c.ID = primitive.NilObjectID
	c.Courses = CleanList(c.Courses)
	if err := s.repo.Create(ctx, c); err != nil {
		return internal("CreateCollege", err)
	}
	return nil
}

func (s *CollegeService) Update(ctx context.Context, id string, patch models.CollegePatch) (*models.College, error) {
	oid, err := parseID(id, "college")
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, validationError("no fields to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, validationError("college name cannot be empty")
	}
	if patch.Ranking != nil && *patch.Ranking < 0 {
		return nil, validationError("ranking cannot be negative")
	}
	if patch.Courses != nil {
		courses := CleanList(*patch.Courses)
		patch.Courses = &courses
	}
	c, err := s.repo.Update(ctx, oid, patch)
	if err != nil {
		return nil, repoError(err, "college", "UpdateCollege")
	}
	return c, nil
}

func (s *CollegeService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "college")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return repoError(err, "college", "DeleteCollege")
	}
	return nil
}

func parseID(hex, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validationError("invalid %s id", what)
	}
	return oid, nil
}

func repoError(err error, what, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(what)
	}
	return internal(op, err)
}
