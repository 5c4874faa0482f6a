package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahel786/QuickHire-sub000/models"
)

// Viewer is the caller of a resource operation. A zero Viewer is an
// unauthenticated reader.
type Viewer struct {
	UserID primitive.ObjectID
	Role   string
}

// ViewerFrom builds a Viewer from a hex user id and role.
func ViewerFrom(userID, role string) Viewer {
	id, _ := primitive.ObjectIDFromHex(userID)
	return Viewer{UserID: id, Role: role}
}

func (v Viewer) anonymous() bool { return v.UserID.IsZero() }

func (v Viewer) owns(owner primitive.ObjectID) bool {
	return !v.anonymous() && v.UserID == owner
}

// ExperienceService is the interview-experience board.
type ExperienceService struct {
	repo  ExperienceRepository
	creds *Credentials
}

func NewExperienceService(repo ExperienceRepository, creds *Credentials) (*ExperienceService, error) {
	if repo == nil {
		return nil, errors.New("experience repository is required")
	}
	if creds == nil {
		return nil, errors.New("credential store is required")
	}
	return &ExperienceService{repo: repo, creds: creds}, nil
}

// ExperiencePage is one page of an experience listing.
type ExperiencePage struct {
	Experiences []models.ExperienceView `json:"experiences"`
	Total       int64                   `json:"total"`
	Page        int                     `json:"page"`
	Limit       int                     `json:"limit"`
}

// ExperienceInput carries a new experience.
type ExperienceInput struct {
	Company        string
	Role           string
	ExperienceType string
	Difficulty     string
	Outcome        string
	Rounds         []models.Round
	Content        string
	Tips           string
	Tags           []string
	IsAnonymous    bool
}

func (s *ExperienceService) List(ctx context.Context, viewer Viewer, f models.ExperienceFilter) (*ExperiencePage, error) {
	f.Company = strings.TrimSpace(f.Company)
	f.Role = strings.TrimSpace(f.Role)
	f.Search = strings.TrimSpace(f.Search)
	f.Difficulty = strings.ToLower(strings.TrimSpace(f.Difficulty))
	f.Outcome = strings.ToLower(strings.TrimSpace(f.Outcome))
	if f.Difficulty != "" && !validDifficulty(f.Difficulty) {
		return nil, validationError("invalid difficulty %q", f.Difficulty)
	}
	if f.Outcome != "" && !validOutcome(f.Outcome) {
		return nil, validationError("invalid outcome %q", f.Outcome)
	}
	f.Page = f.Page.Normalize()

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal("ListExperiences", err)
	}
	views := make([]models.ExperienceView, 0, len(items))
	for _, e := range items {
		views = append(views, e.View(viewer.UserID))
	}
	return &ExperiencePage{Experiences: views, Total: total, Page: f.Page.Number, Limit: f.Page.Limit}, nil
}

// Mine lists the viewer's own experiences.
func (s *ExperienceService) Mine(ctx context.Context, viewer Viewer, page models.Page) (*ExperiencePage, error) {
	if viewer.anonymous() {
		return nil, unauthorized()
	}
	return s.List(ctx, viewer, models.ExperienceFilter{UserID: viewer.UserID, Page: page})
}

func (s *ExperienceService) Get(ctx context.Context, viewer Viewer, id string) (*models.ExperienceView, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	v := e.View(viewer.UserID)
	return &v, nil
}

func (s *ExperienceService) Create(ctx context.Context, viewer Viewer, in ExperienceInput) (*models.ExperienceView, error) {
	if viewer.anonymous() {
		return nil, unauthorized()
	}
	author, err := s.creds.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	e := &models.Experience{
		UserID:         viewer.UserID,
		AuthorName:     author.Name,
		Company:        strings.TrimSpace(in.Company),
		Role:           strings.TrimSpace(in.Role),
		ExperienceType: strings.ToLower(strings.TrimSpace(in.ExperienceType)),
		Difficulty:     strings.ToLower(strings.TrimSpace(in.Difficulty)),
		Outcome:        strings.ToLower(strings.TrimSpace(in.Outcome)),
		Rounds:         cleanRounds(in.Rounds),
		Content:        strings.TrimSpace(in.Content),
		Tips:           strings.TrimSpace(in.Tips),
		Tags:           CleanList(in.Tags),
		IsAnonymous:    in.IsAnonymous,
	}
	if e.ExperienceType == "" {
		e.ExperienceType = models.ExperienceFullTime
	}
	if e.Outcome == "" {
		e.Outcome = models.OutcomePending
	}
	if err := validateExperience(e); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, internal("CreateExperience", err)
	}
	v := e.View(viewer.UserID)
	return &v, nil
}

func (s *ExperienceService) Update(ctx context.Context, viewer Viewer, id string, patch models.ExperiencePatch) (*models.ExperienceView, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(viewer, existing, "only the author can modify this experience"); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, validationError("no fields to update")
	}
	if patch.Rounds != nil {
		rounds := cleanRounds(*patch.Rounds)
		patch.Rounds = &rounds
	}
	if patch.Tags != nil {
		tags := CleanList(*patch.Tags)
		patch.Tags = &tags
	}
	for _, field := range []*string{patch.Difficulty, patch.Outcome, patch.ExperienceType} {
		if field != nil {
			*field = strings.ToLower(strings.TrimSpace(*field))
		}
	}

	merged := *existing
	patch.Apply(&merged)
	if err := validateExperience(&merged); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, existing.ID, patch)
	if err != nil {
		return nil, repoError(err, "experience", "UpdateExperience")
	}
	v := updated.View(viewer.UserID)
	return &v, nil
}

func (s *ExperienceService) Delete(ctx context.Context, viewer Viewer, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(viewer, existing, "only the author can delete this experience"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return repoError(err, "experience", "DeleteExperience")
	}
	return nil
}

func (s *ExperienceService) find(ctx context.Context, id string) (*models.Experience, error) {
	oid, err := parseID(id, "experience")
	if err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, repoError(err, "experience", "FindExperience")
	}
	return e, nil
}

func (s *ExperienceService) authorize(viewer Viewer, e *models.Experience, msg string) error {
	if viewer.anonymous() {
		return unauthorized()
	}
	if viewer.owns(e.UserID) || viewer.Role == models.RoleAdmin {
		return nil
	}
	return forbidden(msg)
}

func validateExperience(e *models.Experience) error {
	switch {
	case e.Company == "":
		return validationError("company is required")
	case e.Role == "":
		return validationError("role is required")
	case e.Content == "":
		return validationError("content is required")
	case !validDifficulty(e.Difficulty):
		return validationError("difficulty must be easy, medium or hard")
	case !validOutcome(e.Outcome):
		return validationError("outcome must be selected, rejected or pending")
	case e.ExperienceType != models.ExperienceInternship && e.ExperienceType != models.ExperienceFullTime:
		return validationError("experience type must be internship or full_time")
	}
	return nil
}

func validDifficulty(d string) bool {
	return d == models.DifficultyEasy || d == models.DifficultyMedium || d == models.DifficultyHard
}

func validOutcome(o string) bool {
	return o == models.OutcomeSelected || o == models.OutcomeRejected || o == models.OutcomePending
}

func cleanRounds(in []models.Round) []models.Round {
	out := make([]models.Round, 0, len(in))
	for _, r := range in {
		r.Name = strings.TrimSpace(r.Name)
		r.Description = strings.TrimSpace(r.Description)
		if r.Name == "" && r.Description == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
