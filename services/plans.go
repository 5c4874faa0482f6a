package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

const (
	MinPlanWeeks = 1
	MaxPlanWeeks = 52
)

// PlanService generates and manages learning plans. Plans are private to
// their owner.
type PlanService struct {
	repo      PlanRepository
	generator PlanGenerator
	log       *slog.Logger
}

// NewPlanService wires a plan store to a generator. A nil generator means
// every plan is a skeleton plan.
func NewPlanService(repo PlanRepository, generator PlanGenerator, logger *slog.Logger) (*PlanService, error) {
	if repo == nil {
		return nil, errors.New("plan repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{repo: repo, generator: generator, log: logger.With("component", "plans")}, nil
}

// Generate drafts a plan for req and stores it for the viewer. Generator
// failures degrade to SkeletonPlan.
func (s *PlanService) Generate(ctx context.Context, viewer Viewer, req PlanRequest) (*models.LearningPlan, error) {
	if viewer.anonymous() {
		return nil, unauthorized()
	}
	req.TargetRole = strings.TrimSpace(req.TargetRole)
	req.CurrentLevel = strings.TrimSpace(req.CurrentLevel)
	req.Skills = CleanList(req.Skills)
	if req.TargetRole == "" {
		return nil, validationError("target role is required")
	}
	if req.DurationWeeks == 0 {
		req.DurationWeeks = 8
	}
	if req.DurationWeeks < MinPlanWeeks || req.DurationWeeks > MaxPlanWeeks {
		return nil, validationError("duration must be between %d and %d weeks", MinPlanWeeks, MaxPlanWeeks)
	}

	draft, generated := s.draft(ctx, req)
	title := draft.Title
	if title == "" {
		title = SkeletonPlan(req).Title
	}

	plan := &models.LearningPlan{
		UserID:        viewer.UserID,
		Title:         title,
		TargetRole:    req.TargetRole,
		DurationWeeks: len(draft.Weeks),
		Skills:        req.Skills,
		Weeks:         draft.Weeks,
		Generated:     generated,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, internal("CreatePlan", err)
	}
	return plan, nil
}

func (s *PlanService) draft(ctx context.Context, req PlanRequest) (*GeneratedPlan, bool) {
	if s.generator == nil {
		return SkeletonPlan(req), false
	}
	plan, err := s.generator.Generate(ctx, req)
	if err != nil {
		utils.LogError(s.log, "plan generation failed, using skeleton plan", err)
		return SkeletonPlan(req), false
	}
	return plan, true
}

func (s *PlanService) List(ctx context.Context, viewer Viewer) ([]models.LearningPlan, error) {
	if viewer.anonymous() {
		return nil, unauthorized()
	}
	plans, err := s.repo.ListByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, internal("ListPlans", err)
	}
	return plans, nil
}

func (s *PlanService) Get(ctx context.Context, viewer Viewer, id string) (*models.LearningPlan, error) {
	if viewer.anonymous() {
		return nil, unauthorized()
	}
	oid, err := parseID(id, "learning plan")
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, repoError(err, "learning plan", "FindPlan")
	}
	// Someone else's plan reads as missing.
	if !viewer.owns(plan.UserID) {
		return nil, notFound("learning plan")
	}
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, viewer Viewer, id string, patch models.PlanPatch) (*models.LearningPlan, error) {
	plan, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, validationError("no fields to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("title cannot be empty")
		}
		patch.Title = &title
	}
	for week := range patch.CompletedWeeks {
		if week < 1 || week > len(plan.Weeks) {
			return nil, validationError("week %d is not part of this plan", week)
		}
	}

	patch.Apply(plan)
	if err := s.repo.Replace(ctx, plan); err != nil {
		return nil, repoError(err, "learning plan", "ReplacePlan")
	}
	return plan, nil
}

func (s *PlanService) Delete(ctx context.Context, viewer Viewer, id string) error {
	plan, err := s.Get(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, plan.ID); err != nil {
		return repoError(err, "learning plan", "DeletePlan")
	}
	return nil
}
