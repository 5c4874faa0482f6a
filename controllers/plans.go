package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
)

// GeneratePlanInput is the request body for a new learning plan
type GeneratePlanInput struct {
	TargetRole    string   `json:"targetRole" binding:"required"`
	DurationWeeks *FlexInt `json:"durationWeeks"`
	Skills        []string `json:"skills"`
	CurrentLevel  string   `json:"currentLevel"`
}

// UpdatePlanInput renames a plan or ticks weeks off
type UpdatePlanInput struct {
	Title          *string `json:"title"`
	CompletedWeeks []int   `json:"completedWeeks"`
	PendingWeeks   []int   `json:"pendingWeeks"`
}

// planResponse adds the derived progress to a plan
type planResponse struct {
	*models.LearningPlan
	Progress float64 `json:"progress"`
}

func withProgress(p *models.LearningPlan) planResponse {
	return planResponse{LearningPlan: p, Progress: p.Progress()}
}

// PlanHandler serves /api/learning-plans.
type PlanHandler struct {
	plans *services.PlanService
	log   *slog.Logger
}

func NewPlanHandler(plans *services.PlanService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, log: logger}
}

// Generate drafts and stores a plan for the caller
func (h *PlanHandler) Generate(c *gin.Context) {
	var input GeneratePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	req := services.PlanRequest{
		TargetRole:   input.TargetRole,
		Skills:       input.Skills,
		CurrentLevel: input.CurrentLevel,
	}
	if input.DurationWeeks != nil {
		req.DurationWeeks = int(*input.DurationWeeks)
	}

	plan, err := h.plans.Generate(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, withProgress(plan))
}

// List returns the caller's plans, newest first
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), viewerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]planResponse, 0, len(plans))
	for i := range plans {
		out = append(out, withProgress(&plans[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches one of the caller's plans
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withProgress(plan))
}

// Update renames a plan or changes week completion
func (h *PlanHandler) Update(c *gin.Context) {
	var input UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	patch := models.PlanPatch{Title: input.Title}
	if len(input.CompletedWeeks)+len(input.PendingWeeks) > 0 {
		patch.CompletedWeeks = map[int]bool{}
		for _, w := range input.CompletedWeeks {
			patch.CompletedWeeks[w] = true
		}
		for _, w := range input.PendingWeeks {
			patch.CompletedWeeks[w] = false
		}
	}

	plan, err := h.plans.Update(c.Request.Context(), viewerFrom(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withProgress(plan))
}

// Delete removes one of the caller's plans
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.plans.Delete(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
