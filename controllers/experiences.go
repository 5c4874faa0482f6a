package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
)

// CreateExperienceInput is the request body for sharing an experience
type CreateExperienceInput struct {
	Company        string         `json:"company" binding:"required"`
	Role           string         `json:"role" binding:"required"`
	ExperienceType string         `json:"experienceType"`
	Difficulty     string         `json:"difficulty" binding:"required"`
	Outcome        string         `json:"outcome"`
	Rounds         []models.Round `json:"rounds"`
	Content        string         `json:"content" binding:"required"`
	Tips           string         `json:"tips"`
	Tags           []string       `json:"tags"`
	IsAnonymous    bool           `json:"isAnonymous"`
}

// ExperienceHandler serves /api/experiences.
type ExperienceHandler struct {
	experiences *services.ExperienceService
	log         *slog.Logger
}

func NewExperienceHandler(experiences *services.ExperienceService, logger *slog.Logger) *ExperienceHandler {
	return &ExperienceHandler{experiences: experiences, log: logger}
}

// List returns a filtered page of experiences
func (h *ExperienceHandler) List(c *gin.Context) {
	filter := models.ExperienceFilter{
		Company:     c.Query("company"),
		Role:        c.Query("role"),
		Difficulty:  c.Query("difficulty"),
		Outcome:     c.Query("outcome"),
		Search:      c.Query("search"),
		OldestFirst: strings.EqualFold(c.Query("sort"), "oldest"),
		Page:        pageFrom(c),
	}
	page, err := h.experiences.List(c.Request.Context(), viewerFrom(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Mine lists the caller's own experiences
func (h *ExperienceHandler) Mine(c *gin.Context) {
	page, err := h.experiences.Mine(c.Request.Context(), viewerFrom(c), pageFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get fetches one experience
func (h *ExperienceHandler) Get(c *gin.Context) {
	exp, err := h.experiences.Get(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// Create shares a new experience as the caller
func (h *ExperienceHandler) Create(c *gin.Context) {
	var input CreateExperienceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	exp, err := h.experiences.Create(c.Request.Context(), viewerFrom(c), services.ExperienceInput{
		Company:        input.Company,
		Role:           input.Role,
		ExperienceType: input.ExperienceType,
		Difficulty:     input.Difficulty,
		Outcome:        input.Outcome,
		Rounds:         input.Rounds,
		Content:        input.Content,
		Tips:           input.Tips,
		Tags:           input.Tags,
		IsAnonymous:    input.IsAnonymous,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

// Update edits an experience; only the author or an admin can update
func (h *ExperienceHandler) Update(c *gin.Context) {
	var patch models.ExperiencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	exp, err := h.experiences.Update(c.Request.Context(), viewerFrom(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// Delete removes an experience; only the author or an admin can delete
func (h *ExperienceHandler) Delete(c *gin.Context) {
	if err := h.experiences.Delete(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
