package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
)

// CreateCollegeInput is the request body for adding a college
type CreateCollegeInput struct {
	Name    string   `json:"name" binding:"required"`
	City    string   `json:"city"`
	State   string   `json:"state"`
	Type    string   `json:"type"`
	Ranking int      `json:"ranking"`
	Website string   `json:"website"`
	Courses []string `json:"courses"`
}

// CollegeHandler serves /api/colleges.
type CollegeHandler struct {
	colleges *services.CollegeService
	log      *slog.Logger
}

func NewCollegeHandler(colleges *services.CollegeService, logger *slog.Logger) *CollegeHandler {
	return &CollegeHandler{colleges: colleges, log: logger}
}

// List returns a filtered, paginated page of colleges
func (h *CollegeHandler) List(c *gin.Context) {
	filter := models.CollegeFilter{
		Search: c.Query("search"),
		State:  c.Query("state"),
		Type:   c.Query("type"),
		Page:   pageFrom(c),
	}
	page, err := h.colleges.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get fetches a single college by its hex id
func (h *CollegeHandler) Get(c *gin.Context) {
	college, err := h.colleges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, college)
}

// Create adds a college. Admin only.
func (h *CollegeHandler) Create(c *gin.Context) {
	var input CreateCollegeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	college := &models.College{
		Name:    input.Name,
		City:    input.City,
		State:   input.State,
		Type:    input.Type,
		Ranking: input.Ranking,
		Website: input.Website,
		Courses: input.Courses,
	}
	if err := h.colleges.Create(c.Request.Context(), college); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, college)
}

// Update changes a college. Admin only.
func (h *CollegeHandler) Update(c *gin.Context) {
	var patch models.CollegePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	college, err := h.colleges.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, college)
}

// Delete removes a college. Admin only.
func (h *CollegeHandler) Delete(c *gin.Context) {
	if err := h.colleges.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
