package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"platinummotors/internal/database"
	"platinummotors/internal/models"
	"platinummotors/internal/util"
	"platinummotors/internal/validation"
)

type ReviewHandler struct {
	db *database.Database
}

func NewReviewHandler(db *database.Database) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// GetReviews returns approved reviews for the public site
// @Summary List approved reviews
// @Tags reviews
// @Produce json
// @Success 200 {array} models.Review
// @Router /api/reviews [get]
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	reviews, err := h.db.GetReviews(models.ReviewStatusApproved)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load reviews", err)
		return
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// SubmitReview accepts a public review submission
// @Summary Submit a review
// @Description Stores a review in pending state. It becomes visible once an admin approves it.
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body models.ReviewRequest true "Review data"
// @Success 201 {object} models.Review
// @Failure 400 {object} map[string]string "error: Invalid request"
// @Router /api/reviews [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	name, err := validation.SanitizeText(req.Name, 60)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name"})
		return
	}
	comment, err := validation.SanitizeText(req.Comment, 2000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment"})
		return
	}

	review := &models.Review{
		Name:    name,
		Rating:  req.Rating,
		Comment: comment,
		Status:  models.ReviewStatusPending,
	}

	if err := h.db.CreateReview(review); err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to save review", err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetAllReviews returns every review for moderation
// @Summary List all reviews (admin)
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Success 200 {array} models.Review
// @Router /api/admin/reviews [get]
func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	reviews, err := h.db.GetReviews(c.Query("status"))
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to load reviews", err)
		return
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// ModerationRequest is the admin payload for review moderation
type ModerationRequest struct {
	Status string `json:"status" binding:"required"`
}

// ModerateReview approves or rejects a review
// @Summary Moderate a review (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param moderation body ModerationRequest true "New status (approved or rejected)"
// @Success 200 {object} map[string]bool "success: true"
// @Failure 404 {object} map[string]string "error: Review not found"
// @Router /api/admin/reviews/{id} [put]
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	var req ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if err := h.db.UpdateReviewStatus(id, req.Status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteReview removes a review
// @Summary Delete a review (admin)
// @Tags admin
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} map[string]bool "success: true"
// @Failure 404 {object} map[string]string "error: Review not found"
// @Router /api/admin/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	if err := h.db.DeleteReview(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
