package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"platinummotors/internal/database"
	"platinummotors/internal/models"
	"platinummotors/internal/validation"
	"platinummotors/internal/webhook"
)

type EnquiryHandler struct {
	db            *database.Database
	webhookURL    string
	webhookSecret string
}

func NewEnquiryHandler(db *database.Database, webhookURL, webhookSecret string) *EnquiryHandler {
	return &EnquiryHandler{db: db, webhookURL: webhookURL, webhookSecret: webhookSecret}
}

// SubmitEnquiry relays a contact form submission to the configured webhook
// @Summary Submit an enquiry
// @Description Accepts a contact form submission and relays it asynchronously to the dealer's enquiry webhook. Always returns 202 once validation passes.
// @Tags enquiries
// @Accept json
// @Produce json
// @Param enquiry body models.EnquiryRequest true "Enquiry data"
// @Success 202 {object} map[string]bool "success: true"
// @Failure 400 {object} map[string]string "error: Invalid request"
// @Router /api/enquiry [post]
func (h *EnquiryHandler) SubmitEnquiry(c *gin.Context) {
	var req models.EnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	name, err := validation.SanitizeText(req.Name, 60)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name"})
		return
	}
	req.Name = name

	message, err := validation.SanitizeText(req.Message, 4000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message"})
		return
	}
	req.Message = message

	// Attach the car details so the relay payload is self-contained
	payload := gin.H{
		"name":    req.Name,
		"email":   req.Email,
		"phone":   req.Phone,
		"message": req.Message,
	}
	if req.CarID > 0 {
		if car, err := h.db.GetCarByID(req.CarID); err == nil {
			payload["car"] = car.ToPublic()
		}
	}

	if h.webhookURL != "" {
		webhook.DeliverAsync(h.webhookURL, h.webhookSecret, &webhook.Event{
			Type:      "enquiry.created",
			Timestamp: time.Now().Unix(),
			Data:      payload,
		})
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
