package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"platinummotors/internal/cache"
	"platinummotors/internal/sync"
	"platinummotors/internal/webhook"
)

type SyncHandler struct {
	orchestrator  *sync.Orchestrator
	webhookURL    string
	webhookSecret string
}

func NewSyncHandler(o *sync.Orchestrator, webhookURL, webhookSecret string) *SyncHandler {
	return &SyncHandler{
		orchestrator:  o,
		webhookURL:    webhookURL,
		webhookSecret: webhookSecret,
	}
}

// TriggerSync runs a full Autotrader sync and returns its report
// @Summary Trigger an Autotrader sync (admin)
// @Description Runs a full scrape-and-upsert pass and responds with the completed report. Returns 409 if a run is already in flight.
// @Tags admin
// @Produce json
// @Success 200 {object} models.SyncReport
// @Failure 401 {object} map[string]string "error: Authentication required"
// @Failure 409 {object} map[string]string "error: Sync already in progress"
// @Failure 500 {object} models.SyncReport "Failed run with reason"
// @Router /api/admin/autotrader/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	// A full run including image relocation should finish well inside
	// 30 minutes; the deadline only catches a wedged browser.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Minute)
	defer cancel()

	report, err := h.orchestrator.Run(ctx)
	if err != nil {
		if errors.Is(err, sync.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Sync already in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed to start"})
		return
	}

	if err := cache.SaveReport(report); err != nil {
		log.Printf("Failed to persist sync report: %v", err)
	}

	if h.webhookURL != "" {
		webhook.DeliverAsync(h.webhookURL, h.webhookSecret, &webhook.Event{
			Type:      "sync.completed",
			Timestamp: time.Now().Unix(),
			Data:      report,
		})
	}

	if !report.Success {
		c.JSON(http.StatusInternalServerError, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSyncStatus reports the current sync state and last report
// @Summary Sync status (admin)
// @Tags admin
// @Produce json
// @Success 200 {object} sync.Status
// @Failure 401 {object} map[string]string "error: Authentication required"
// @Router /api/admin/autotrader/sync/status [get]
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.Status())
}
