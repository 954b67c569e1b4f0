// controllers/admin.go
package controllers

import (
	"net/http"
	"time"

	"greetbot-backend/config"
	"greetbot-backend/models"
	"greetbot-backend/services"
	"greetbot-backend/storage"
	"greetbot-backend/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	sweeps *services.SweepService
	store  storage.ParticipantStore
	clock  *services.DayClock
}

func NewAdminController(sweeps *services.SweepService, store storage.ParticipantStore, clock *services.DayClock) *AdminController {
	return &AdminController{sweeps: sweeps, store: store, clock: clock}
}

// TriggerSweep runs a reminder pass immediately and returns its report.
func (ac *AdminController) TriggerSweep(c *gin.Context) {
	report := ac.sweeps.Sweep(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// ListParticipants returns each known participant with claim progress.
func (ac *AdminController) ListParticipants(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	ids, err := ac.store.ListIDs(ctx)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to list participants")
		return
	}

	allowed := ac.clock.AllowedCount(now)
	total := ac.clock.TotalDays()

	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		p, err := ac.store.Get(ctx, id)
		if err != nil || p == nil {
			continue
		}
		out = append(out, gin.H{
			"id":            p.ID,
			"claimed":       p.Claimed,
			"claimedCount":  len(p.Claimed),
			"lastClaimDate": p.LastClaimDate,
			"completed":     len(p.Claimed) == total,
			"canClaimNow":   len(p.Claimed) < allowed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"day":          ac.clock.DayNumber(now),
		"allowedCount": allowed,
		"participants": out,
	})
}

// ListNotifications returns the most recent notification log entries.
func (ac *AdminController) ListNotifications(c *gin.Context) {
	var logs []models.NotificationLog
	if err := config.DB.Order("sent_at DESC").Limit(100).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, logs)
}
