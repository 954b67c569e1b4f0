// controllers/participant.go
package controllers

import (
	"net/http"
	"time"

	"greetbot-backend/services"
	"greetbot-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	startMessage      = "Hi! One greeting unlocks every day of the event. Pick any you haven't claimed yet 🎁"
	thankYouMessage   = "Thank you! Come back tomorrow for the next one."
	finalMessage      = "That was the last greeting — thanks for playing, and happy holidays! 🎉"
	notStartedMessage = "The event hasn't started yet. Come back soon!"
	limitMessage      = "That greeting isn't available yet. Come back later!"
)

// ClaimInput defines the expected JSON structure for a claim.
// Index is a pointer so 0 survives required-field binding.
type ClaimInput struct {
	Index *int `json:"index" binding:"required"`
}

type ParticipantController struct {
	claims   *services.ClaimService
	clock    *services.DayClock
	notifier services.Notifier
	log      *zap.Logger
}

func NewParticipantController(claims *services.ClaimService, clock *services.DayClock, notifier services.Notifier, log *zap.Logger) *ParticipantController {
	return &ParticipantController{claims: claims, clock: clock, notifier: notifier, log: log}
}

// Start registers the participant on first contact and returns the greeting
// menu, or the closing state once everything is claimed.
func (pc *ParticipantController) Start(c *gin.Context) {
	id := c.Param("id")
	now := time.Now()

	offers, err := pc.claims.Register(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		return
	}

	if len(offers) == 0 && pc.clock.DayNumber(now) >= pc.clock.TotalDays() {
		c.JSON(http.StatusOK, gin.H{
			"status":  "complete",
			"message": finalMessage,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "active",
		"message":      startMessage,
		"greetings":    offers,
		"allowedCount": pc.clock.AllowedCount(now),
	})
}

// Greetings returns the still-unclaimed catalog entries for the participant.
func (pc *ParticipantController) Greetings(c *gin.Context) {
	offers, err := pc.claims.OfferableRewards(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"greetings": offers})
}

// Claim validates and applies one greeting selection. Every outcome maps to
// its own response; only a persistence failure is reported as an error.
func (pc *ParticipantController) Claim(c *gin.Context) {
	id := c.Param("id")

	var input ClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	now := time.Now()
	if !pc.clock.EventStarted(now) {
		pc.notify(c, id, services.KindEventNotStarted, notStartedMessage)
		c.JSON(http.StatusConflict, gin.H{
			"outcome": "event_not_started",
			"message": notStartedMessage,
		})
		return
	}

	res, err := pc.claims.AttemptClaim(c.Request.Context(), id, *input.Index, now)
	if err != nil {
		pc.log.Error("claim did not persist", zap.String("participant", id), zap.Error(err))
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Claim could not be saved, please try again")
		return
	}

	switch res.Outcome {
	case services.OutcomeInvalidIndex:
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown greeting index")

	case services.OutcomeAlreadyClaimed:
		c.JSON(http.StatusConflict, gin.H{
			"outcome": res.Outcome,
			"message": "That greeting was already claimed.",
		})

	case services.OutcomeDailyLimitReached:
		pc.notify(c, id, services.KindDailyLimitReached, limitMessage)
		c.JSON(http.StatusConflict, gin.H{
			"outcome": res.Outcome,
			"message": limitMessage,
		})

	case services.OutcomeClaimed:
		pc.notify(c, id, services.KindClaimConfirmation, res.RewardText)
		message := thankYouMessage
		if res.RemainingTotal == 0 {
			pc.notify(c, id, services.KindEventComplete, finalMessage)
			message = finalMessage
		}
		c.JSON(http.StatusOK, gin.H{
			"outcome":        res.Outcome,
			"greeting":       res.RewardText,
			"message":        message,
			"remainingToday": res.RemainingToday,
			"remainingTotal": res.RemainingTotal,
		})
	}
}

// notify delivers best-effort; the claim already holds its own outcome.
func (pc *ParticipantController) notify(c *gin.Context, id string, kind services.MessageKind, payload string) {
	if err := pc.notifier.Notify(c.Request.Context(), id, kind, payload); err != nil {
		pc.log.Warn("notification failed",
			zap.String("participant", id),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
