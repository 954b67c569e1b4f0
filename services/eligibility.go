package services

import (
	"time"

	"greetbot-backend/models"
)

// EligibilityFilter decides which stored participants get the daily
// reminder. Identifiers that never contacted the bot are not candidates.
type EligibilityFilter struct {
	clock *DayClock
}

func NewEligibilityFilter(clock *DayClock) *EligibilityFilter {
	return &EligibilityFilter{clock: clock}
}

// IsReminderEligible reports whether the participant still has an unlocked,
// unclaimed greeting. The second check guards the degenerate case of a
// fully claimed catalog so completed participants are never contacted.
func (f *EligibilityFilter) IsReminderEligible(p *models.Participant, now time.Time) bool {
	if p == nil {
		return false
	}
	if len(p.Claimed) >= f.clock.AllowedCount(now) {
		return false
	}
	return len(p.Claimed) < f.clock.TotalDays()
}
