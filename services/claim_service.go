package services

import (
	"context"
	"time"

	"greetbot-backend/config"
	"greetbot-backend/models"
	"greetbot-backend/storage"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ClaimOutcome string

const (
	OutcomeClaimed           ClaimOutcome = "claimed"
	OutcomeInvalidIndex      ClaimOutcome = "invalid_index"
	OutcomeDailyLimitReached ClaimOutcome = "daily_limit_reached"
	OutcomeAlreadyClaimed    ClaimOutcome = "already_claimed"
)

// ClaimResult reports one claim attempt. RewardText and the remaining
// counters are only meaningful for OutcomeClaimed.
type ClaimResult struct {
	Outcome        ClaimOutcome `json:"outcome"`
	RewardText     string       `json:"rewardText,omitempty"`
	RemainingToday int          `json:"remainingToday"`
	RemainingTotal int          `json:"remainingTotal"`
}

// Offer is one entry of the greeting menu: still-unclaimed, in catalog order.
type Offer struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// How many times a claim re-reads and retries after losing a write race.
const claimRetries = 3

// ClaimService is the only code that mutates a participant's claimed set.
// Per-participant serialization comes from the store's compare-and-update;
// claims for distinct participants proceed fully in parallel.
type ClaimService struct {
	store   storage.ParticipantStore
	clock   *DayClock
	catalog []config.Greeting
	log     *zap.Logger
}

func NewClaimService(store storage.ParticipantStore, clock *DayClock, cfg *config.EventConfig, log *zap.Logger) *ClaimService {
	return &ClaimService{store: store, clock: clock, catalog: cfg.Greetings, log: log}
}

// AttemptClaim validates and applies one claim. Checks run in a fixed
// order; the first failing one decides the outcome:
//  1. index outside the catalog
//  2. index already claimed (a re-tap stays AlreadyClaimed even when the
//     participant is at quota)
//  3. everything unlocked so far already claimed (count gate only — any
//     unclaimed index passes while the participant is under quota)
//
// A returned error means the claim did not persist; no rejection outcome
// ever writes anything.
func (s *ClaimService) AttemptClaim(ctx context.Context, participantID string, index int, now time.Time) (ClaimResult, error) {
	if index < 0 || index >= len(s.catalog) {
		return ClaimResult{Outcome: OutcomeInvalidIndex}, nil
	}

	for attempt := 1; attempt <= claimRetries; attempt++ {
		p, err := s.ensureParticipant(ctx, participantID)
		if err != nil {
			return ClaimResult{}, err
		}

		if p.Claimed.Contains(index) {
			return ClaimResult{Outcome: OutcomeAlreadyClaimed}, nil
		}
		allowed := s.clock.AllowedCount(now)
		if len(p.Claimed) >= allowed {
			return ClaimResult{Outcome: OutcomeDailyLimitReached}, nil
		}

		claimed := p.Claimed.With(index)
		claimDate := civilDate(now)
		err = s.store.CompareAndUpdate(ctx, p, claimed, &claimDate)
		if errors.Is(err, storage.ErrConflict) {
			s.log.Debug("claim lost a write race, retrying",
				zap.String("participant", participantID),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return ClaimResult{}, err
		}

		return ClaimResult{
			Outcome:        OutcomeClaimed,
			RewardText:     s.catalog[index].Text,
			RemainingToday: allowed - len(claimed),
			RemainingTotal: len(s.catalog) - len(claimed),
		}, nil
	}
	return ClaimResult{}, errors.Wrapf(storage.ErrConflict, "claim for %s gave up after %d attempts", participantID, claimRetries)
}

// Register creates the participant on first contact and returns the current
// greeting menu.
func (s *ClaimService) Register(ctx context.Context, participantID string) ([]Offer, error) {
	if _, err := s.ensureParticipant(ctx, participantID); err != nil {
		return nil, err
	}
	return s.OfferableRewards(ctx, participantID)
}

// OfferableRewards lists every catalog entry the participant has not
// claimed, in catalog order. The menu may show entries that are not yet
// unlocked; the count gate in AttemptClaim is what actually blocks them.
func (s *ClaimService) OfferableRewards(ctx context.Context, participantID string) ([]Offer, error) {
	p, err := s.store.Get(ctx, participantID)
	if err != nil {
		return nil, err
	}
	var claimed models.ClaimedSet
	if p != nil {
		claimed = p.Claimed
	}

	offers := make([]Offer, 0, len(s.catalog))
	for i, g := range s.catalog {
		if claimed.Contains(i) {
			continue
		}
		offers = append(offers, Offer{Index: i, Label: g.Label})
	}
	return offers, nil
}

func (s *ClaimService) ensureParticipant(ctx context.Context, id string) (*models.Participant, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return s.store.Create(ctx, id)
}
