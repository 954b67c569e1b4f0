// services/sweep_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"greetbot-backend/config"
	"greetbot-backend/storage"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderMessage is what eligible participants receive each morning.
const ReminderMessage = "A new day brings a new greeting! Come claim it 🤗"

type SweepFailure struct {
	ParticipantID string `json:"participantId"`
	Error         string `json:"error"`
}

// SweepReport is the per-trigger account of one reminder pass. Failures are
// collected, never propagated; one participant can't stop the rest.
type SweepReport struct {
	StartedAt time.Time      `json:"startedAt"`
	Total     int            `json:"total"`
	Eligible  int            `json:"eligible"`
	Notified  int            `json:"notified"`
	Failures  []SweepFailure `json:"failures"`
}

// SweepService fires the reminder pass once per day at the configured local
// time. It holds no business state of its own.
type SweepService struct {
	store    storage.ParticipantStore
	filter   *EligibilityFilter
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewSweepService(store storage.ParticipantStore, filter *EligibilityFilter, notifier Notifier, log *zap.Logger) *SweepService {
	return &SweepService{
		store:    store,
		filter:   filter,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// StartScheduler registers the daily trigger in the event's civil timezone,
// so DST transitions follow the local wall clock. Cron runs each job on its
// own goroutine; a slow sweep never delays the next day's trigger.
func (s *SweepService) StartScheduler(cfg *config.EventConfig) error {
	c := cron.New(cron.WithLocation(cfg.Location()))

	spec := fmt.Sprintf("%d %d * * *", cfg.Reminder.Minute, cfg.Reminder.Hour)
	_, err := c.AddFunc(spec, func() {
		report := s.Sweep(context.Background())
		s.log.Info("daily reminder sweep finished",
			zap.Int("total", report.Total),
			zap.Int("eligible", report.Eligible),
			zap.Int("notified", report.Notified),
			zap.Int("failed", len(report.Failures)))
	})
	if err != nil {
		return errors.Wrap(err, "schedule reminder sweep")
	}

	c.Start()
	s.cron = c
	s.log.Info("reminder scheduler started",
		zap.String("spec", spec),
		zap.String("timezone", cfg.Reminder.Timezone))
	return nil
}

func (s *SweepService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep enumerates every known participant and reminds the eligible ones.
func (s *SweepService) Sweep(ctx context.Context) SweepReport {
	now := s.now()
	report := SweepReport{StartedAt: now}

	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		s.log.Error("sweep could not list participants", zap.Error(err))
		report.Failures = append(report.Failures, SweepFailure{Error: err.Error()})
		return report
	}
	report.Total = len(ids)

	for _, id := range ids {
		p, err := s.store.Get(ctx, id)
		if err != nil {
			report.Failures = append(report.Failures, SweepFailure{ParticipantID: id, Error: err.Error()})
			continue
		}
		if !s.filter.IsReminderEligible(p, now) {
			continue
		}
		report.Eligible++

		if err := s.notifier.Notify(ctx, id, KindReminderAvailable, ReminderMessage); err != nil {
			s.log.Warn("reminder delivery failed",
				zap.String("participant", id),
				zap.Error(err))
			report.Failures = append(report.Failures, SweepFailure{ParticipantID: id, Error: err.Error()})
			continue
		}
		report.Notified++
	}
	return report
}
