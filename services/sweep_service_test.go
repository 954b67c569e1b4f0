package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"greetbot-backend/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []string
	failID string
}

func (f *fakeNotifier) Notify(ctx context.Context, participantID string, kind MessageKind, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if participantID == f.failID {
		return errors.New("delivery refused")
	}
	f.sent = append(f.sent, participantID)
	return nil
}

func newSweepService(t *testing.T, store *memStore, notifier Notifier, now time.Time) *SweepService {
	t.Helper()
	filter := NewEligibilityFilter(NewDayClock(testEventConfig(t)))
	svc := NewSweepService(store, filter, notifier, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

// One failing participant never stops the rest of the sweep.
func TestSweepIsolatesFailures(t *testing.T) {
	store := newMemStore()
	store.seed("ok-1", models.ClaimedSet{})
	store.seed("bad", models.ClaimedSet{})
	store.seed("ok-2", models.ClaimedSet{0})
	store.seed("done", models.ClaimedSet{0, 1, 2, 3, 4})

	notifier := &fakeNotifier{failID: "bad"}
	svc := newSweepService(t, store, notifier, at(2024, time.December, 18, 10, 0))

	report := svc.Sweep(context.Background())

	require.Equal(t, 4, report.Total)
	require.Equal(t, 3, report.Eligible)
	require.Equal(t, 2, report.Notified)
	require.Len(t, report.Failures, 1)
	require.Equal(t, "bad", report.Failures[0].ParticipantID)

	require.ElementsMatch(t, []string{"ok-1", "ok-2"}, notifier.sent)
	require.NotContains(t, notifier.sent, "done")
}

func TestSweepBeforeEventNotifiesNobody(t *testing.T) {
	store := newMemStore()
	store.seed("early", models.ClaimedSet{})

	notifier := &fakeNotifier{}
	svc := newSweepService(t, store, notifier, at(2024, time.December, 10, 10, 0))

	report := svc.Sweep(context.Background())
	require.Equal(t, 1, report.Total)
	require.Equal(t, 0, report.Eligible)
	require.Empty(t, notifier.sent)
}

func TestSweepRecordsStorageFailures(t *testing.T) {
	store := newMemStore()
	store.failGets = true
	store.seed("x", models.ClaimedSet{})

	notifier := &fakeNotifier{}
	svc := newSweepService(t, store, notifier, at(2024, time.December, 18, 10, 0))

	report := svc.Sweep(context.Background())
	require.Len(t, report.Failures, 1)
	require.Empty(t, notifier.sent)
}

// The trigger is pinned to the configured wall-clock time in the event's
// timezone: whenever it is started, the next run lands on 10:00 Moscow.
func TestStartSchedulerTargetsLocalTime(t *testing.T) {
	cfg := testEventConfig(t)
	store := newMemStore()
	svc := newSweepService(t, store, &fakeNotifier{}, time.Now())

	require.NoError(t, svc.StartScheduler(cfg))
	defer svc.Stop()

	entries := svc.cron.Entries()
	require.Len(t, entries, 1)

	next := entries[0].Next.In(cfg.Location())
	require.Equal(t, 10, next.Hour())
	require.Equal(t, 0, next.Minute())
	require.True(t, next.After(time.Now().Add(-time.Minute)))
}
