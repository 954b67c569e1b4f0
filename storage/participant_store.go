package storage

import (
	"context"
	"time"

	"greetbot-backend/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConflict is returned by CompareAndUpdate when the participant row
// changed since it was read. Callers re-read and retry.
var ErrConflict = errors.New("participant was modified concurrently")

// ParticipantStore is the narrow persistence contract the claim and sweep
// flows depend on. Get returns (nil, nil) for an unknown id.
type ParticipantStore interface {
	Get(ctx context.Context, id string) (*models.Participant, error)
	Create(ctx context.Context, id string) (*models.Participant, error)
	CompareAndUpdate(ctx context.Context, p *models.Participant, claimed models.ClaimedSet, lastClaim *time.Time) error
	ListIDs(ctx context.Context) ([]string, error)
}

// GormStore persists participants through GORM. Postgres in production,
// SQLite in tests; nothing here is driver specific.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get participant")
	}
	return &p, nil
}

// Create registers a participant with an empty claimed set. Safe to call
// for an id that already exists; the stored row wins.
func (s *GormStore) Create(ctx context.Context, id string) (*models.Participant, error) {
	p := models.Participant{ID: id, Claimed: models.ClaimedSet{}}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&p).Error
	if err != nil {
		return nil, errors.Wrap(err, "create participant")
	}
	return s.Get(ctx, id)
}

// CompareAndUpdate writes the new claimed set and claim date only if the
// row still carries the version p was read at.
func (s *GormStore) CompareAndUpdate(ctx context.Context, p *models.Participant, claimed models.ClaimedSet, lastClaim *time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]interface{}{
			"claimed":         claimed,
			"last_claim_date": lastClaim,
			"version":         p.Version + 1,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update participant")
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Participant{}).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "list participants")
	}
	return ids, nil
}
