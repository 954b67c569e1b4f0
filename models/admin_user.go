package models

import (
	"time"

	"greetbot-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser can trigger manual sweeps and read event state. Participants
// never get accounts; the admin is seeded from the environment at startup.
type AdminUser struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (u *AdminUser) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = uuid.New()
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
