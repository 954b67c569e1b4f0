// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ParticipantID string    `gorm:"index;not null" json:"participantId"`
	Kind          string    `gorm:"type:varchar(32);not null" json:"kind"` // reminder_available, claim_confirmation, ...
	Status        string    `gorm:"type:varchar(20)" json:"status"`        // sent, failed
	ErrorMessage  string    `gorm:"type:text" json:"errorMessage"`
	Channel       string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	SentAt        time.Time `json:"sentAt"`
	gorm.Model    `json:"-"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
