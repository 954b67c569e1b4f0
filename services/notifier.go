// services/notifier.go
package services

import (
	"context"
	"os"
	"strings"
	"time"

	"greetbot-backend/models"
	"greetbot-backend/utils"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MessageKind string

const (
	KindReminderAvailable MessageKind = "reminder_available"
	KindClaimConfirmation MessageKind = "claim_confirmation"
	KindDailyLimitReached MessageKind = "daily_limit_reached"
	KindEventComplete     MessageKind = "event_complete"
	KindEventNotStarted   MessageKind = "event_not_started"
)

// Notifier delivers one message to one participant. A failure is the
// call's outcome, never a reason to stop the caller.
type Notifier interface {
	Notify(ctx context.Context, participantID string, kind MessageKind, payload string) error
}

// TwilioNotifier sends over WhatsApp when the participant id is an E.164
// phone number and plain SMS otherwise, and records every attempt in the
// notification log.
type TwilioNotifier struct {
	db       *gorm.DB
	client   *twilio.RestClient
	from     string
	whatsapp string
	log      *zap.Logger
}

func NewTwilioNotifier(db *gorm.DB, log *zap.Logger) *TwilioNotifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioNotifier{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:     os.Getenv("TWILIO_PHONE_NUMBER"),
		whatsapp: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		log:      log,
	}
}

func (n *TwilioNotifier) Notify(ctx context.Context, participantID string, kind MessageKind, payload string) error {
	to := participantID
	channel := "sms"
	if strings.HasPrefix(participantID, "+") && utils.ValidatePhone(participantID) {
		to = "whatsapp:" + participantID
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(payload)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + n.whatsapp)
	} else {
		params.SetFrom(n.from)
	}

	_, sendErr := n.client.Api.CreateMessage(params)

	status := "sent"
	errorMsg := ""
	if sendErr != nil {
		status = "failed"
		errorMsg = sendErr.Error()
	}

	entry := models.NotificationLog{
		ParticipantID: participantID,
		Kind:          string(kind),
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        time.Now(),
	}
	if err := n.db.WithContext(ctx).Create(&entry).Error; err != nil {
		n.log.Warn("failed to record notification",
			zap.String("participant", participantID),
			zap.Error(err))
	}

	if sendErr != nil {
		return errors.Wrapf(sendErr, "send %s to %s", kind, participantID)
	}
	return nil
}
