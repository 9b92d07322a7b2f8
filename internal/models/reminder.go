package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder types and statuses.
const (
	ReminderTypeStaleDevice = "stale_device"
	ReminderTypeOffboarding = "offboarding_device"

	ReminderPending = "pending"
	ReminderSent    = "sent"
)

// Reminder is one notification record emitted by the sweep. DeviceID is set
// for stale-device reminders and nil for offboarding reminders.
type Reminder struct {
	ID           uuid.UUID  `json:"id"`
	OrgID        uuid.UUID  `json:"org_id"`
	DeviceID     *uuid.UUID `json:"device_id,omitempty"`
	UserEmail    string     `json:"user_email"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
