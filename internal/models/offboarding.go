package models

import (
	"time"

	"github.com/google/uuid"
)

// Offboarding event status values.
const (
	OffboardingOpen      = "open"
	OffboardingCompleted = "completed"
	OffboardingCancelled = "cancelled"
)

// OffboardingEvent tracks a departing person's device return obligation.
type OffboardingEvent struct {
	ID              uuid.UUID  `json:"id"`
	OrgID           uuid.UUID  `json:"org_id"`
	UserName        *string    `json:"user_name,omitempty"`
	UserEmail       string     `json:"user_email"`
	ManagerEmail    *string    `json:"manager_email,omitempty"`
	DevicesExpected *string    `json:"devices_expected,omitempty"`
	DevicesDueDate  *time.Time `json:"devices_due_date,omitempty"`
	Status          string     `json:"status"`
	DevicesReturned bool       `json:"devices_returned"`
	RemindersSent   int        `json:"reminders_sent"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
