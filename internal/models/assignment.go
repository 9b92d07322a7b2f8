package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is one custody interval for a device. ReturnedAt nil means the
// assignment is currently active; at most one active assignment exists per
// device (partial unique index uniq_active_assignment_per_device).
type Assignment struct {
	ID            uuid.UUID  `json:"id"`
	DeviceID      uuid.UUID  `json:"device_id"`
	OrgID         uuid.UUID  `json:"org_id"`
	AssigneeName  *string    `json:"assignee_name,omitempty"`
	AssigneeEmail *string    `json:"assignee_email,omitempty"`
	AssignedAt    time.Time  `json:"assigned_at"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
