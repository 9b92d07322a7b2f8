package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStaleThresholdDays is used when an organization has no configured threshold.
const DefaultStaleThresholdDays = 30

// Organization represents a tenant. Every device, assignment, offboarding
// event, snapshot, and reminder is scoped by OrganizationID.
type Organization struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	EmailDomain   *string   `json:"email_domain,omitempty"`
	ThresholdDays int       `json:"threshold"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
