package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform is the device hardware/OS family.
type Platform string

const (
	PlatformChromebook Platform = "chromebook"
	PlatformWindows    Platform = "windows"
	PlatformMac        Platform = "mac"
	PlatformIPad       Platform = "ipad"
	PlatformOther      Platform = "other"
)

// Status is the device lifecycle state. Devices are never hard-deleted;
// they transition to retired or lost instead.
type Status string

const (
	StatusActive   Status = "active"
	StatusAssigned Status = "assigned"
	StatusRetired  Status = "retired"
	StatusLost     Status = "lost"
	StatusRepair   Status = "repair"
)

// Device represents one physical asset. (OrgID, AssetTag) is unique and is
// the natural key for import reconciliation.
type Device struct {
	ID            uuid.UUID         `json:"id"`
	OrgID         uuid.UUID         `json:"org_id"`
	AssetTag      string            `json:"asset_tag"`
	SerialNumber  *string           `json:"serial_number,omitempty"`
	Model         *string           `json:"model,omitempty"`
	Platform      Platform          `json:"platform"`
	Status        Status            `json:"status"`
	Location      *string           `json:"location,omitempty"`
	LastSeenAt    *time.Time        `json:"last_seen_at,omitempty"`
	WarrantyUntil *time.Time        `json:"warranty_until,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
