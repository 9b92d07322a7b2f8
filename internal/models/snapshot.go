package models

import (
	"time"

	"github.com/google/uuid"
)

// Authority snapshot status values. A snapshot left in "processing" after a
// crash is the visible signal of a partial import.
const (
	SnapshotProcessing = "processing"
	SnapshotComplete   = "complete"
)

// AuthoritySnapshot is an immutable import batch from an external record of
// authority (e.g. a finance system CSV), kept for audit.
type AuthoritySnapshot struct {
	ID         uuid.UUID  `json:"id"`
	OrgID      uuid.UUID  `json:"org_id"`
	Name       string     `json:"name"`
	Source     *string    `json:"source,omitempty"`
	UploadedBy *uuid.UUID `json:"uploaded_by,omitempty"`
	Status     string     `json:"status"`
	TotalRows  *int       `json:"total_rows,omitempty"`
	StorageKey *string    `json:"storage_key,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SnapshotItem is one row of an authority snapshot. RawJSON keeps the full
// original row keyed by header.
type SnapshotItem struct {
	ID               uuid.UUID         `json:"id"`
	SnapshotID       uuid.UUID         `json:"snapshot_id"`
	AuthorityAssetID *string           `json:"authority_asset_id,omitempty"`
	Description      *string           `json:"description,omitempty"`
	SiteCode         *string           `json:"site_code,omitempty"`
	Room             *string           `json:"room,omitempty"`
	Custodian        *string           `json:"custodian,omitempty"`
	Fund             *string           `json:"fund,omitempty"`
	Cost             *float64          `json:"cost,omitempty"`
	PurchaseDate     *time.Time        `json:"purchase_date,omitempty"`
	RawJSON          map[string]string `json:"raw_json,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
