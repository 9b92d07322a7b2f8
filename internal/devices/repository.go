package devices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetiq/backend/internal/models"
)

// Sortable list columns, whitelisted to keep ORDER BY out of user control.
var sortColumns = map[string]string{
	"asset_tag":    "asset_tag",
	"model":        "model",
	"platform":     "platform",
	"status":       "status",
	"location":     "location",
	"last_seen_at": "last_seen_at",
	"created_at":   "created_at",
}

const deviceColumns = `id, org_id, asset_tag, serial_number, model, platform, status, location, last_seen_at, warranty_until, metadata, created_at, updated_at`

// Repository handles device persistence. Every query is org-scoped.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a devices repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a manually-entered device.
func (r *Repository) Create(ctx context.Context, d *models.Device) error {
	const q = `INSERT INTO devices (id, org_id, asset_tag, serial_number, model, platform, status, location, last_seen_at, warranty_until, metadata)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		d.OrgID, d.AssetTag, d.SerialNumber, d.Model, d.Platform, d.Status,
		d.Location, d.LastSeenAt, d.WarrantyUntil, d.Metadata,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// GetByID returns a device by ID scoped to the organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Device, error) {
	q := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1 AND org_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, q, id, orgID))
}

// List returns all devices for the organization, sorted by the given column
// (default asset_tag ascending). Unknown sort columns fall back to asset_tag.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, sortBy string, desc bool) ([]models.Device, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "asset_tag"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	q := `SELECT ` + deviceColumns + ` FROM devices WHERE org_id = $1 ORDER BY ` + col + ` ` + dir
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update overwrites the editable fields of a device.
func (r *Repository) Update(ctx context.Context, d *models.Device) error {
	const q = `UPDATE devices
		SET asset_tag = $3, serial_number = $4, model = $5, platform = $6, status = $7,
			location = $8, warranty_until = $9, updated_at = NOW()
		WHERE id = $1 AND org_id = $2
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q,
		d.ID, d.OrgID, d.AssetTag, d.SerialNumber, d.Model, d.Platform, d.Status,
		d.Location, d.WarrantyUntil,
	).Scan(&d.UpdatedAt)
}

// UpdateStatus transitions a device's lifecycle status. Devices are never
// hard-deleted; retirement is a status change.
func (r *Repository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status models.Status) error {
	const q = `UPDATE devices SET status = $3, updated_at = NOW() WHERE id = $1 AND org_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, orgID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkSeen stamps last_seen_at with the current time (device check-in).
func (r *Repository) MarkSeen(ctx context.Context, orgID, id uuid.UUID) error {
	const q = `UPDATE devices SET last_seen_at = NOW(), updated_at = NOW() WHERE id = $1 AND org_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListStale returns devices whose last_seen_at is null or before the cutoff,
// for the reminder sweep. The dashboard classifier additionally considers
// created_at; the sweep intentionally matches the broader storage-side rule.
func (r *Repository) ListStale(ctx context.Context, orgID uuid.UUID, cutoff time.Time) ([]models.Device, error) {
	q := `SELECT ` + deviceColumns + ` FROM devices
		WHERE org_id = $1 AND (last_seen_at IS NULL OR last_seen_at < $2)`
	rows, err := r.pool.Query(ctx, q, orgID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// BulkUpsert writes a deduplicated batch in a single statement inside one
// transaction: existing (org_id, asset_tag) rows get all mapped columns
// overwritten, new keys are inserted. Postgres rejects a statement that
// touches the same conflict key twice, so callers must dedupe first.
func (r *Repository) BulkUpsert(ctx context.Context, orgID uuid.UUID, batch []models.Device) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`INSERT INTO devices (id, org_id, asset_tag, serial_number, model, platform, status, location, warranty_until, metadata) VALUES `)
	for i, d := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 9
		fmt.Fprintf(&sb, "(gen_random_uuid(), $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, orgID, d.AssetTag, d.SerialNumber, d.Model, d.Platform, d.Status,
			d.Location, d.WarrantyUntil, d.Metadata)
	}
	sb.WriteString(` ON CONFLICT (org_id, asset_tag) DO UPDATE SET
		serial_number = EXCLUDED.serial_number,
		model = EXCLUDED.model,
		platform = EXCLUDED.platform,
		status = EXCLUDED.status,
		location = EXCLUDED.location,
		warranty_until = EXCLUDED.warranty_until,
		metadata = EXCLUDED.metadata,
		updated_at = NOW()`)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) scanOne(row pgx.Row) (*models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.OrgID, &d.AssetTag, &d.SerialNumber, &d.Model, &d.Platform,
		&d.Status, &d.Location, &d.LastSeenAt, &d.WarrantyUntil, &d.Metadata, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) scanAll(rows pgx.Rows) ([]models.Device, error) {
	var list []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.OrgID, &d.AssetTag, &d.SerialNumber, &d.Model, &d.Platform,
			&d.Status, &d.Location, &d.LastSeenAt, &d.WarrantyUntil, &d.Metadata, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
