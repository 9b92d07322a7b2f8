package snapshots

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetiq/backend/internal/models"
)

// Repository handles authority snapshot persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a snapshots repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSnapshot inserts the snapshot header in processing state.
func (r *Repository) CreateSnapshot(ctx context.Context, s *models.AuthoritySnapshot) error {
	const q = `INSERT INTO authority_snapshots (id, org_id, name, source, uploaded_by, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	if s.Status == "" {
		s.Status = models.SnapshotProcessing
	}
	return r.pool.QueryRow(ctx, q, s.OrgID, s.Name, s.Source, s.UploadedBy, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// InsertItems appends one chunk of items in a single transaction. Items are
// plain inserts; the snapshot table is append-only.
func (r *Repository) InsertItems(ctx context.Context, snapshotID uuid.UUID, items []models.SnapshotItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO authority_snapshot_items (id, snapshot_id, authority_asset_id, description, site_code, room, custodian, fund, cost, purchase_date, raw_json)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, it := range items {
		if _, err := tx.Exec(ctx, q, snapshotID, it.AuthorityAssetID, it.Description, it.SiteCode,
			it.Room, it.Custodian, it.Fund, it.Cost, it.PurchaseDate, it.RawJSON); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Finalize marks the snapshot complete with its total row count. A snapshot
// that never reaches this stays in processing, which is the visible signal
// of a partial import.
func (r *Repository) Finalize(ctx context.Context, snapshotID uuid.UUID, totalRows int) error {
	const q = `UPDATE authority_snapshots SET status = $2, total_rows = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, snapshotID, models.SnapshotComplete, totalRows)
	return err
}

// SetStorageKey records where the raw CSV was archived.
func (r *Repository) SetStorageKey(ctx context.Context, snapshotID uuid.UUID, key string) error {
	const q = `UPDATE authority_snapshots SET storage_key = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, snapshotID, key)
	return err
}

// List returns the organization's snapshots, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]models.AuthoritySnapshot, error) {
	const q = `SELECT id, org_id, name, source, uploaded_by, status, total_rows, storage_key, created_at, updated_at
		FROM authority_snapshots WHERE org_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AuthoritySnapshot
	for rows.Next() {
		var s models.AuthoritySnapshot
		if err := rows.Scan(&s.ID, &s.OrgID, &s.Name, &s.Source, &s.UploadedBy, &s.Status,
			&s.TotalRows, &s.StorageKey, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns a snapshot scoped to the organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.AuthoritySnapshot, error) {
	const q = `SELECT id, org_id, name, source, uploaded_by, status, total_rows, storage_key, created_at, updated_at
		FROM authority_snapshots WHERE id = $1 AND org_id = $2`
	var s models.AuthoritySnapshot
	err := r.pool.QueryRow(ctx, q, id, orgID).Scan(&s.ID, &s.OrgID, &s.Name, &s.Source,
		&s.UploadedBy, &s.Status, &s.TotalRows, &s.StorageKey, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListItems returns a page of a snapshot's items in insert order.
func (r *Repository) ListItems(ctx context.Context, snapshotID uuid.UUID, limit, offset int) ([]models.SnapshotItem, error) {
	const q = `SELECT id, snapshot_id, authority_asset_id, description, site_code, room, custodian, fund, cost, purchase_date, raw_json, created_at
		FROM authority_snapshot_items WHERE snapshot_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, snapshotID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SnapshotItem
	for rows.Next() {
		var it models.SnapshotItem
		if err := rows.Scan(&it.ID, &it.SnapshotID, &it.AuthorityAssetID, &it.Description,
			&it.SiteCode, &it.Room, &it.Custodian, &it.Fund, &it.Cost, &it.PurchaseDate,
			&it.RawJSON, &it.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
