package assignments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetiq/backend/internal/models"
)

// ErrNoActiveAssignment is returned when returning a device with no open
// assignment.
var ErrNoActiveAssignment = errors.New("device has no active assignment")

// Repository handles device assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an assignments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Assign records custody of a device in a single transaction: any open
// assignment is closed, the new one inserted, and the device marked
// assigned. Running it atomically (rather than check-then-act) means two
// concurrent assigns for the same device cannot both leave an open record;
// the partial unique index backstops the invariant.
func (r *Repository) Assign(ctx context.Context, a *models.Assignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const closeQ = `UPDATE device_assignments SET returned_at = NOW()
		WHERE device_id = $1 AND org_id = $2 AND returned_at IS NULL`
	if _, err := tx.Exec(ctx, closeQ, a.DeviceID, a.OrgID); err != nil {
		return err
	}

	const insertQ = `INSERT INTO device_assignments (id, device_id, org_id, assignee_name, assignee_email, assigned_at, returned_at, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NULL, $5)
		RETURNING id, assigned_at, created_at`
	if err := tx.QueryRow(ctx, insertQ, a.DeviceID, a.OrgID, a.AssigneeName, a.AssigneeEmail, a.Notes).
		Scan(&a.ID, &a.AssignedAt, &a.CreatedAt); err != nil {
		return err
	}

	const deviceQ = `UPDATE devices SET status = $3, updated_at = NOW() WHERE id = $1 AND org_id = $2`
	tag, err := tx.Exec(ctx, deviceQ, a.DeviceID, a.OrgID, models.StatusAssigned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// Return closes the device's open assignment and sets the device back to
// active, in one transaction.
func (r *Repository) Return(ctx context.Context, orgID, deviceID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const closeQ = `UPDATE device_assignments SET returned_at = NOW()
		WHERE device_id = $1 AND org_id = $2 AND returned_at IS NULL`
	tag, err := tx.Exec(ctx, closeQ, deviceID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveAssignment
	}

	const deviceQ = `UPDATE devices SET status = $3, updated_at = NOW() WHERE id = $1 AND org_id = $2`
	if _, err := tx.Exec(ctx, deviceQ, deviceID, orgID, models.StatusActive); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByDevice returns a device's assignment history, newest first.
func (r *Repository) ListByDevice(ctx context.Context, orgID, deviceID uuid.UUID) ([]models.Assignment, error) {
	const q = `SELECT id, device_id, org_id, assignee_name, assignee_email, assigned_at, returned_at, notes, created_at
		FROM device_assignments WHERE device_id = $1 AND org_id = $2 ORDER BY assigned_at DESC`
	rows, err := r.pool.Query(ctx, q, deviceID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.DeviceID, &a.OrgID, &a.AssigneeName, &a.AssigneeEmail,
			&a.AssignedAt, &a.ReturnedAt, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CreateRaw inserts an assignment without touching device status. Used by
// the demo sync seeder.
func (r *Repository) CreateRaw(ctx context.Context, a *models.Assignment) error {
	const q = `INSERT INTO device_assignments (id, device_id, org_id, assignee_name, assignee_email, assigned_at, returned_at, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NULL, $5)
		RETURNING id, assigned_at, created_at`
	return r.pool.QueryRow(ctx, q, a.DeviceID, a.OrgID, a.AssigneeName, a.AssigneeEmail, a.Notes).
		Scan(&a.ID, &a.AssignedAt, &a.CreatedAt)
}
