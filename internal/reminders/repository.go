package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetiq/backend/internal/models"
)

// Repository handles reminder persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reminders repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending reminder row.
func (r *Repository) Create(ctx context.Context, rem *models.Reminder) error {
	const q = `INSERT INTO reminders (id, org_id, device_id, user_email, type, status, scheduled_for)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	if rem.Status == "" {
		rem.Status = models.ReminderPending
	}
	if rem.ScheduledFor.IsZero() {
		rem.ScheduledFor = time.Now().UTC()
	}
	return r.pool.QueryRow(ctx, q, rem.OrgID, rem.DeviceID, rem.UserEmail, rem.Type, rem.Status, rem.ScheduledFor).
		Scan(&rem.ID, &rem.CreatedAt)
}

// MarkSent flips a reminder to sent with the dispatch timestamp.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE reminders SET status = $2, sent_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, models.ReminderSent, at)
	return err
}

// ListByOrg returns an organization's reminders, newest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Reminder, error) {
	const q = `SELECT id, org_id, device_id, user_email, type, status, scheduled_for, sent_at, created_at
		FROM reminders WHERE org_id = $1 ORDER BY created_at DESC LIMIT $2`
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, q, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.OrgID, &rem.DeviceID, &rem.UserEmail, &rem.Type,
			&rem.Status, &rem.ScheduledFor, &rem.SentAt, &rem.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}
