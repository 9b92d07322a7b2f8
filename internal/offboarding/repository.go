package offboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetiq/backend/internal/models"
)

const eventColumns = `id, org_id, user_name, user_email, manager_email, devices_expected, devices_due_date, status, devices_returned, reminders_sent, notes, created_at, updated_at`

// Repository handles offboarding event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an offboarding repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new open offboarding event.
func (r *Repository) Create(ctx context.Context, e *models.OffboardingEvent) error {
	const q = `INSERT INTO offboarding_events (id, org_id, user_name, user_email, manager_email, devices_expected, devices_due_date, status, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, devices_returned, reminders_sent, created_at, updated_at`
	if e.Status == "" {
		e.Status = models.OffboardingOpen
	}
	return r.pool.QueryRow(ctx, q,
		e.OrgID, e.UserName, e.UserEmail, e.ManagerEmail, e.DevicesExpected, e.DevicesDueDate, e.Status, e.Notes,
	).Scan(&e.ID, &e.DevicesReturned, &e.RemindersSent, &e.CreatedAt, &e.UpdatedAt)
}

// List returns the organization's offboarding events, open first then newest.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]models.OffboardingEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM offboarding_events WHERE org_id = $1
		ORDER BY (status = 'open') DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

// ListOpenUnreturned returns open events whose devices have not come back,
// for the reminder sweep.
func (r *Repository) ListOpenUnreturned(ctx context.Context, orgID uuid.UUID) ([]models.OffboardingEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM offboarding_events
		WHERE org_id = $1 AND status = 'open' AND devices_returned = FALSE`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

// GetByID returns an event scoped to the organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.OffboardingEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM offboarding_events WHERE id = $1 AND org_id = $2`
	var e models.OffboardingEvent
	err := r.pool.QueryRow(ctx, q, id, orgID).Scan(
		&e.ID, &e.OrgID, &e.UserName, &e.UserEmail, &e.ManagerEmail, &e.DevicesExpected,
		&e.DevicesDueDate, &e.Status, &e.DevicesReturned, &e.RemindersSent, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateStatus closes or reopens an event and optionally flips the
// devices-returned flag.
func (r *Repository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status string, devicesReturned *bool) error {
	const q = `UPDATE offboarding_events
		SET status = $3, devices_returned = COALESCE($4, devices_returned), updated_at = NOW()
		WHERE id = $1 AND org_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, orgID, status, devicesReturned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementReminders bumps the reminder counter and stamps the send time in
// the notes, for one sweep pass.
func (r *Repository) IncrementReminders(ctx context.Context, orgID, id uuid.UUID, sentAt time.Time) error {
	const q = `UPDATE offboarding_events
		SET reminders_sent = reminders_sent + 1, notes = $3, updated_at = NOW()
		WHERE id = $1 AND org_id = $2`
	note := fmt.Sprintf("Reminder sent at %s", sentAt.UTC().Format(time.RFC3339))
	_, err := r.pool.Exec(ctx, q, id, orgID, note)
	return err
}

func scanAll(rows pgx.Rows) ([]models.OffboardingEvent, error) {
	var list []models.OffboardingEvent
	for rows.Next() {
		var e models.OffboardingEvent
		if err := rows.Scan(&e.ID, &e.OrgID, &e.UserName, &e.UserEmail, &e.ManagerEmail,
			&e.DevicesExpected, &e.DevicesDueDate, &e.Status, &e.DevicesReturned,
			&e.RemindersSent, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
