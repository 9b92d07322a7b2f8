package organizations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetiq/backend/internal/models"
)

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates an organization with the default stale threshold.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (id, name, email_domain, threshold)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	if org.ThresholdDays <= 0 {
		org.ThresholdDays = models.DefaultStaleThresholdDays
	}
	return r.pool.QueryRow(ctx, q, org.Name, org.EmailDomain, org.ThresholdDays).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, email_domain, threshold, created_at, updated_at FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&org.ID, &org.Name, &org.EmailDomain, &org.ThresholdDays, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns all organizations (used by the reminder sweep).
func (r *Repository) List(ctx context.Context) ([]models.Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email_domain, threshold, created_at, updated_at FROM organizations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.EmailDomain, &org.ThresholdDays, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, org)
	}
	return list, rows.Err()
}

// GetThreshold returns the organization's stale threshold in days, defaulting
// to 30 when unset.
func (r *Repository) GetThreshold(ctx context.Context, orgID uuid.UUID) (int, error) {
	const q = `SELECT threshold FROM organizations WHERE id = $1`
	var threshold int
	if err := r.pool.QueryRow(ctx, q, orgID).Scan(&threshold); err != nil {
		return models.DefaultStaleThresholdDays, err
	}
	if threshold <= 0 {
		threshold = models.DefaultStaleThresholdDays
	}
	return threshold, nil
}

// UpdateThreshold sets the organization's stale threshold in days.
func (r *Repository) UpdateThreshold(ctx context.Context, orgID uuid.UUID, days int) error {
	const q = `UPDATE organizations SET threshold = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, orgID, days)
	return err
}
