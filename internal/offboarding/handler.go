package offboarding

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/assetiq/backend/internal/importer"
	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/response"
)

// Handler handles offboarding HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an offboarding handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateEventRequest is the body for POST /orgs/:orgId/offboarding.
type CreateEventRequest struct {
	UserName        *string `json:"user_name"`
	UserEmail       string  `json:"user_email" binding:"required"`
	ManagerEmail    *string `json:"manager_email"`
	DevicesExpected *string `json:"devices_expected"`
	DevicesDueDate  *string `json:"devices_due_date"`
	Notes           *string `json:"notes"`
}

// UpdateEventRequest is the body for PATCH /orgs/:orgId/offboarding/:id.
type UpdateEventRequest struct {
	Status          string `json:"status" binding:"required"`
	DevicesReturned *bool  `json:"devices_returned"`
}

// Create handles POST /orgs/:orgId/offboarding.
func (h *Handler) Create(c *gin.Context) {
	orgID, _ := uuid.Parse(c.Param("orgId"))
	var body CreateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_email is required")
		return
	}
	e := &models.OffboardingEvent{
		OrgID:           orgID,
		UserName:        body.UserName,
		UserEmail:       strings.TrimSpace(body.UserEmail),
		ManagerEmail:    body.ManagerEmail,
		DevicesExpected: body.DevicesExpected,
		Notes:           body.Notes,
		Status:          models.OffboardingOpen,
	}
	if body.DevicesDueDate != nil {
		e.DevicesDueDate = importer.NormalizeDate(*body.DevicesDueDate)
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create offboarding event")
		return
	}
	response.Created(c, e)
}

// List handles GET /orgs/:orgId/offboarding.
func (h *Handler) List(c *gin.Context) {
	orgID, _ := uuid.Parse(c.Param("orgId"))
	list, err := h.repo.List(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load offboarding events")
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /orgs/:orgId/offboarding/:id (close, cancel, mark
// devices returned).
func (h *Handler) Update(c *gin.Context) {
	orgID, _ := uuid.Parse(c.Param("orgId"))
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid offboarding event id")
		return
	}
	var body UpdateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	status := strings.ToLower(strings.TrimSpace(body.Status))
	switch status {
	case models.OffboardingOpen, models.OffboardingCompleted, models.OffboardingCancelled:
	default:
		response.BadRequest(c, "status must be open, completed, or cancelled")
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), orgID, id, status, body.DevicesReturned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "offboarding event not found")
			return
		}
		response.Internal(c, "failed to update offboarding event")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.Internal(c, "failed to load offboarding event")
		return
	}
	response.OK(c, e)
}
