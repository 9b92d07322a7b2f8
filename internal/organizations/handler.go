package organizations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateOrganizationRequest is the body for POST /organizations.
type CreateOrganizationRequest struct {
	Name        string  `json:"name" binding:"required"`
	EmailDomain *string `json:"email_domain"`
}

// UpdateSettingsRequest is the body for PATCH /organizations/:orgId/settings.
type UpdateSettingsRequest struct {
	ThresholdDays int `json:"threshold" binding:"required"`
}

// Create handles POST /organizations (onboarding).
func (h *Handler) Create(c *gin.Context) {
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	org := &models.Organization{Name: body.Name, EmailDomain: body.EmailDomain}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// GetByID handles GET /organizations/:orgId.
func (h *Handler) GetByID(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// UpdateSettings handles PATCH /organizations/:orgId/settings. Currently the
// only setting is the stale-device threshold in days.
func (h *Handler) UpdateSettings(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var body UpdateSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "threshold required")
		return
	}
	if body.ThresholdDays < 1 || body.ThresholdDays > 365 {
		response.BadRequest(c, "threshold must be between 1 and 365 days")
		return
	}
	if err := h.repo.UpdateThreshold(c.Request.Context(), orgID, body.ThresholdDays); err != nil {
		response.Internal(c, "failed to update settings")
		return
	}
	response.OK(c, gin.H{"threshold": body.ThresholdDays})
}
