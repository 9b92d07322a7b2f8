package assignments

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/response"
)

// Handler handles assignment HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an assignments handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// AssignRequest is the body for POST /orgs/:orgId/devices/:id/assign. Either
// an assignee or a location-only assignment (both fields empty) is allowed.
type AssignRequest struct {
	AssigneeName  *string `json:"assignee_name"`
	AssigneeEmail *string `json:"assignee_email"`
	Notes         *string `json:"notes"`
}

// Assign handles POST /orgs/:orgId/devices/:id/assign.
func (h *Handler) Assign(c *gin.Context) {
	orgID, _ := uuid.Parse(c.Param("orgId"))
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}
	var body AssignRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	a := &models.Assignment{
		DeviceID:      deviceID,
		OrgID:         orgID,
		AssigneeName:  body.AssigneeName,
		AssigneeEmail: body.AssigneeEmail,
		Notes:         body.Notes,
	}
	if err := h.repo.Assign(c.Request.Context(), a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "device not found")
			return
		}
		response.Internal(c, "failed to assign device")
		return
	}
	response.Created(c, a)
}

// Return handles POST /orgs/:orgId/devices/:id/return.
func (h *Handler) Return(c *gin.Context) {
	orgID, _ := uuid.Parse(c.Param("orgId"))
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}
	if err := h.repo.Return(c.Request.Context(), orgID, deviceID); err != nil {
		if errors.Is(err, ErrNoActiveAssignment) {
			response.Conflict(c, "device has no active assignment")
			return
		}
		response.Internal(c, "failed to return device")
		return
	}
	response.OK(c, gin.H{"returned": true})
}

// History handles GET /orgs/:orgId/devices/:id/assignments.
func (h *Handler) History(c *gin.Context) {
	orgID, _ := uuid.Parse(c.Param("orgId"))
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}
	list, err := h.repo.ListByDevice(c.Request.Context(), orgID, deviceID)
	if err != nil {
		response.Internal(c, "failed to load assignments")
		return
	}
	response.OK(c, list)
}
