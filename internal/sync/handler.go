// Package sync seeds demo inventory data, standing in for a real MDM or
// directory integration.
package sync

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assetiq/backend/internal/assignments"
	"github.com/assetiq/backend/internal/devices"
	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/response"
)

// Handler handles the demo sync endpoint.
type Handler struct {
	devices     *devices.Repository
	assignments *assignments.Repository
	logger      *zap.Logger
}

// NewHandler creates a demo sync handler.
func NewHandler(d *devices.Repository, a *assignments.Repository, logger *zap.Logger) *Handler {
	return &Handler{devices: d, assignments: a, logger: logger}
}

type seedDevice struct {
	assetTag string
	serial   string
	model    string
	platform models.Platform
	location string
}

var seedDevices = []seedDevice{
	{"GA-CH-001", "MOCK-GA-CH-001", "Chromebook (directory mock)", models.PlatformChromebook, "Lab 101"},
	{"GA-CH-002", "MOCK-GA-CH-002", "Chromebook (directory mock)", models.PlatformChromebook, "Lab 102"},
	{"GA-CH-003", "MOCK-GA-CH-003", "Chromebook (directory mock)", models.PlatformChromebook, "Library cart"},
	{"GA-WIN-001", "MOCK-GA-WIN-001", "Windows Laptop (directory mock)", models.PlatformWindows, "Office 201"},
	{"GA-MAC-001", "MOCK-GA-MAC-001", "MacBook (directory mock)", models.PlatformMac, "Media center"},
}

var seedAssignees = []struct {
	name  string
	email string
}{
	{"Alex Teacher", "alex.teacher@example.org"},
	{"Jamie Staff", "jamie.staff@example.org"},
	{"Riley Librarian", "riley.librarian@example.org"},
}

// Run handles POST /orgs/:orgId/sync/demo: inserts mock devices for the
// organization and assigns the first three to mock users, so a fresh
// environment has something to look at. Devices that already exist from a
// previous run are skipped.
func (h *Handler) Run(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}

	now := time.Now().UTC()
	warranty := now.AddDate(1, 0, 0).Truncate(24 * time.Hour)

	var inserted []models.Device
	for _, sd := range seedDevices {
		serial := sd.serial
		model := sd.model
		location := sd.location
		seenAt := now
		d := models.Device{
			OrgID:         orgID,
			AssetTag:      sd.assetTag,
			SerialNumber:  &serial,
			Model:         &model,
			Platform:      sd.platform,
			Status:        models.StatusAssigned,
			Location:      &location,
			LastSeenAt:    &seenAt,
			WarrantyUntil: &warranty,
		}
		if err := h.devices.Create(c.Request.Context(), &d); err != nil {
			h.logger.Warn("demo sync device skipped", zap.String("asset_tag", sd.assetTag), zap.Error(err))
			continue
		}
		inserted = append(inserted, d)
	}

	assignmentsInserted := 0
	for i, d := range inserted {
		if i >= len(seedAssignees) {
			break
		}
		name := seedAssignees[i].name
		email := seedAssignees[i].email
		notes := "Mock assignment from demo sync."
		a := models.Assignment{
			OrgID:         orgID,
			DeviceID:      d.ID,
			AssigneeName:  &name,
			AssigneeEmail: &email,
			Notes:         &notes,
		}
		if err := h.assignments.CreateRaw(c.Request.Context(), &a); err != nil {
			h.logger.Warn("demo sync assignment failed", zap.String("device_id", d.ID.String()), zap.Error(err))
			continue
		}
		assignmentsInserted++
	}

	response.OK(c, gin.H{
		"devicesInserted":     len(inserted),
		"assignmentsInserted": assignmentsInserted,
		"runAt":               now,
	})
}
