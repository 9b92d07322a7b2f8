package devices

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/assetiq/backend/internal/importer"
	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/response"
)

// ThresholdSource provides an organization's stale threshold in days.
type ThresholdSource interface {
	GetThreshold(ctx context.Context, orgID uuid.UUID) (int, error)
}

// Handler handles device HTTP endpoints.
type Handler struct {
	repo       *Repository
	reconciler *importer.Reconciler
	thresholds ThresholdSource
	logger     *zap.Logger
}

// NewHandler creates a devices handler.
func NewHandler(repo *Repository, reconciler *importer.Reconciler, thresholds ThresholdSource, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, reconciler: reconciler, thresholds: thresholds, logger: logger}
}

// CreateDeviceRequest is the body for POST /orgs/:orgId/devices.
type CreateDeviceRequest struct {
	AssetTag      string  `json:"asset_tag" binding:"required"`
	SerialNumber  *string `json:"serial_number"`
	Model         *string `json:"model"`
	Platform      string  `json:"platform"`
	Status        string  `json:"status"`
	Location      *string `json:"location"`
	WarrantyUntil *string `json:"warranty_until"`
}

// List handles GET /orgs/:orgId/devices?sort=column&dir=desc.
func (h *Handler) List(c *gin.Context) {
	orgID := mustOrgID(c)
	sortBy := c.DefaultQuery("sort", "asset_tag")
	desc := c.Query("dir") == "desc"
	list, err := h.repo.List(c.Request.Context(), orgID, sortBy, desc)
	if err != nil {
		response.Internal(c, "failed to load devices")
		return
	}
	response.OK(c, list)
}

// Create handles POST /orgs/:orgId/devices (manual entry).
func (h *Handler) Create(c *gin.Context) {
	orgID := mustOrgID(c)
	var body CreateDeviceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "asset_tag is required")
		return
	}
	d := &models.Device{
		OrgID:        orgID,
		AssetTag:     body.AssetTag,
		SerialNumber: body.SerialNumber,
		Model:        body.Model,
		Platform:     importer.NormalizePlatform(body.Platform),
		Status:       importer.NormalizeStatus(body.Status),
		Location:     body.Location,
	}
	if body.WarrantyUntil != nil {
		d.WarrantyUntil = importer.NormalizeDate(*body.WarrantyUntil)
	}
	if err := h.repo.Create(c.Request.Context(), d); err != nil {
		if isUniqueViolation(err) {
			response.Conflict(c, "a device with this asset tag already exists in your organization")
			return
		}
		response.Internal(c, "failed to create device")
		return
	}
	response.Created(c, d)
}

// GetByID handles GET /orgs/:orgId/devices/:id.
func (h *Handler) GetByID(c *gin.Context) {
	orgID := mustOrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}
	d, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "device not found")
			return
		}
		response.Internal(c, "failed to load device")
		return
	}
	response.OK(c, d)
}

// Update handles PATCH /orgs/:orgId/devices/:id.
func (h *Handler) Update(c *gin.Context) {
	orgID := mustOrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "device not found")
			return
		}
		response.Internal(c, "failed to load device")
		return
	}

	var body CreateDeviceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if body.AssetTag != "" {
		existing.AssetTag = body.AssetTag
	}
	if body.SerialNumber != nil {
		existing.SerialNumber = body.SerialNumber
	}
	if body.Model != nil {
		existing.Model = body.Model
	}
	if body.Platform != "" {
		existing.Platform = importer.NormalizePlatform(body.Platform)
	}
	if body.Status != "" {
		existing.Status = importer.NormalizeStatus(body.Status)
	}
	if body.Location != nil {
		existing.Location = body.Location
	}
	if body.WarrantyUntil != nil {
		existing.WarrantyUntil = importer.NormalizeDate(*body.WarrantyUntil)
	}
	if err := h.repo.Update(c.Request.Context(), existing); err != nil {
		response.Internal(c, "failed to update device")
		return
	}
	response.OK(c, existing)
}

// MarkSeen handles POST /orgs/:orgId/devices/:id/seen (device check-in).
func (h *Handler) MarkSeen(c *gin.Context) {
	orgID := mustOrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return
	}
	if err := h.repo.MarkSeen(c.Request.Context(), orgID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "device not found")
			return
		}
		response.Internal(c, "failed to update device")
		return
	}
	response.OK(c, gin.H{"seen_at": time.Now().UTC()})
}

// Attention handles GET /orgs/:orgId/devices/attention: the stale and
// needs-attention sets for the dashboard.
func (h *Handler) Attention(c *gin.Context) {
	orgID := mustOrgID(c)
	threshold, err := h.thresholds.GetThreshold(c.Request.Context(), orgID)
	if err != nil {
		threshold = models.DefaultStaleThresholdDays
	}
	list, err := h.repo.List(c.Request.Context(), orgID, "asset_tag", false)
	if err != nil {
		response.Internal(c, "failed to load devices")
		return
	}
	cls := Classify(list, threshold, time.Now())
	response.OK(c, gin.H{
		"threshold_days":  threshold,
		"stale":           cls.Stale,
		"needs_attention": cls.NeedsAttention,
	})
}

// UpsertRow is one candidate record for the bulk upsert entry point.
type UpsertRow struct {
	OrgID         string            `json:"org_id"`
	AssetTag      string            `json:"asset_tag"`
	SerialNumber  *string           `json:"serial_number"`
	Model         *string           `json:"model"`
	Platform      string            `json:"platform"`
	Status        string            `json:"status"`
	Location      *string           `json:"location"`
	WarrantyUntil *string           `json:"warranty_until"`
	Metadata      map[string]string `json:"metadata"`
}

// BulkUpsert handles POST /orgs/:orgId/devices/upsert. The body must be a
// non-empty JSON array; rows lacking an asset tag are dropped, and a payload
// with no usable rows is rejected before any write.
func (h *Handler) BulkUpsert(c *gin.Context) {
	orgID := mustOrgID(c)

	var rows []UpsertRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		response.BadRequest(c, "request body must be a non-empty array")
		return
	}
	if len(rows) == 0 {
		response.BadRequest(c, "request body must be a non-empty array")
		return
	}

	batch := make([]models.Device, 0, len(rows))
	for _, row := range rows {
		if row.AssetTag == "" {
			continue
		}
		// Rows addressed to a different tenant never cross over.
		if row.OrgID != "" && row.OrgID != orgID.String() {
			continue
		}
		d := models.Device{
			OrgID:        orgID,
			AssetTag:     row.AssetTag,
			SerialNumber: row.SerialNumber,
			Model:        row.Model,
			Platform:     importer.NormalizePlatform(row.Platform),
			Status:       importer.NormalizeStatus(row.Status),
			Location:     row.Location,
			Metadata:     row.Metadata,
		}
		if row.WarrantyUntil != nil {
			d.WarrantyUntil = importer.NormalizeDate(*row.WarrantyUntil)
		}
		batch = append(batch, d)
	}

	report, err := h.reconciler.ImportBatch(c.Request.Context(), orgID, len(rows), len(batch), batch)
	if err != nil {
		if errors.Is(err, importer.ErrNoUsableRows) {
			response.BadRequest(c, "no valid rows with org_id and asset_tag")
			return
		}
		// Storage errors surface verbatim; the caller must re-trigger the import.
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, report)
}

// ImportCSV handles POST /orgs/:orgId/devices/import: a multipart upload with
// a "file" CSV part and a "mapping" JSON part (canonical field -> header).
// With ?preview=true it parses, guesses a mapping, and returns the first ten
// rows without writing anything.
func (h *Handler) ImportCSV(c *gin.Context) {
	orgID := mustOrgID(c)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "csv file is required")
		return
	}
	defer file.Close()

	parsed, err := importer.ParseCSV(file)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if c.Query("preview") == "true" {
		response.OK(c, gin.H{
			"headers":       parsed.Headers,
			"guessed":       importer.GuessDeviceMapping(parsed.Headers),
			"preview":       parsed.Preview(importer.PreviewRows),
			"rows_received": len(parsed.Rows),
		})
		return
	}

	mapping := importer.Mapping{}
	if raw := c.Request.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			response.BadRequest(c, "invalid mapping JSON")
			return
		}
	} else {
		mapping = importer.GuessDeviceMapping(parsed.Headers)
	}

	report, err := h.reconciler.Import(c.Request.Context(), orgID, parsed, mapping)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrAssetTagUnmapped):
			response.BadRequest(c, "asset tag mapping is required: map the asset tag field to one of your CSV columns")
		case errors.Is(err, importer.ErrNoUsableRows):
			response.BadRequest(c, "none of the rows have an asset tag after mapping")
		default:
			response.BadRequest(c, err.Error())
		}
		return
	}
	response.OK(c, report)
}

func mustOrgID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.Param("orgId"))
	return id
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
