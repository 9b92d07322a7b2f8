package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/assetiq/backend/internal/importer"
	"github.com/assetiq/backend/internal/middleware"
	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/response"
	"github.com/assetiq/backend/pkg/storage"
)

// Handler handles authority snapshot HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *Service
	s3      *storage.S3
}

// NewHandler creates a snapshots handler. s3 may be nil.
func NewHandler(repo *Repository, service *Service, s3 *storage.S3) *Handler {
	return &Handler{repo: repo, service: service, s3: s3}
}

// Import handles POST /orgs/:orgId/snapshots/import: a multipart upload with
// a "file" CSV part, an optional "mapping" JSON part, and optional "name" and
// "source" form values. With ?preview=true it parses, guesses a mapping, and
// returns the first ten rows without writing anything.
func (h *Handler) Import(c *gin.Context) {
	orgID := orgIDParam(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "csv file is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "failed to read uploaded file")
		return
	}

	parsed, err := importer.ParseCSV(bytes.NewReader(raw))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if c.Query("preview") == "true" {
		response.OK(c, gin.H{
			"headers":       parsed.Headers,
			"guessed":       importer.GuessAuthorityMapping(parsed.Headers),
			"preview":       parsed.Preview(importer.PreviewRows),
			"rows_received": len(parsed.Rows),
		})
		return
	}

	mapping := importer.Mapping{}
	if rawMapping := c.Request.FormValue("mapping"); rawMapping != "" {
		if err := json.Unmarshal([]byte(rawMapping), &mapping); err != nil {
			response.BadRequest(c, "invalid mapping JSON")
			return
		}
	} else {
		mapping = importer.GuessAuthorityMapping(parsed.Headers)
	}

	name := strings.TrimSpace(c.Request.FormValue("name"))
	if name == "" && header != nil {
		name = header.Filename
	}
	if name == "" {
		response.BadRequest(c, "snapshot name is required")
		return
	}

	snap := &models.AuthoritySnapshot{
		OrgID: orgID,
		Name:  name,
	}
	if source := strings.TrimSpace(c.Request.FormValue("source")); source != "" {
		snap.Source = &source
	}
	if uid, ok := c.Get(middleware.ContextUserID); ok {
		if userID, ok := uid.(uuid.UUID); ok {
			snap.UploadedBy = &userID
		}
	}

	if err := h.service.Import(c.Request.Context(), snap, raw, parsed, mapping); err != nil {
		// A mid-import failure leaves the snapshot in processing state with
		// the rows committed so far, which the list endpoint surfaces.
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, snap)
}

// List handles GET /orgs/:orgId/snapshots.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), orgIDParam(c))
	if err != nil {
		response.Internal(c, "failed to load snapshots")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /orgs/:orgId/snapshots/:id. It returns the snapshot,
// one page of its items (?limit=&offset=), and a pre-signed download URL for
// the archived CSV when one exists.
func (h *Handler) GetByID(c *gin.Context) {
	orgID := orgIDParam(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid snapshot id")
		return
	}
	snap, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "snapshot not found")
			return
		}
		response.Internal(c, "failed to load snapshot")
		return
	}

	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)
	items, err := h.repo.ListItems(c.Request.Context(), snap.ID, limit, offset)
	if err != nil {
		response.Internal(c, "failed to load snapshot items")
		return
	}

	body := gin.H{"snapshot": snap, "items": items}
	if h.s3 != nil && snap.StorageKey != nil {
		url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.SnapshotsBucket(), *snap.StorageKey, h.s3.PresignExpire())
		if err == nil {
			body["download_url"] = url
		}
	}
	response.OK(c, body)
}

func orgIDParam(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.Param("orgId"))
	return id
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
