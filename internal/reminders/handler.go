package reminders

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetiq/backend/pkg/response"
)

// Handler exposes the reminder sweep over HTTP for an external scheduler.
type Handler struct {
	sweeper    *Sweeper
	repo       *Repository
	cronSecret string
}

// NewHandler creates a reminders handler. An empty cronSecret leaves the run
// endpoint unauthenticated, for local development only.
func NewHandler(sweeper *Sweeper, repo *Repository, cronSecret string) *Handler {
	return &Handler{sweeper: sweeper, repo: repo, cronSecret: cronSecret}
}

// Run handles POST /reminders/run and its GET alias. Schedulers differ in
// which method they can send, so both run the same job.
func (h *Handler) Run(c *gin.Context) {
	if !h.authorized(c) {
		response.Unauthorized(c, "invalid cron secret")
		return
	}
	report, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, report)
}

// List handles GET /orgs/:orgId/reminders.
func (h *Handler) List(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListByOrg(c.Request.Context(), orgID, 100)
	if err != nil {
		response.Internal(c, "failed to load reminders")
		return
	}
	response.OK(c, list)
}

func (h *Handler) authorized(c *gin.Context) bool {
	if h.cronSecret == "" {
		return true
	}
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}
