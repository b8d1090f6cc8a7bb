package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/transport/http/middleware"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// QuotaHandler exposes plan quota reporting and consumption.
type QuotaHandler struct {
	quotas *usecase.QuotaService
}

// NewQuotaHandler constructs QuotaHandler.
func NewQuotaHandler(quotas *usecase.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotas: quotas}
}

// RegisterRoutes binds the quota routes on an authenticated group.
func (h *QuotaHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/quotas", h.report)
	r.POST("/quotas/:limit/consume", h.consume)
}

func (h *QuotaHandler) report(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	report, err := h.quotas.Report(c.Request.Context(), identity)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAuthenticationRequired, Status: http.StatusUnauthorized, Message: "authentication required"},
		}, http.StatusInternalServerError, "quota report failed")
		return
	}

	views := make([]QuotaView, len(report))
	for i, usage := range report {
		views[i] = QuotaView{
			LimitType:  string(usage.LimitType),
			Limit:      usage.Limit,
			Current:    usage.Current,
			Remaining:  usage.Remaining,
			Percentage: usage.Percentage,
		}
	}

	plan := ""
	if identity != nil {
		plan = string(identity.Plan)
	}

	c.JSON(http.StatusOK, QuotaReportResponse{Plan: plan, Quotas: views})
}

func (h *QuotaHandler) consume(c *gin.Context) {
	limit := domain.LimitType(c.Param("limit"))

	total, err := h.quotas.Consume(c.Request.Context(), middleware.CurrentIdentity(c), limit, 1)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAuthenticationRequired, Status: http.StatusUnauthorized, Message: "authentication required"},
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "plan limit reached"},
		}, http.StatusInternalServerError, "quota consumption failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"limit_type": string(limit), "current": total})
}
