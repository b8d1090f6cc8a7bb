package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/transport/http/middleware"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// AccessHandler lets clients evaluate guard constraints against their own
// session, so interface fragments can be shown or hidden without duplicating
// the permission tables.
type AccessHandler struct{}

// NewAccessHandler constructs AccessHandler.
func NewAccessHandler() *AccessHandler {
	return &AccessHandler{}
}

// RegisterRoutes binds the access check route. The route accepts anonymous
// callers; an unauthenticated session simply evaluates to denied.
func (h *AccessHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/access/check", h.check)
}

func (h *AccessHandler) check(c *gin.Context) {
	var req AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid access check payload"))
		return
	}

	constraint := usecase.GuardConstraint{
		RequireAuth: true,
		Permission:  domain.Permission(req.Permission),
		Feature:     domain.Feature(req.Feature),
		Action:      domain.Action(req.Action),
	}
	for _, p := range req.AnyPermission {
		constraint.AnyPermission = append(constraint.AnyPermission, domain.Permission(p))
	}
	for _, p := range req.AllPermissions {
		constraint.AllPermissions = append(constraint.AllPermissions, domain.Permission(p))
	}
	if req.Inspection != nil {
		constraint.ActionContext = &domain.ActionContext{
			Inspection: &domain.InspectionContext{
				Status:     domain.InspectionStatus(req.Inspection.Status),
				AssigneeID: req.Inspection.OwnerID,
			},
		}
	}

	decision := usecase.EvaluateGuard(middleware.CurrentEvaluator(c), constraint, true)

	response := AccessCheckResponse{
		Allowed:        decision.Authorized(),
		UpgradeMessage: decision.UpgradeMessage,
	}
	switch decision.Reason {
	case usecase.DenialAuthenticationRequired:
		response.Reason = "authentication_required"
	case usecase.DenialAuthorizationDenied:
		response.Reason = "authorization_denied"
	}

	c.JSON(http.StatusOK, response)
}
