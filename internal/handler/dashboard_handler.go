package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/middleware"
	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

type dashboardService interface {
	Home(ctx context.Context, userID string) (*models.HomeSummary, error)
	Profile(ctx context.Context, userID string) (*models.ProfileSummary, error)
	AdminOverview(ctx context.Context, admin *models.AdminPrincipal) (*models.AdminOverview, error)
}

// DashboardHandler serves the member home, profile and admin overview.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Home godoc
// @Summary Member dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Home(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	summary, err := h.service.Home(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Profile godoc
// @Summary Member profile
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/profile [get]
func (h *DashboardHandler) Profile(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Admin godoc
// @Summary Admin overview
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	overview, err := h.service.AdminOverview(c.Request.Context(), middleware.Admin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
