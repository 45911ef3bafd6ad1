package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/middleware"
	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/service"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

type applicationService interface {
	Board(ctx context.Context, userID string) (*service.OpportunityBoard, error)
	GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error)
	Apply(ctx context.Context, userID, opportunityID string, req models.ApplyRequest) (*models.Application, error)
	ListForUser(ctx context.Context, userID string) ([]models.Application, error)
	ListOpportunities(ctx context.Context, admin *models.AdminPrincipal) ([]models.Opportunity, error)
	CreateOpportunity(ctx context.Context, admin *models.AdminPrincipal, req models.CreateOpportunityRequest) (*models.Opportunity, error)
	SetCoverImage(ctx context.Context, admin *models.AdminPrincipal, id, coverImage string) error
	DeleteOpportunity(ctx context.Context, admin *models.AdminPrincipal, id string) error
	ListAll(ctx context.Context, admin *models.AdminPrincipal) ([]models.Application, error)
	UpdateStatus(ctx context.Context, admin *models.AdminPrincipal, appID string, req models.UpdateApplicationRequest) (*models.Application, error)
}

// ApplicationHandler exposes opportunities and member applications.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(svc applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

type coverImagePayload struct {
	CoverImage string `json:"cover_image" binding:"required"`
}

// Board godoc
// @Summary Opportunity board
// @Description Open opportunities and the caller's applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /opportunities [get]
func (h *ApplicationHandler) Board(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	board, err := h.service.Board(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// Get godoc
// @Summary Get opportunity
// @Tags Applications
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /opportunities/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	opportunity, err := h.service.GetOpportunity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opportunity, nil)
}

// Apply godoc
// @Summary Apply to opportunity
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Opportunity ID"
// @Param payload body models.ApplyRequest true "Application"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /opportunities/{id}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	var req models.ApplyRequest
	if !bindJSON(c, &req, "invalid application payload") {
		return
	}
	application, err := h.service.Apply(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, application, nil, map[string]interface{}{"message": "application submitted successfully"})
}

// Mine godoc
// @Summary My applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/applications [get]
func (h *ApplicationHandler) Mine(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	apps, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// ListOpportunities godoc
// @Summary All opportunities
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/opportunities [get]
func (h *ApplicationHandler) ListOpportunities(c *gin.Context) {
	items, err := h.service.ListOpportunities(c.Request.Context(), middleware.Admin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateOpportunity godoc
// @Summary Create opportunity
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateOpportunityRequest true "Opportunity"
// @Success 201 {object} response.Envelope
// @Router /admin/opportunities [post]
func (h *ApplicationHandler) CreateOpportunity(c *gin.Context) {
	var req models.CreateOpportunityRequest
	if !bindJSON(c, &req, "invalid opportunity payload") {
		return
	}
	opportunity, err := h.service.CreateOpportunity(c.Request.Context(), middleware.Admin(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, opportunity)
}

// SetCoverImage godoc
// @Summary Replace opportunity cover
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param id path string true "Opportunity ID"
// @Param payload body coverImagePayload true "Cover image URL"
// @Success 204
// @Router /admin/opportunities/{id}/cover [put]
func (h *ApplicationHandler) SetCoverImage(c *gin.Context) {
	var payload coverImagePayload
	if !bindJSON(c, &payload, "cover_image is required") {
		return
	}
	if err := h.service.SetCoverImage(c.Request.Context(), middleware.Admin(c), c.Param("id"), payload.CoverImage); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteOpportunity godoc
// @Summary Delete opportunity
// @Description Removes the opportunity and all of its applications
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Opportunity ID"
// @Success 204
// @Router /admin/opportunities/{id} [delete]
func (h *ApplicationHandler) DeleteOpportunity(c *gin.Context) {
	if err := h.service.DeleteOpportunity(c.Request.Context(), middleware.Admin(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListApplications godoc
// @Summary All applications
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/applications [get]
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.service.ListAll(c.Request.Context(), middleware.Admin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// UpdateStatus godoc
// @Summary Review application
// @Description Updates status and notes, notifying the applicant
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body models.UpdateApplicationRequest true "Review"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id} [put]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateApplicationRequest
	if !bindJSON(c, &req, "invalid review payload") {
		return
	}
	app, err := h.service.UpdateStatus(c.Request.Context(), middleware.Admin(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}
