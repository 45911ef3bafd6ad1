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

type contentService interface {
	Feed(ctx context.Context) (*service.Feed, error)
	All(ctx context.Context, admin *models.AdminPrincipal) (*service.Feed, error)
	CreateEvent(ctx context.Context, admin *models.AdminPrincipal, req models.CreateEventRequest) (*models.Event, error)
	CreatePost(ctx context.Context, admin *models.AdminPrincipal, req models.CreateBlogPostRequest) (*models.BlogPost, error)
	CreateActivity(ctx context.Context, admin *models.AdminPrincipal, req models.CreateActivityRequest) (*models.ActivityUpdate, error)
	Delete(ctx context.Context, admin *models.AdminPrincipal, kind, id string) error
}

// ContentHandler serves events, blog posts and activity updates.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs the handler.
func NewContentHandler(svc contentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// Feed godoc
// @Summary Public content feed
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content [get]
func (h *ContentHandler) Feed(c *gin.Context) {
	feed, err := h.service.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed, nil)
}

// All godoc
// @Summary All content
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/content [get]
func (h *ContentHandler) All(c *gin.Context) {
	feed, err := h.service.All(c.Request.Context(), middleware.Admin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed, nil)
}

// CreateEvent godoc
// @Summary Create event
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /admin/content/events [post]
func (h *ContentHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.CreateEvent(c.Request.Context(), middleware.Admin(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// CreatePost godoc
// @Summary Create blog post
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateBlogPostRequest true "Blog post"
// @Success 201 {object} response.Envelope
// @Router /admin/content/posts [post]
func (h *ContentHandler) CreatePost(c *gin.Context) {
	var req models.CreateBlogPostRequest
	if !bindJSON(c, &req, "invalid blog post payload") {
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), middleware.Admin(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// CreateActivity godoc
// @Summary Create activity update
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateActivityRequest true "Activity update"
// @Success 201 {object} response.Envelope
// @Router /admin/content/activities [post]
func (h *ContentHandler) CreateActivity(c *gin.Context) {
	var req models.CreateActivityRequest
	if !bindJSON(c, &req, "invalid activity payload") {
		return
	}
	activity, err := h.service.CreateActivity(c.Request.Context(), middleware.Admin(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Delete godoc
// @Summary Delete content item
// @Tags Admin
// @Security BearerAuth
// @Param kind path string true "event, blog or activity"
// @Param id path string true "Item ID"
// @Success 204
// @Router /admin/content/{kind}/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Admin(c), c.Param("kind"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
