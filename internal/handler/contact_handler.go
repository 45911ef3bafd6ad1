package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

type contactService interface {
	Submit(ctx context.Context, req models.ContactRequest) error
}

// ContactHandler relays the public contact form.
type ContactHandler struct {
	service contactService
}

// NewContactHandler constructs the handler.
func NewContactHandler(svc contactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Submit godoc
// @Summary Contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body models.ContactRequest true "Contact message"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if !bindJSON(c, &req, "please fill in all required fields") {
		return
	}
	if err := h.service.Submit(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusAccepted, "thank you for your message, we will get back to you soon", nil)
}
