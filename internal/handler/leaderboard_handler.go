package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/middleware"
	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/service"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/export"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

const csvUploadField = "csv_file"

type leaderboardService interface {
	View(ctx context.Context, userID string) (*models.LeaderboardView, bool, error)
	Import(ctx context.Context, admin *models.AdminPrincipal, src io.Reader) (*models.LeaderboardImportResult, error)
	Clear(ctx context.Context, admin *models.AdminPrincipal) (int64, error)
	Export(ctx context.Context, admin *models.AdminPrincipal, format export.Format) (*service.ExportFile, error)
}

// LeaderboardHandler exposes standings and the admin CSV workflow.
type LeaderboardHandler struct {
	service leaderboardService
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(svc leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: svc}
}

// View godoc
// @Summary Leaderboard
// @Description Top standings, participant count and the caller's own entry
// @Tags Leaderboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) View(c *gin.Context) {
	var userID string
	if claims, ok := middleware.Claims(c); ok {
		userID = claims.UserID
	}

	view, hit, err := h.service.View(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Import godoc
// @Summary Upload leaderboard CSV
// @Description Upserts standings from a CSV with rank, user_email, total_points, project_name and location columns
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param csv_file formData file true "Leaderboard CSV"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/leaderboard/import [post]
func (h *LeaderboardHandler) Import(c *gin.Context) {
	header, err := c.FormFile(csvUploadField)
	if err != nil {
		response.Error(c, appErrors.Validation(err, "no file selected"))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "please upload a CSV file"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Validation(err, "unable to read uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.service.Import(c.Request.Context(), middleware.Admin(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, result.Summary, result)
}

// Clear godoc
// @Summary Clear leaderboard
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/leaderboard [delete]
func (h *LeaderboardHandler) Clear(c *gin.Context) {
	removed, err := h.service.Clear(c.Request.Context(), middleware.Admin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "leaderboard cleared", gin.H{"removed": removed})
}

// Export godoc
// @Summary Export leaderboard
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /admin/leaderboard/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Validation(err, err.Error()))
		return
	}

	file, err := h.service.Export(c.Request.Context(), middleware.Admin(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
