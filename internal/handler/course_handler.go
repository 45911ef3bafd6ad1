package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/middleware"
	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.CourseWithModules, error)
	Create(ctx context.Context, admin *models.AdminPrincipal, req models.CreateCourseRequest) (*models.Course, error)
	AddModule(ctx context.Context, admin *models.AdminPrincipal, courseID string, req models.CreateModuleRequest) (*models.CourseModule, error)
}

type progressService interface {
	Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	AdvanceModule(ctx context.Context, userID, moduleID string) (*models.ModuleView, error)
	SetModuleStatus(ctx context.Context, admin *models.AdminPrincipal, progressID string, status models.ModuleStatus) (*models.ModuleProgress, error)
	DeleteCourse(ctx context.Context, admin *models.AdminPrincipal, courseID string) error
	DeleteModule(ctx context.Context, admin *models.AdminPrincipal, moduleID string) error
	CourseDetail(ctx context.Context, userID, courseID string) (*models.CourseProgress, error)
	Education(ctx context.Context, userID string) (*models.EducationOverview, error)
	UserProgress(ctx context.Context, admin *models.AdminPrincipal, userID string) (*models.UserProgressReport, error)
}

// CourseHandler serves the catalog together with enrollment and module progress.
type CourseHandler struct {
	courses  courseService
	progress progressService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses courseService, progress progressService) *CourseHandler {
	return &CourseHandler{courses: courses, progress: progress}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get course with modules
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Education godoc
// @Summary Member education overview
// @Description Enrolled courses with progress and the remaining catalog
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/education [get]
func (h *CourseHandler) Education(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	overview, err := h.progress.Education(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Enroll godoc
// @Summary Enroll in course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	enrollment, err := h.progress.Enroll(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, enrollment, nil, map[string]interface{}{"message": "successfully enrolled"})
}

// Detail godoc
// @Summary Course progress
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/progress [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	detail, err := h.progress.CourseDetail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// AdvanceModule godoc
// @Summary Open module
// @Description Returns module content and starts progress on first view
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /modules/{id} [get]
func (h *CourseHandler) AdvanceModule(c *gin.Context) {
	userID, ok := memberID(c)
	if !ok {
		return
	}
	view, err := h.progress.AdvanceModule(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Create course
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /admin/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req models.CreateCourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), middleware.Admin(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// AddModule godoc
// @Summary Add course module
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body models.CreateModuleRequest true "Module"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/courses/{id}/modules [post]
func (h *CourseHandler) AddModule(c *gin.Context) {
	var req models.CreateModuleRequest
	if !bindJSON(c, &req, "invalid module payload") {
		return
	}
	module, err := h.courses.AddModule(c.Request.Context(), middleware.Admin(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// Delete godoc
// @Summary Delete course
// @Description Removes the course with its modules, enrollments and progress rows
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.progress.DeleteCourse(c.Request.Context(), middleware.Admin(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteModule godoc
// @Summary Delete module
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 204
// @Router /admin/modules/{id} [delete]
func (h *CourseHandler) DeleteModule(c *gin.Context) {
	if err := h.progress.DeleteModule(c.Request.Context(), middleware.Admin(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetModuleStatus godoc
// @Summary Override module progress
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Progress ID"
// @Param payload body models.SetModuleStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /admin/progress/{id} [put]
func (h *CourseHandler) SetModuleStatus(c *gin.Context) {
	var req models.SetModuleStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	progress, err := h.progress.SetModuleStatus(c.Request.Context(), middleware.Admin(c), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// UserProgress godoc
// @Summary Member progress report
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /admin/users/{id}/progress [get]
func (h *CourseHandler) UserProgress(c *gin.Context) {
	report, err := h.progress.UserProgress(c.Request.Context(), middleware.Admin(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
