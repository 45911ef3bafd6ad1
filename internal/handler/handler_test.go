package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/middleware"
	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/service"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/export"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func withMember(c *gin.Context, userID string) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: models.RoleMember})
}

type fakeLeaderboardSrv struct {
	view       *models.LeaderboardView
	hit        bool
	lastUser   string
	imported   string
	lastAdmin  *models.AdminPrincipal
	result     *models.LeaderboardImportResult
	exportFile *service.ExportFile
	format     export.Format
}

func (f *fakeLeaderboardSrv) View(_ context.Context, userID string) (*models.LeaderboardView, bool, error) {
	f.lastUser = userID
	return f.view, f.hit, nil
}

func (f *fakeLeaderboardSrv) Import(_ context.Context, admin *models.AdminPrincipal, src io.Reader) (*models.LeaderboardImportResult, error) {
	f.lastAdmin = admin
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	f.imported = string(raw)
	return f.result, nil
}

func (f *fakeLeaderboardSrv) Clear(context.Context, *models.AdminPrincipal) (int64, error) {
	return 0, nil
}

func (f *fakeLeaderboardSrv) Export(_ context.Context, _ *models.AdminPrincipal, format export.Format) (*service.ExportFile, error) {
	f.format = format
	return f.exportFile, nil
}

func TestLeaderboardViewReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLeaderboardSrv{view: &models.LeaderboardView{TotalParticipants: 4}, hit: true}
	h := NewLeaderboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	withMember(c, "user-9")

	h.View(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "user-9", srv.lastUser)
	envelope := decode(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func multipartUpload(t *testing.T, field, filename, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/leaderboard/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestLeaderboardImportPassesUploadAndAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLeaderboardSrv{result: &models.LeaderboardImportResult{Created: 1, Summary: "Leaderboard updated! 1 created, 0 updated."}}
	h := NewLeaderboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartUpload(t, csvUploadField, "board.CSV", "rank,user_email\n")
	admin := &models.AdminPrincipal{Subject: "admin"}
	c.Set(middleware.ContextAdminKey, admin)

	h.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rank,user_email\n", srv.imported)
	assert.Same(t, admin, srv.lastAdmin)
	assert.Equal(t, "Leaderboard updated! 1 created, 0 updated.", decode(t, rec).Meta["message"])
}

func TestLeaderboardImportRejectsNonCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLeaderboardSrv{}
	h := NewLeaderboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartUpload(t, csvUploadField, "board.xlsx", "x")

	h.Import(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.imported)
}

func TestLeaderboardImportRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewLeaderboardHandler(&fakeLeaderboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartUpload(t, "other", "board.csv", "x")

	h.Import(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardExportSetsAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLeaderboardSrv{exportFile: &service.ExportFile{
		Filename:    "leaderboard-20250310.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.3"),
	}}
	h := NewLeaderboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/leaderboard/export?format=pdf", nil)

	h.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatPDF, srv.format)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leaderboard-20250310.pdf")
}

func TestLeaderboardExportRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewLeaderboardHandler(&fakeLeaderboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/leaderboard/export?format=xlsx", nil)

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeProgressSrv struct {
	progressService
	enrollErr error
	enrolled  []string
}

func (f *fakeProgressSrv) Enroll(_ context.Context, userID, courseID string) (*models.Enrollment, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	f.enrolled = append(f.enrolled, userID+":"+courseID)
	return &models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentInProgress}, nil
}

func TestCourseEnrollUsesMemberFromToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeProgressSrv{}
	h := NewCourseHandler(nil, srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/c1/enroll", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	withMember(c, "u1")

	h.Enroll(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"u1:c1"}, srv.enrolled)
}

func TestCourseEnrollConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCourseHandler(nil, &fakeProgressSrv{enrollErr: appErrors.ErrAlreadyEnrolled})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/c1/enroll", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	withMember(c, "u1")

	h.Enroll(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	envelope := decode(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ALREADY_ENROLLED", envelope.Error.Code)
}

func TestCourseEnrollWithoutTokenIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeProgressSrv{}
	h := NewCourseHandler(nil, srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/c1/enroll", nil)

	h.Enroll(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, srv.enrolled)
}

type fakeResetSrv struct {
	token string
	req   models.ResetPasswordRequest
}

func (f *fakeResetSrv) RequestReset(context.Context, models.ForgotPasswordRequest) error { return nil }

func (f *fakeResetSrv) ValidateReset(_ context.Context, token string) error {
	if token != "good" {
		return appErrors.ErrInvalidToken
	}
	return nil
}

func (f *fakeResetSrv) ConsumeReset(_ context.Context, token string, req models.ResetPasswordRequest) error {
	f.token = token
	f.req = req
	return nil
}

func TestAuthResetPasswordUsesPathToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeResetSrv{}
	h := NewAuthHandler(nil, srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/reset-password/good",
		strings.NewReader(`{"password":"secret1","confirm_password":"secret1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "token", Value: "good"}}

	h.ResetPassword(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good", srv.token)
	assert.Equal(t, "secret1", srv.req.Password)
}

func TestAuthValidateResetRejectsUnknownToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(nil, &fakeResetSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/reset-password/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	h.ValidateReset(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLoginRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
