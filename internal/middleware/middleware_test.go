package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/service"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrInvalidToken
}

func testValidator() stubValidator {
	return stubValidator{
		"member": {UserID: "user-1", Role: models.RoleMember},
		"admin":  {Role: models.RoleAdmin},
	}
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWT(testValidator()), func(c *gin.Context) {
		claims, ok := Claims(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "forged").Code)

	w := serve(r, "/me", "member")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestOptionalJWTPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/feed", OptionalJWT(testValidator()), func(c *gin.Context) {
		_, ok := Claims(c)
		if ok {
			c.String(http.StatusOK, "auth")
			return
		}
		c.String(http.StatusOK, "anon")
	})

	assert.Equal(t, "anon", serve(r, "/feed", "").Body.String())
	assert.Equal(t, "anon", serve(r, "/feed", "forged").Body.String())
	assert.Equal(t, "auth", serve(r, "/feed", "member").Body.String())
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", JWT(testValidator()), RequireAdmin(), func(c *gin.Context) {
		require.NotNil(t, Admin(c))
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", "member").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/admin", "admin").Code)
}

func TestRequireMember(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/courses", JWT(testValidator()), RequireMember(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusForbidden, serve(r, "/courses", "admin").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/courses", "member").Code)
}

func TestAuditAttachesRequestMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got service.RequestMeta
	r.GET("/x", Audit(), func(c *gin.Context) {
		got, _ = service.RequestMetaFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("User-Agent", "tyi-test")
	req.RemoteAddr = "10.0.0.7:5000"
	r.ServeHTTP(w, req)

	assert.Equal(t, "tyi-test", got.UserAgent)
	assert.Equal(t, "10.0.0.7", got.IP)
}

func TestSetCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/board", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, "/board", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, true, meta[cacheHitKey])
}
