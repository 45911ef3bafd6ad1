package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/repository"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	createErr error
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	repo := &mockAuthRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[user.ID] = user
	return nil
}

func newAuthFixture(users ...*models.User) (*AuthService, *mockAuthRepo, *fixedClock, *fakeAudit) {
	repo := newMockAuthRepo(users...)
	clock := newFixedClock()
	audit := &fakeAudit{}
	svc := NewAuthService(repo, plainHasher{}, audit, clock, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		AdminTokenExpiry:  30 * time.Minute,
		Issuer:            "tyi-test",
		AdminPasswordHash: "hashed:admin-pass",
	})
	return svc, repo, clock, audit
}

func TestRegisterCreatesMemberSession(t *testing.T) {
	svc, repo, _, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: " Aline ",
		LastName:  "Uwase",
		Email:     "Aline@Example.com",
		Password:  "pass1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "aline@example.com", resp.User.Email)
	assert.Equal(t, "AU", resp.User.Initials)
	assert.Equal(t, models.RoleMember, resp.User.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	stored := repo.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "Aline", stored.FirstName)
	assert.Equal(t, "hashed:pass1", stored.PasswordHash)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, models.RoleMember, claims.Role)
	assert.Nil(t, models.AdminFromClaims(claims))
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	existing := &models.User{ID: "user-1", FirstName: "Aline", LastName: "Uwase", Email: "aline@example.com"}
	svc, _, _, _ := newAuthFixture(existing)

	_, err := svc.Register(context.Background(), models.RegisterRequest{FirstName: "Al", LastName: "Uw", Email: "ALINE@example.com", Password: "pass1"})
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestRegisterDuplicateRace(t *testing.T) {
	svc, repo, _, _ := newAuthFixture()
	repo.createErr = repository.ErrDuplicate

	_, err := svc.Register(context.Background(), models.RegisterRequest{FirstName: "Al", LastName: "Uw", Email: "al@example.com", Password: "pass1"})
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{FirstName: "A", LastName: "Uwase", Email: "bad", Password: "pw"})
	assertAppError(t, err, appErrors.ErrValidation)
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: "user-1", FirstName: "Aline", LastName: "Uwase", Email: "aline@example.com", PasswordHash: "hashed:pass1"}
	svc, _, _, _ := newAuthFixture(user)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "aline@example.com", Password: "pass1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "aline@example.com", Password: "wrong"})
	assertAppError(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "pass1"})
	assertAppError(t, err, appErrors.ErrInvalidCredentials)
}

func TestAdminLoginIssuesAdminToken(t *testing.T) {
	svc, _, clock, audit := newAuthFixture()

	resp, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "admin-pass"})
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	assert.Equal(t, int64(1800), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	principal := models.AdminFromClaims(claims)
	require.NotNil(t, principal)
	assert.Equal(t, AdminSubject, principal.Subject)
	assert.Equal(t, clock.Now().Unix(), principal.IssuedAt.Unix())
	assert.Equal(t, []string{models.AuditActionAdminLogin}, audit.actions())

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "guess"})
	assertAppError(t, err, appErrors.ErrInvalidCredentials)
}

func TestAdminLoginWithoutConfiguredPassword(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), plainHasher{}, nil, newFixedClock(), nil, nil, AuthConfig{AccessTokenSecret: "s"})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "anything"})
	assertAppError(t, err, appErrors.ErrServiceUnavailable)
}

func TestValidateTokenExpires(t *testing.T) {
	user := &models.User{ID: "user-1", FirstName: "Aline", LastName: "Uwase", Email: "aline@example.com", PasswordHash: "hashed:pass1"}
	svc, _, clock, _ := newAuthFixture(user)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "pass1"})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.ValidateToken(resp.AccessToken)
	assertAppError(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	svc, _, clock, _ := newAuthFixture()

	claims := &models.JWTClaims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   AdminSubject,
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assertAppError(t, err, appErrors.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	user := &models.User{ID: "user-1", FirstName: "Aline", LastName: "Uwase", Email: "aline@example.com"}
	svc, _, _, _ := newAuthFixture(user)

	info, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Aline", info.FirstName)

	_, err = svc.Me(context.Background(), "missing")
	assertAppError(t, err, appErrors.ErrNotFound)
}
