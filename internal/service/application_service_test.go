package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/repository"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type fakeApplicationRepo struct {
	opportunities map[string]*models.Opportunity
	applications  map[string]*models.Application
	seq           int
	forceDup      bool
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{opportunities: map[string]*models.Opportunity{}, applications: map[string]*models.Application{}}
}

func (f *fakeApplicationRepo) ListOpportunities(ctx context.Context, onlyOpen bool, limit int) ([]models.Opportunity, error) {
	var out []models.Opportunity
	for _, o := range f.opportunities {
		if onlyOpen && o.Status != models.OpportunityOpen {
			continue
		}
		out = append(out, *o)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeApplicationRepo) FindOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	o, ok := f.opportunities[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (f *fakeApplicationRepo) CreateOpportunity(ctx context.Context, item *models.Opportunity) error {
	f.seq++
	item.ID = fmt.Sprintf("opp-%d", f.seq)
	cp := *item
	f.opportunities[item.ID] = &cp
	return nil
}

func (f *fakeApplicationRepo) UpdateCoverImage(ctx context.Context, id, coverImage string) error {
	o, ok := f.opportunities[id]
	if !ok {
		return sql.ErrNoRows
	}
	o.CoverImage = coverImage
	return nil
}

func (f *fakeApplicationRepo) DeleteOpportunity(ctx context.Context, id string) error {
	if _, ok := f.opportunities[id]; !ok {
		return sql.ErrNoRows
	}
	for appID, app := range f.applications {
		if app.OpportunityID != nil && *app.OpportunityID == id {
			delete(f.applications, appID)
		}
	}
	delete(f.opportunities, id)
	return nil
}

func (f *fakeApplicationRepo) HasApplied(ctx context.Context, userID, opportunityID string) (bool, error) {
	for _, app := range f.applications {
		if app.UserID == userID && app.OpportunityID != nil && *app.OpportunityID == opportunityID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if f.forceDup {
		return repository.ErrDuplicate
	}
	f.seq++
	app.ID = fmt.Sprintf("app-%d", f.seq)
	cp := *app
	f.applications[app.ID] = &cp
	return nil
}

func (f *fakeApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	app, ok := f.applications[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *app
	return &cp, nil
}

func (f *fakeApplicationRepo) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	var out []models.Application
	for _, app := range f.applications {
		if app.UserID == userID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) ListAll(ctx context.Context) ([]models.Application, error) {
	var out []models.Application
	for _, app := range f.applications {
		out = append(out, *app)
	}
	return out, nil
}

func (f *fakeApplicationRepo) UpdateReview(ctx context.Context, app *models.Application) error {
	cp := *app
	f.applications[app.ID] = &cp
	return nil
}

func newApplicationFixture() (*ApplicationService, *fakeApplicationRepo, *fakeMessageRepo, *fakeAudit) {
	repo := newFakeApplicationRepo()
	messages := newFakeMessageRepo()
	audit := &fakeAudit{}
	return NewApplicationService(repo, messages, audit, newFixedClock(), nil, nil), repo, messages, audit
}

func createOpportunity(t *testing.T, svc *ApplicationService) *models.Opportunity {
	t.Helper()
	item, err := svc.CreateOpportunity(context.Background(), testAdmin, models.CreateOpportunityRequest{
		Title:        "Youth Innovation Challenge",
		Description:  "Pitch a business idea",
		Requirements: "Business plan",
		Deadline:     "2025-06-30",
	})
	require.NoError(t, err)
	return item
}

func TestCreateOpportunityDefaults(t *testing.T) {
	svc, _, _, audit := newApplicationFixture()

	item := createOpportunity(t, svc)
	assert.Equal(t, models.OpportunityOpen, item.Status)
	assert.Equal(t, models.DefaultCoverImage, item.CoverImage)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), item.Deadline)
	assert.Equal(t, []string{models.AuditActionOpportunityCreate}, audit.actions())

	_, err := svc.CreateOpportunity(context.Background(), testAdmin, models.CreateOpportunityRequest{
		Title: "x", Description: "y", Requirements: "z", Deadline: "30/06/2025",
	})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = svc.CreateOpportunity(context.Background(), nil, models.CreateOpportunityRequest{})
	assertAppError(t, err, appErrors.ErrForbidden)
}

func TestApplySubmitsOnce(t *testing.T) {
	svc, repo, _, _ := newApplicationFixture()
	item := createOpportunity(t, svc)

	app, err := svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{BusinessName: "Solar Dryers", BusinessIdea: "Dry maize"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationSubmitted, app.Status)
	assert.Equal(t, 25, app.CompletionPercentage)
	assert.Equal(t, 4, app.TotalDocumentsRequired)
	assert.Equal(t, item.Title, app.CompetitionName)
	require.NotNil(t, app.SubmittedAt)

	_, err = svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{})
	assertAppError(t, err, appErrors.ErrAlreadyApplied)
	assert.Len(t, repo.applications, 1)
}

func TestApplyDuplicateRace(t *testing.T) {
	svc, repo, _, _ := newApplicationFixture()
	item := createOpportunity(t, svc)
	repo.forceDup = true

	_, err := svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{})
	assertAppError(t, err, appErrors.ErrAlreadyApplied)
}

func TestApplyClosedOpportunity(t *testing.T) {
	svc, repo, _, _ := newApplicationFixture()
	item := createOpportunity(t, svc)
	repo.opportunities[item.ID].Status = models.OpportunityClosed

	_, err := svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Apply(context.Background(), "user-1", "missing", models.ApplyRequest{})
	assertAppError(t, err, appErrors.ErrNotFound)
}

func TestUpdateStatusNotifiesApplicant(t *testing.T) {
	svc, _, messages, audit := newApplicationFixture()
	item := createOpportunity(t, svc)
	app, err := svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{})
	require.NoError(t, err)

	reviewed, err := svc.UpdateStatus(context.Background(), testAdmin, app.ID, models.UpdateApplicationRequest{Status: models.ApplicationUnderReview, AdminNotes: "Looks promising"})
	require.NoError(t, err)
	assert.Equal(t, 50, reviewed.CompletionPercentage)
	assert.Nil(t, reviewed.ReviewedAt)
	require.NotNil(t, reviewed.AdminNotes)

	approved, err := svc.UpdateStatus(context.Background(), testAdmin, app.ID, models.UpdateApplicationRequest{Status: models.ApplicationApproved})
	require.NoError(t, err)
	assert.Equal(t, 100, approved.CompletionPercentage)
	assert.NotNil(t, approved.ReviewedAt)
	assert.Equal(t, "Looks promising", *approved.AdminNotes)

	inbox := messages.byUser("user-1")
	require.Len(t, inbox, 2)
	assert.Equal(t, "blue", inbox[0].MessageType)
	assert.Equal(t, "green", inbox[1].MessageType)
	assert.Equal(t, `Your application for "Youth Innovation Challenge" has been under review.`, inbox[0].Content)
	assert.Contains(t, audit.actions(), models.AuditActionApplicationReview)
}

func TestUpdateStatusRejected(t *testing.T) {
	svc, _, messages, _ := newApplicationFixture()
	item := createOpportunity(t, svc)
	app, err := svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), testAdmin, app.ID, models.UpdateApplicationRequest{Status: models.ApplicationRejected})
	require.NoError(t, err)
	assert.Equal(t, "red", messages.byUser("user-1")[0].MessageType)

	_, err = svc.UpdateStatus(context.Background(), testAdmin, app.ID, models.UpdateApplicationRequest{Status: "pending"})
	assertAppError(t, err, appErrors.ErrValidation)
}

func TestDeleteOpportunityRemovesApplications(t *testing.T) {
	svc, repo, _, _ := newApplicationFixture()
	item := createOpportunity(t, svc)
	_, err := svc.Apply(context.Background(), "user-1", item.ID, models.ApplyRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOpportunity(context.Background(), testAdmin, item.ID))
	assert.Empty(t, repo.applications)

	err = svc.DeleteOpportunity(context.Background(), testAdmin, item.ID)
	assertAppError(t, err, appErrors.ErrNotFound)
}

func TestSetCoverImageRestoresDefault(t *testing.T) {
	svc, repo, _, _ := newApplicationFixture()
	item := createOpportunity(t, svc)

	require.NoError(t, svc.SetCoverImage(context.Background(), testAdmin, item.ID, "https://cdn.example/cover.png"))
	assert.Equal(t, "https://cdn.example/cover.png", repo.opportunities[item.ID].CoverImage)

	require.NoError(t, svc.SetCoverImage(context.Background(), testAdmin, item.ID, "  "))
	assert.Equal(t, models.DefaultCoverImage, repo.opportunities[item.ID].CoverImage)
}
