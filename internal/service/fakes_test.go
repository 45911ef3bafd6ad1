package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/repository"
)

var testAdmin = &models.AdminPrincipal{Subject: AdminSubject, IssuedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

type fakeAudit struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAudit) Create(ctx context.Context, log *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAudit) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// memStore is an in-memory stand-in for the course, enrollment, progress and user repositories.
type memStore struct {
	mu          sync.Mutex
	seq         int
	courses     map[string]*models.Course
	modules     map[string]*models.CourseModule
	enrollments map[string]*models.Enrollment
	progress    map[string]*models.ModuleProgress
	users       map[string]*models.User

	createErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{
		courses:     map[string]*models.Course{},
		modules:     map[string]*models.CourseModule{},
		enrollments: map[string]*models.Enrollment{},
		progress:    map[string]*models.ModuleProgress{},
		users:       map[string]*models.User{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func enrollmentKey(userID, courseID string) string { return userID + "|" + courseID }

func (m *memStore) addCourse(title string, modules int) (*models.Course, []models.CourseModule) {
	course := &models.Course{ID: m.nextID("course"), Title: title, Level: models.LevelBeginner, DurationWeeks: 4, TotalModules: modules}
	m.courses[course.ID] = course
	var created []models.CourseModule
	for i := 1; i <= modules; i++ {
		module := &models.CourseModule{ID: m.nextID("module"), CourseID: course.ID, ModuleNumber: i, Title: fmt.Sprintf("Module %d", i), DurationDays: 7}
		m.modules[module.ID] = module
		created = append(created, *module)
	}
	return course, created
}

func (m *memStore) addUser(first, last, email string) *models.User {
	user := &models.User{ID: m.nextID("user"), FirstName: first, LastName: last, Email: email}
	m.users[user.ID] = user
	return user
}

func (m *memStore) progressFor(userID, moduleID string) *models.ModuleProgress {
	for _, p := range m.progress {
		if p.UserID == userID && p.ModuleID == moduleID {
			return p
		}
	}
	return nil
}

func (m *memStore) progressRows(userID, courseID string) []*models.ModuleProgress {
	var rows []*models.ModuleProgress
	for _, p := range m.progress {
		if module, ok := m.modules[p.ModuleID]; ok && p.UserID == userID && module.CourseID == courseID {
			rows = append(rows, p)
		}
	}
	return rows
}

func (m *memStore) List(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ListModules(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	var out []models.CourseModule
	for _, mod := range m.modules {
		if mod.CourseID == courseID {
			out = append(out, *mod)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleNumber < out[j].ModuleNumber })
	return out, nil
}

func (m *memStore) CountModules(ctx context.Context, courseID string) (int, error) {
	mods, _ := m.ListModules(ctx, courseID)
	return len(mods), nil
}

func (m *memStore) FindModuleByID(ctx context.Context, id string) (*models.CourseModule, error) {
	mod, ok := m.modules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *mod
	return &cp, nil
}

func (m *memStore) DeleteCascade(ctx context.Context, courseID string) error {
	if _, ok := m.courses[courseID]; !ok {
		return sql.ErrNoRows
	}
	for id, mod := range m.modules {
		if mod.CourseID != courseID {
			continue
		}
		for pid, p := range m.progress {
			if p.ModuleID == id {
				delete(m.progress, pid)
			}
		}
		delete(m.modules, id)
	}
	for key, e := range m.enrollments {
		if e.CourseID == courseID {
			delete(m.enrollments, key)
		}
	}
	delete(m.courses, courseID)
	return nil
}

func (m *memStore) DeleteModuleCascade(ctx context.Context, moduleID string) error {
	for pid, p := range m.progress {
		if p.ModuleID == moduleID {
			delete(m.progress, pid)
		}
	}
	delete(m.modules, moduleID)
	return nil
}

func (m *memStore) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	e, ok := m.enrollments[enrollmentKey(userID, courseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if e.UserID != userID {
			continue
		}
		detail := models.EnrollmentDetail{Enrollment: *e}
		if c, ok := m.courses[e.CourseID]; ok {
			detail.CourseTitle = c.Title
			detail.CourseLevel = c.Level
			detail.TotalModules = c.TotalModules
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (m *memStore) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memStore) CreateWithProgress(ctx context.Context, enrollment *models.Enrollment, modules []models.CourseModule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	key := enrollmentKey(enrollment.UserID, enrollment.CourseID)
	if _, ok := m.enrollments[key]; ok {
		return repository.ErrDuplicate
	}
	enrollment.ID = m.nextID("enrollment")
	cp := *enrollment
	m.enrollments[key] = &cp
	for _, mod := range modules {
		if m.progressFor(enrollment.UserID, mod.ID) != nil {
			continue
		}
		id := m.nextID("progress")
		m.progress[id] = &models.ModuleProgress{ID: id, UserID: enrollment.UserID, ModuleID: mod.ID, Status: models.ModuleNotStarted}
	}
	return nil
}

func (m *memStore) UpdateAggregates(ctx context.Context, enrollment *models.Enrollment) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *enrollment
	m.enrollments[enrollmentKey(enrollment.UserID, enrollment.CourseID)] = &cp
	return nil
}

func (m *memStore) CountCompletedModules(ctx context.Context, userID, courseID string) (int, error) {
	total := 0
	for _, p := range m.progressRows(userID, courseID) {
		if p.Status == models.ModuleCompleted {
			total++
		}
	}
	return total, nil
}

func (m *memStore) FindByUserAndModule(ctx context.Context, userID, moduleID string) (*models.ModuleProgress, error) {
	p := m.progressFor(userID, moduleID)
	if p == nil {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

type progressByID struct{ *memStore }

func (p progressByID) FindByID(ctx context.Context, id string) (*models.ModuleProgress, error) {
	row, ok := p.progress[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (m *memStore) ListForCourse(ctx context.Context, userID, courseID string) ([]models.ModuleProgress, error) {
	var out []models.ModuleProgress
	for _, p := range m.progressRows(userID, courseID) {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, progress *models.ModuleProgress) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *progress
	m.progress[progress.ID] = &cp
	return nil
}

func (m *memStore) UpdateWithAggregates(ctx context.Context, progress *models.ModuleProgress, courseID string, derive func(enrollment *models.Enrollment, completed, total int)) (*models.Enrollment, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	cp := *progress
	m.progress[progress.ID] = &cp

	e, ok := m.enrollments[enrollmentKey(progress.UserID, courseID)]
	if !ok {
		return nil, nil
	}
	total, _ := m.CountModules(ctx, courseID)
	completed, _ := m.CountCompletedModules(ctx, progress.UserID, courseID)
	derive(e, completed, total)
	out := *e
	return &out, nil
}

type usersByID struct{ *memStore }

func (u usersByID) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (u usersByID) MapIDsByEmail(ctx context.Context, emails []string) (map[string]string, error) {
	out := map[string]string{}
	for _, email := range emails {
		for _, user := range u.users {
			if strings.EqualFold(user.Email, email) {
				out[strings.ToLower(email)] = user.ID
			}
		}
	}
	return out, nil
}

func (u usersByID) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, user := range u.users {
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (m *memStore) Create(ctx context.Context, course *models.Course) error {
	course.ID = m.nextID("course")
	cp := *course
	m.courses[course.ID] = &cp
	return nil
}

func (m *memStore) CreateModule(ctx context.Context, module *models.CourseModule) error {
	for _, existing := range m.modules {
		if existing.CourseID == module.CourseID && existing.ModuleNumber == module.ModuleNumber {
			return repository.ErrDuplicate
		}
	}
	module.ID = m.nextID("module")
	cp := *module
	m.modules[module.ID] = &cp
	return nil
}
