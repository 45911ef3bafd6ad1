package service

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/repository"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/export"
)

const (
	leaderboardTopSize    = 10
	leaderboardCacheKey   = "leaderboard:top"
	leaderboardCacheScope = "leaderboard:*"
	maxImportErrors       = 3
	maxImportNotFound     = 5
)

// Import row results reported to metrics.
const (
	ImportRowCreated  = "created"
	ImportRowUpdated  = "updated"
	ImportRowSkipped  = "skipped"
	ImportRowNotFound = "not_found"
	ImportRowError    = "error"
)

var leaderboardHeaders = []string{"rank", "user_email", "total_points", "project_name", "location"}

type leaderboardRepository interface {
	ListTop(ctx context.Context, limit int) ([]models.LeaderboardRow, error)
	Count(ctx context.Context) (int, error)
	FindByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error)
	UpsertBatch(ctx context.Context, entries []models.LeaderboardEntry) (repository.UpsertStats, error)
	Clear(ctx context.Context) (int64, error)
}

type emailResolver interface {
	MapIDsByEmail(ctx context.Context, emails []string) (map[string]string, error)
}

type leaderboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type cachedStandings struct {
	TopEntries        []models.LeaderboardRow `json:"top_entries"`
	TotalParticipants int                     `json:"total_participants"`
}

// ExportFile is a rendered leaderboard download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// LeaderboardService owns the competition standings fed by admin CSV uploads.
type LeaderboardService struct {
	repo     leaderboardRepository
	users    emailResolver
	cache    leaderboardCache
	cacheTTL time.Duration
	audit    auditRecorder
	metrics  *MetricsService
	clock    Clock
	logger   *zap.Logger
}

// NewLeaderboardService constructs LeaderboardService. cache may be nil.
func NewLeaderboardService(repo leaderboardRepository, users emailResolver, cache leaderboardCache, cacheTTL time.Duration, audit auditRecorder, metrics *MetricsService, clock Clock, logger *zap.Logger) *LeaderboardService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{
		repo:     repo,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		audit:    audit,
		metrics:  metrics,
		clock:    clock,
		logger:   logger,
	}
}

// View returns the top standings, the participant count and the caller's own entry.
// The boolean reports whether the standings came from cache.
func (s *LeaderboardService) View(ctx context.Context, userID string) (*models.LeaderboardView, bool, error) {
	standings, hit, err := s.standings(ctx)
	if err != nil {
		return nil, false, err
	}
	view := &models.LeaderboardView{TopEntries: standings.TopEntries, TotalParticipants: standings.TotalParticipants}
	if userID == "" {
		return view, hit, nil
	}
	entry, err := s.repo.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Persistence(err, "failed to load leaderboard entry")
	}
	view.UserEntry = entry
	return view, hit, nil
}

func (s *LeaderboardService) standings(ctx context.Context) (*cachedStandings, bool, error) {
	var cached cachedStandings
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, leaderboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}
	rows, err := s.repo.ListTop(ctx, leaderboardTopSize)
	if err != nil {
		return nil, false, appErrors.Persistence(err, "failed to load leaderboard")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Persistence(err, "failed to count leaderboard")
	}
	if rows == nil {
		rows = []models.LeaderboardRow{}
	}
	result := &cachedStandings{TopEntries: rows, TotalParticipants: total}
	if s.cache != nil {
		_ = s.cache.Set(ctx, leaderboardCacheKey, result, s.cacheTTL)
	}
	return result, false, nil
}

type importRow struct {
	line  int
	email string
	entry models.LeaderboardEntry
}

// Import upserts standings from a CSV upload. Malformed rows are reported and skipped;
// the valid rows are written in a single transaction.
func (s *LeaderboardService) Import(ctx context.Context, admin *models.AdminPrincipal, src io.Reader) (*models.LeaderboardImportResult, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	reader := csv.NewReader(skipBOM(src))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "CSV file is empty")
		}
		return nil, appErrors.Validation(err, "CSV header could not be read")
	}
	columns, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	result := &models.LeaderboardImportResult{NotFound: []string{}, Errors: []string{}}
	var rowErrors, notFound []string
	var parsed []importRow
	line := 1
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", line, readErr))
			continue
		}
		if blankRecord(record) {
			result.Skipped++
			continue
		}
		row, rowErr := parseImportRow(record, columns)
		if rowErr != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s", line, rowErr))
			continue
		}
		row.line = line
		parsed = append(parsed, row)
	}

	emails := make([]string, 0, len(parsed))
	for _, row := range parsed {
		emails = append(emails, row.email)
	}
	ids, err := s.users.MapIDsByEmail(ctx, emails)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to resolve leaderboard members")
	}

	// A member listed twice keeps the last row.
	position := make(map[string]int)
	var entries []models.LeaderboardEntry
	for _, row := range parsed {
		userID, ok := ids[strings.ToLower(row.email)]
		if !ok {
			notFound = append(notFound, row.email)
			continue
		}
		row.entry.UserID = userID
		if idx, seen := position[userID]; seen {
			entries[idx] = row.entry
			result.Skipped++
			continue
		}
		position[userID] = len(entries)
		entries = append(entries, row.entry)
	}

	stats, err := s.repo.UpsertBatch(ctx, entries)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to import leaderboard")
	}
	result.Created = stats.Created
	result.Updated = stats.Updated
	result.NotFound, result.NotFoundMore = capList(notFound, maxImportNotFound)
	result.Errors, result.ErrorsMore = capList(rowErrors, maxImportErrors)
	result.HasRowFailure = len(rowErrors) > 0
	result.Summary = importSummary(result)

	s.metrics.RecordImportRows(ImportRowCreated, stats.Created)
	s.metrics.RecordImportRows(ImportRowUpdated, stats.Updated)
	s.metrics.RecordImportRows(ImportRowSkipped, result.Skipped)
	s.metrics.RecordImportRows(ImportRowNotFound, len(notFound))
	s.metrics.RecordImportRows(ImportRowError, len(rowErrors))

	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionLeaderboardImport, "leaderboard", "", map[string]int{
		"created":   stats.Created,
		"updated":   stats.Updated,
		"not_found": len(notFound),
		"errors":    len(rowErrors),
	})
	s.logger.Info("leaderboard imported",
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("not_found", len(notFound)),
		zap.Int("errors", len(rowErrors)),
	)
	return result, nil
}

// Clear removes every standing.
func (s *LeaderboardService) Clear(ctx context.Context, admin *models.AdminPrincipal) (int64, error) {
	if err := requireAdmin(admin); err != nil {
		return 0, err
	}
	removed, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, appErrors.Persistence(err, "failed to clear leaderboard")
	}
	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionLeaderboardClear, "leaderboard", "", map[string]int64{"removed": removed})
	return removed, nil
}

// Export renders the full standings as CSV or PDF.
func (s *LeaderboardService) Export(ctx context.Context, admin *models.AdminPrincipal, format export.Format) (*ExportFile, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTop(ctx, 0)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load leaderboard")
	}
	table := export.Table{
		Title:   "Tegura Youth Initiative Leaderboard",
		Headers: []string{"rank", "name", "user_email", "total_points", "project_name", "location"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			intOrEmpty(row.Rank),
			strings.TrimSpace(row.FirstName + " " + row.LastName),
			row.Email,
			strconv.Itoa(row.TotalPoints),
			stringOrEmpty(row.ProjectName),
			stringOrEmpty(row.Location),
		})
	}
	content, err := export.Render(format, table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render leaderboard export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("leaderboard-%s.%s", s.clock.Now().Format("20060102"), format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

func (s *LeaderboardService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, leaderboardCacheScope); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}

func skipBOM(src io.Reader) io.Reader {
	buffered := bufio.NewReader(src)
	if r, _, err := buffered.ReadRune(); err == nil && r != '\uFEFF' {
		_ = buffered.UnreadRune()
	}
	return buffered
}

func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range leaderboardHeaders {
		if _, ok := columns[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "CSV must have headers: "+strings.Join(leaderboardHeaders, ", "))
		}
	}
	return columns, nil
}

func parseImportRow(record []string, columns map[string]int) (importRow, error) {
	cell := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(record) {
			return "", fmt.Errorf("missing column %s", name)
		}
		return strings.TrimSpace(record[idx]), nil
	}
	values := make(map[string]string, len(leaderboardHeaders))
	for _, name := range leaderboardHeaders {
		value, err := cell(name)
		if err != nil {
			return importRow{}, err
		}
		values[name] = value
	}
	if values["user_email"] == "" {
		return importRow{}, errors.New("user_email is required")
	}
	rank, err := strconv.Atoi(values["rank"])
	if err != nil {
		return importRow{}, fmt.Errorf("invalid number format for rank %q", values["rank"])
	}
	points, err := strconv.Atoi(values["total_points"])
	if err != nil {
		return importRow{}, fmt.Errorf("invalid number format for total_points %q", values["total_points"])
	}
	return importRow{
		email: values["user_email"],
		entry: models.LeaderboardEntry{
			Rank:        &rank,
			TotalPoints: points,
			ProjectName: optionalString(values["project_name"]),
			Location:    optionalString(values["location"]),
		},
	}, nil
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func capList(items []string, limit int) ([]string, int) {
	if len(items) <= limit {
		if items == nil {
			return []string{}, 0
		}
		return items, 0
	}
	return items[:limit], len(items) - limit
}

func importSummary(result *models.LeaderboardImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Leaderboard updated! %d created, %d updated.", result.Created, result.Updated)
	if len(result.NotFound) > 0 {
		fmt.Fprintf(&b, " Users not found: %s", strings.Join(result.NotFound, ", "))
		if result.NotFoundMore > 0 {
			fmt.Fprintf(&b, " (and %d more)", result.NotFoundMore)
		}
		b.WriteString(".")
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, " Errors: %s", strings.Join(result.Errors, "; "))
		if result.ErrorsMore > 0 {
			fmt.Fprintf(&b, " (and %d more)", result.ErrorsMore)
		}
		b.WriteString(".")
	}
	return b.String()
}

func intOrEmpty(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
