package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/PrincipieCyupe/tyi/internal/models"
)

const leaderboardRowQuery = `SELECT le.id, le.user_id, le.total_points, le.rank, le.project_name, le.location,
        u.first_name, u.last_name, u.email
        FROM leaderboard_entries le
        JOIN users u ON u.id = le.user_id
        ORDER BY le.rank ASC NULLS LAST, le.total_points DESC`

// UpsertStats counts rows written by an import batch.
type UpsertStats struct {
	Created int
	Updated int
}

// LeaderboardRepository persists leaderboard standings.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository constructs the repository.
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// ListTop returns the best ranked entries; limit <= 0 returns all of them.
func (r *LeaderboardRepository) ListTop(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	query := leaderboardRowQuery
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var rows []models.LeaderboardRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return rows, nil
}

// Count returns the number of participants on the leaderboard.
func (r *LeaderboardRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM leaderboard_entries`); err != nil {
		return 0, fmt.Errorf("count leaderboard: %w", err)
	}
	return total, nil
}

// FindByUser returns a member's entry.
func (r *LeaderboardRepository) FindByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	const query = `SELECT id, user_id, total_points, rank, project_name, location FROM leaderboard_entries WHERE user_id = $1`
	var entry models.LeaderboardEntry
	if err := r.db.GetContext(ctx, &entry, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find leaderboard entry: %w", err)
	}
	return &entry, nil
}

// UpsertBatch writes every entry in one transaction, keyed by user_id.
func (r *LeaderboardRepository) UpsertBatch(ctx context.Context, entries []models.LeaderboardEntry) (stats UpsertStats, err error) {
	if len(entries) == 0 {
		return stats, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin leaderboard import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// xmax is zero only for freshly inserted tuples.
	const query = `INSERT INTO leaderboard_entries (id, user_id, total_points, rank, project_name, location)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET total_points = EXCLUDED.total_points, rank = EXCLUDED.rank,
        project_name = EXCLUDED.project_name, location = EXCLUDED.location
        RETURNING (xmax = 0) AS inserted`
	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		var inserted bool
		if err = tx.GetContext(ctx, &inserted, query, id, entry.UserID, entry.TotalPoints, entry.Rank, entry.ProjectName, entry.Location); err != nil {
			return UpsertStats{}, fmt.Errorf("upsert leaderboard entry: %w", err)
		}
		if inserted {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	if err = tx.Commit(); err != nil {
		return UpsertStats{}, fmt.Errorf("commit leaderboard import: %w", err)
	}
	return stats, nil
}

// Clear deletes every entry and returns how many were removed.
func (r *LeaderboardRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leaderboard_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear leaderboard: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear leaderboard: %w", err)
	}
	return affected, nil
}
