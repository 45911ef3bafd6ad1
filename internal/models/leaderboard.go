package models

// LeaderboardEntry is one member's standing. Rank is set by the CSV import.
type LeaderboardEntry struct {
	ID          string  `db:"id" json:"id"`
	UserID      string  `db:"user_id" json:"user_id"`
	TotalPoints int     `db:"total_points" json:"total_points"`
	Rank        *int    `db:"rank" json:"rank,omitempty"`
	ProjectName *string `db:"project_name" json:"project_name,omitempty"`
	Location    *string `db:"location" json:"location,omitempty"`
}

// LeaderboardRow is an entry joined with the member's name.
type LeaderboardRow struct {
	LeaderboardEntry
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

// LeaderboardView is the member-facing leaderboard page.
type LeaderboardView struct {
	TopEntries        []LeaderboardRow  `json:"top_entries"`
	TotalParticipants int               `json:"total_participants"`
	UserEntry         *LeaderboardEntry `json:"user_entry,omitempty"`
}

// LeaderboardImportResult reports a CSV upload outcome.
type LeaderboardImportResult struct {
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
	NotFound      []string `json:"not_found"`
	NotFoundMore  int      `json:"not_found_more"`
	Errors        []string `json:"errors"`
	ErrorsMore    int      `json:"errors_more"`
	Summary       string   `json:"summary"`
	HasRowFailure bool     `json:"has_row_failure"`
}
