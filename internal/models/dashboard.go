package models

// HomeSummary is the member dashboard.
type HomeSummary struct {
	CompletedCourses int                `json:"completed_courses"`
	TotalCourses     int                `json:"total_courses"`
	OverallProgress  int                `json:"overall_progress"`
	Application      *Application       `json:"application,omitempty"`
	Leaderboard      *LeaderboardEntry  `json:"leaderboard,omitempty"`
	UnreadMessages   int                `json:"unread_messages"`
	Enrollments      []EnrollmentDetail `json:"enrollments"`
	Opportunities    []Opportunity      `json:"opportunities"`
	Events           []Event            `json:"events"`
	BlogPosts        []BlogPost         `json:"blog_posts"`
	Activities       []ActivityUpdate   `json:"activities"`
}

// ProfileSummary is the member profile statistics card.
type ProfileSummary struct {
	User              UserInfo `json:"user"`
	TotalCourses      int      `json:"total_courses"`
	CompletedCourses  int      `json:"completed_courses"`
	Rank              int      `json:"rank"`
	ApplicationsCount int      `json:"applications_count"`
	OverallProgress   int      `json:"overall_progress"`
}

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Message   string `json:"message" validate:"required"`
}

// AdminOverview is the back-office landing page.
type AdminOverview struct {
	Courses       []Course         `json:"courses"`
	Users         []User           `json:"users"`
	UserCount     int              `json:"user_count"`
	Opportunities []Opportunity    `json:"opportunities"`
	Participants  int              `json:"leaderboard_participants"`
	Events        []Event          `json:"events"`
	BlogPosts     []BlogPost       `json:"blog_posts"`
	Activities    []ActivityUpdate `json:"activities"`
	RecentAudit   []AuditLog       `json:"recent_audit"`
}
