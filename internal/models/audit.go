package models

import "time"

// Audit actions recorded for back-office operations.
const (
	AuditActionAdminLogin        = "ADMIN_LOGIN"
	AuditActionCourseCreate      = "COURSE_CREATE"
	AuditActionCourseDelete      = "COURSE_DELETE"
	AuditActionModuleCreate      = "MODULE_CREATE"
	AuditActionModuleDelete      = "MODULE_DELETE"
	AuditActionProgressOverride  = "PROGRESS_OVERRIDE"
	AuditActionOpportunityCreate = "OPPORTUNITY_CREATE"
	AuditActionOpportunityDelete = "OPPORTUNITY_DELETE"
	AuditActionApplicationReview = "APPLICATION_REVIEW"
	AuditActionMessageSend       = "MESSAGE_SEND"
	AuditActionLeaderboardImport = "LEADERBOARD_IMPORT"
	AuditActionLeaderboardClear  = "LEADERBOARD_CLEAR"
	AuditActionContentCreate     = "CONTENT_CREATE"
	AuditActionContentDelete     = "CONTENT_DELETE"
	AuditActionPasswordReset     = "PASSWORD_RESET"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
