package models

import "time"

// OpportunityStatus marks whether an opportunity accepts applications.
type OpportunityStatus string

const (
	OpportunityOpen   OpportunityStatus = "open"
	OpportunityClosed OpportunityStatus = "closed"
)

// DefaultCoverImage is used when an opportunity has no uploaded cover.
const DefaultCoverImage = "new.png"

// Opportunity is a competition members can apply to.
type Opportunity struct {
	ID           string            `db:"id" json:"id"`
	Title        string            `db:"title" json:"title"`
	Description  string            `db:"description" json:"description"`
	Requirements string            `db:"requirements" json:"requirements"`
	Deadline     time.Time         `db:"deadline" json:"deadline"`
	PrizeAmount  *string           `db:"prize_amount" json:"prize_amount,omitempty"`
	CoverImage   string            `db:"cover_image" json:"cover_image"`
	Status       OpportunityStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationDraft       ApplicationStatus = "draft"
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationApproved    ApplicationStatus = "approved"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Application is a member's submission to an opportunity.
type Application struct {
	ID                     string            `db:"id" json:"id"`
	UserID                 string            `db:"user_id" json:"user_id"`
	OpportunityID          *string           `db:"opportunity_id" json:"opportunity_id,omitempty"`
	CompetitionName        string            `db:"competition_name" json:"competition_name"`
	BusinessName           *string           `db:"business_name" json:"business_name,omitempty"`
	BusinessIdea           *string           `db:"business_idea" json:"business_idea,omitempty"`
	Status                 ApplicationStatus `db:"status" json:"status"`
	CompletionPercentage   int               `db:"completion_percentage" json:"completion_percentage"`
	DocumentsUploaded      int               `db:"documents_uploaded" json:"documents_uploaded"`
	TotalDocumentsRequired int               `db:"total_documents_required" json:"total_documents_required"`
	AdminNotes             *string           `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt              time.Time         `db:"created_at" json:"created_at"`
	SubmittedAt            *time.Time        `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt             *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// CreateOpportunityRequest is the admin payload for a new opportunity.
type CreateOpportunityRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  string  `json:"description" validate:"required"`
	Requirements string  `json:"requirements" validate:"required"`
	Deadline     string  `json:"deadline" validate:"required,datetime=2006-01-02"`
	PrizeAmount  *string `json:"prize_amount" validate:"omitempty,max=100"`
	CoverImage   string  `json:"cover_image" validate:"omitempty,max=500"`
}

// ApplyRequest is a member's application payload.
type ApplyRequest struct {
	BusinessName string `json:"business_name" validate:"max=200"`
	BusinessIdea string `json:"business_idea"`
}

// UpdateApplicationRequest is the admin review payload.
type UpdateApplicationRequest struct {
	Status     ApplicationStatus `json:"status" validate:"required,oneof=draft submitted under_review approved rejected"`
	AdminNotes string            `json:"admin_notes"`
}
