package models

import "time"

// EnrollmentStatus is the course-level progress state.
type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
)

// ModuleStatus is the per-module progress state.
type ModuleStatus string

const (
	ModuleNotStarted ModuleStatus = "not_started"
	ModuleInProgress ModuleStatus = "in_progress"
	ModuleCompleted  ModuleStatus = "completed"
)

// Valid reports whether s is a known module status.
func (s ModuleStatus) Valid() bool {
	switch s {
	case ModuleNotStarted, ModuleInProgress, ModuleCompleted:
		return true
	}
	return false
}

// Enrollment links a user to a course (user_courses). CompletedModules,
// ProgressPercentage, Status and CompletedAt are derived by the progress engine.
type Enrollment struct {
	ID                 string           `db:"id" json:"id"`
	UserID             string           `db:"user_id" json:"user_id"`
	CourseID           string           `db:"course_id" json:"course_id"`
	CurrentModule      int              `db:"current_module" json:"current_module"`
	CompletedModules   int              `db:"completed_modules" json:"completed_modules"`
	ProgressPercentage int              `db:"progress_percentage" json:"progress_percentage"`
	Status             EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt         time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CompletedAt        *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// EnrollmentDetail enriches an enrollment with course info.
type EnrollmentDetail struct {
	Enrollment
	CourseTitle  string      `db:"course_title" json:"course_title"`
	CourseLevel  CourseLevel `db:"course_level" json:"course_level"`
	TotalModules int         `db:"total_modules" json:"total_modules"`
}

// ModuleProgress tracks one user's state on one course module.
type ModuleProgress struct {
	ID          string       `db:"id" json:"id"`
	UserID      string       `db:"user_id" json:"user_id"`
	ModuleID    string       `db:"module_id" json:"module_id"`
	Status      ModuleStatus `db:"status" json:"status"`
	StartedAt   *time.Time   `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}

// ModuleWithProgress pairs a module with the user's progress row, if any.
type ModuleWithProgress struct {
	Module   CourseModule    `json:"module"`
	Progress *ModuleProgress `json:"progress"`
}

// CourseProgress is an enrollment with its per-module grid.
type CourseProgress struct {
	Course     Course               `json:"course"`
	Enrollment Enrollment           `json:"enrollment"`
	Modules    []ModuleWithProgress `json:"modules"`
}

// ModuleView is what a member sees when opening a module.
type ModuleView struct {
	Course   Course         `json:"course"`
	Module   CourseModule   `json:"module"`
	Progress ModuleProgress `json:"progress"`
}

// EducationOverview summarises a member's enrollments and the remaining catalog.
type EducationOverview struct {
	InProgress       []EnrollmentDetail `json:"in_progress_courses"`
	Completed        []EnrollmentDetail `json:"completed_courses"`
	TotalCourses     int                `json:"total_courses"`
	CompletedCount   int                `json:"completed_count"`
	InProgressCount  int                `json:"in_progress_count"`
	OverallProgress  int                `json:"overall_progress"`
	AvailableCourses []Course           `json:"available_courses"`
}

// UserProgressReport is the admin view of one member's progress.
type UserProgressReport struct {
	User     User             `json:"user"`
	Progress []CourseProgress `json:"progress"`
}

// SetModuleStatusRequest is the admin override payload.
type SetModuleStatusRequest struct {
	Status ModuleStatus `json:"status" validate:"required"`
}
