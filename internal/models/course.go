package models

import "time"

// CourseLevel grades course difficulty.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

// Course is a catalog entry. TotalModules is declared by the admin, not derived.
type Course struct {
	ID            string      `db:"id" json:"id"`
	Title         string      `db:"title" json:"title"`
	Description   string      `db:"description" json:"description"`
	DurationWeeks int         `db:"duration_weeks" json:"duration_weeks"`
	Level         CourseLevel `db:"level" json:"level"`
	TotalModules  int         `db:"total_modules" json:"total_modules"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// CourseModule belongs to one course; ModuleNumber orders modules within it.
type CourseModule struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	ModuleNumber int       `db:"module_number" json:"module_number"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Content      string    `db:"content" json:"content"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseWithModules is a course and its modules in module_number order.
type CourseWithModules struct {
	Course
	Modules []CourseModule `json:"modules"`
}

// CreateCourseRequest is the admin payload for a new course.
type CreateCourseRequest struct {
	Title         string      `json:"title" validate:"required,max=200"`
	Description   string      `json:"description" validate:"required"`
	DurationWeeks int         `json:"duration_weeks" validate:"min=1"`
	TotalModules  int         `json:"total_modules" validate:"min=0"`
	Level         CourseLevel `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
}

// CreateModuleRequest is the admin payload for a new course module.
type CreateModuleRequest struct {
	ModuleNumber int    `json:"module_number" validate:"min=1"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required"`
	Content      string `json:"content" validate:"required"`
	DurationDays int    `json:"duration_days" validate:"min=0"`
}
