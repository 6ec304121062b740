package db

import (
	"time"

	"github.com/google/uuid"
)

// Job is a tracked job application
type Job struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	JobTitle       string     `json:"job_title"`
	Company        string     `json:"company"`
	Location       *string    `json:"location"`
	Salary         *string    `json:"salary"`
	JobURL         *string    `json:"job_url"`
	Status         string     `json:"status"`
	AppliedDate    *time.Time `json:"applied_date"`
	JobDescription *string    `json:"job_description"`
	Notes          *string    `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// JobCreateInput contains fields for creating a job
type JobCreateInput struct {
	UserID         uuid.UUID
	JobTitle       string
	Company        string
	Location       string
	Salary         string
	JobURL         string
	Status         string
	AppliedDate    *time.Time
	JobDescription string
	Notes          string
}

// DefaultJobListLimit caps ListJobsByUser when no limit is given.
const DefaultJobListLimit = 50
