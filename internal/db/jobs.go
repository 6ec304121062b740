package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Job Methods
// -----------------------------------------------------------------------------

const jobColumns = `id, user_id, job_title, company, location, salary, job_url, status,
	        applied_date, job_description, notes, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.UserID, &j.JobTitle, &j.Company, &j.Location, &j.Salary,
		&j.JobURL, &j.Status, &j.AppliedDate, &j.JobDescription, &j.Notes,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a tracked job. An empty status becomes "interested".
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*Job, error) {
	status := input.Status
	if status == "" {
		status = "interested"
	}

	j, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (user_id, job_title, company, location, salary, job_url, status,
		                   applied_date, job_description, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+jobColumns,
		input.UserID, input.JobTitle, input.Company, nullIfEmpty(input.Location),
		nullIfEmpty(input.Salary), nullIfEmpty(input.JobURL), status, input.AppliedDate,
		nullIfEmpty(input.JobDescription), nullIfEmpty(input.Notes),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return j, nil
}

// ListJobsByUser returns the user's jobs, newest first
func (db *DB) ListJobsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = DefaultJobListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}
