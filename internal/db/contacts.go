package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Contact Methods
// -----------------------------------------------------------------------------

const contactColumns = `id, user_id, name, title, company, linkedin_url, email, phone,
	        notes, source, mutual_connections, created_at, updated_at`

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Title, &c.Company, &c.LinkedInURL,
		&c.Email, &c.Phone, &c.Notes, &c.Source, &c.MutualConnections,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.MutualConnections == nil {
		c.MutualConnections = []string{}
	}
	return &c, nil
}

// FindContactByLinkedIn returns the oldest contact of the user whose stored
// LinkedIn URL contains any of keys, case-insensitively. It returns nil when
// keys is empty or nothing matches.
func (db *DB) FindContactByLinkedIn(ctx context.Context, userID uuid.UUID, keys []string) (*Contact, error) {
	patterns := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != "" {
			patterns = append(patterns, containsPattern(key))
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	c, err := scanContact(db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+`
		 FROM contacts
		 WHERE user_id = $1 AND linkedin_url ILIKE ANY($2)
		 ORDER BY created_at ASC
		 LIMIT 1`,
		userID, patterns,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return c, nil
}

// GetContactByID retrieves a contact by its ID
func (db *DB) GetContactByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// CreateContact inserts a contact
func (db *DB) CreateContact(ctx context.Context, input *ContactCreateInput) (*Contact, error) {
	conns := input.MutualConnections
	if conns == nil {
		conns = []string{}
	}
	source := input.Source
	if source == "" {
		source = DefaultContactSource
	}

	c, err := scanContact(db.pool.QueryRow(ctx,
		`INSERT INTO contacts (user_id, name, title, company, linkedin_url, email, phone,
		                       notes, source, mutual_connections)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+contactColumns,
		input.UserID, input.Name, nullIfEmpty(input.Title), nullIfEmpty(input.Company),
		nullIfEmpty(input.LinkedInURL), nullIfEmpty(input.Email), nullIfEmpty(input.Phone),
		nullIfEmpty(input.Notes), source, conns,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c, nil
}

// UpdateMutualConnections locks the contact row, passes its current list to
// fn and writes the result when fn reports a change. Concurrent updates of
// one contact are serialized by the row lock. The returned contact reflects
// the stored state; nil means the contact does not exist.
func (db *DB) UpdateMutualConnections(ctx context.Context, id uuid.UUID, fn ConnectionsUpdate) (*Contact, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c, err := scanContact(tx.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock contact: %w", err)
	}

	updated, changed := fn(c.MutualConnections)
	if !changed {
		return c, nil
	}
	if updated == nil {
		updated = []string{}
	}

	err = tx.QueryRow(ctx,
		`UPDATE contacts SET mutual_connections = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING mutual_connections, updated_at`,
		updated, id,
	).Scan(&c.MutualConnections, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update mutual connections: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}
