package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schema:
//
//	CREATE TABLE validation_comments (
//	    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    validation_id UUID NOT NULL REFERENCES validations(id),
//	    author        TEXT NOT NULL,
//	    body          TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// Comments are append-only: a stored validation result is never edited,
// corrections and reviewer notes attach alongside it.

// Comment is a reviewer note on a stored validation.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	ValidationID uuid.UUID `json:"validation_id"`
	Author       string    `json:"author"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddComment appends a comment to a validation and returns its ID.
func (db *DB) AddComment(ctx context.Context, validationID uuid.UUID, author, body string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO validation_comments (validation_id, author, body)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		validationID, author, body,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return id, nil
}

// ListComments retrieves all comments on a validation, oldest first.
func (db *DB) ListComments(ctx context.Context, validationID uuid.UUID) ([]Comment, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, validation_id, author, body, created_at
		 FROM validation_comments WHERE validation_id = $1
		 ORDER BY created_at ASC`,
		validationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ValidationID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}
