package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marcus/story-validator/internal/types"
)

// Schema:
//
//	CREATE TABLE stories (
//	    id                  TEXT PRIMARY KEY,
//	    title               TEXT NOT NULL,
//	    description         TEXT NOT NULL DEFAULT '',
//	    acceptance_criteria TEXT[] NOT NULL DEFAULT '{}',
//	    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);

// GetStoryByID loads a story. A missing story is a StoryNotFoundError,
// not a nil result.
func (db *DB) GetStoryByID(ctx context.Context, storyID string) (*types.Story, error) {
	var story types.Story
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, description, acceptance_criteria
		 FROM stories WHERE id = $1`,
		storyID,
	).Scan(&story.ID, &story.Title, &story.Description, &story.AcceptanceCriteria)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &StoryNotFoundError{StoryID: storyID}
		}
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}
	return &story, nil
}

// UpsertStory creates or replaces a story record.
func (db *DB) UpsertStory(ctx context.Context, story *types.Story) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO stories (id, title, description, acceptance_criteria)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET title = $2, description = $3, acceptance_criteria = $4, updated_at = NOW()`,
		story.ID, story.Title, story.Description, story.AcceptanceCriteria,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert story %s: %w", story.ID, err)
	}
	return nil
}
