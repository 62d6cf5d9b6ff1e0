package db

import (
	"fmt"

	"github.com/google/uuid"
)

// StoryNotFoundError indicates no story exists with the requested ID.
type StoryNotFoundError struct {
	StoryID string
}

func (e *StoryNotFoundError) Error() string {
	return fmt.Sprintf("story not found: %s", e.StoryID)
}

// ValidationNotFoundError indicates no validation result exists with
// the requested ID.
type ValidationNotFoundError struct {
	ValidationID uuid.UUID
}

func (e *ValidationNotFoundError) Error() string {
	return fmt.Sprintf("validation not found: %s", e.ValidationID)
}
