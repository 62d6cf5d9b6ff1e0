package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStoryNotFoundError_Message(t *testing.T) {
	err := &StoryNotFoundError{StoryID: "ST-7"}
	assert.Equal(t, "story not found: ST-7", err.Error())
}

func TestValidationNotFoundError_Message(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	err := &ValidationNotFoundError{ValidationID: id}
	assert.Contains(t, err.Error(), id.String())
}
