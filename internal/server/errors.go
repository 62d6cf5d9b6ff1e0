package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/marcus/story-validator/internal/db"
	"github.com/marcus/story-validator/internal/pipeline"
)

// HTTPStatus maps internal errors to response codes.
func HTTPStatus(err error) int {
	var storyNotFound *db.StoryNotFoundError
	if errors.As(err, &storyNotFound) {
		return http.StatusNotFound
	}

	var validationNotFound *db.ValidationNotFoundError
	if errors.As(err, &validationNotFound) {
		return http.StatusNotFound
	}

	var inputErr *pipeline.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
