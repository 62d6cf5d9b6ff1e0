package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/marcus/story-validator/internal/pipeline"
)

// ValidateRequest starts a validation run for one story.
type ValidateRequest struct {
	StoryID  string   `json:"story_id" validate:"required"`
	CRDocIDs []string `json:"cr_doc_ids" validate:"omitempty,dive,required"`
	Verbose  bool     `json:"verbose"`
}

// CommentRequest appends a reviewer note to a validation.
type CommentRequest struct {
	Author string `json:"author" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

func (s *Server) decodeValidateRequest(r *http.Request) (*ValidateRequest, error) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &pipeline.InputError{Field: "body", Reason: "invalid JSON"}
	}
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeValidateRequest(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	result, err := s.runner.Run(r.Context(), pipeline.Options{
		StoryID:  req.StoryID,
		CRDocIDs: req.CRDocIDs,
		Verbose:  req.Verbose,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleValidateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeValidateRequest(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		errorResponse(w, err)
		return
	}

	result, err := s.runner.Run(r.Context(), pipeline.Options{
		StoryID:  req.StoryID,
		CRDocIDs: req.CRDocIDs,
		Verbose:  req.Verbose,
		OnProgress: func(event pipeline.ProgressEvent) {
			if writeErr := sse.WriteEvent("progress", event); writeErr != nil {
				fmt.Printf("failed to stream progress: %v\n", writeErr)
			}
		},
	})
	if err != nil {
		_ = sse.WriteError(err.Error())
		return
	}

	_ = sse.WriteComplete(result)
}

func (s *Server) handleGetValidation(w http.ResponseWriter, r *http.Request) {
	validationID, err := parseValidationID(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	result, err := s.store.GetValidation(r.Context(), validationID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, result)
}

// handleGetReport serves the rendered HTML report. The path stored on
// the result is resolved against the configured report directory and
// must stay inside it.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	validationID, err := parseValidationID(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	result, err := s.store.GetValidation(r.Context(), validationID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if result.ReportPath == "" {
		errorResponse(w, &pipeline.InputError{Field: "report", Reason: "no report stored for this validation"})
		return
	}

	path := result.ReportPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.config.ReportDir, filepath.Base(path))
	}
	if s.config.ReportDir != "" && !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.config.ReportDir)) {
		errorResponse(w, &pipeline.InputError{Field: "report", Reason: "report path outside report directory"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, path)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	validationID, err := parseValidationID(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, &pipeline.InputError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		errorResponse(w, err)
		return
	}

	// The validation must exist; comments never attach to unknown runs.
	if _, err := s.store.GetValidation(r.Context(), validationID); err != nil {
		errorResponse(w, err)
		return
	}

	commentID, err := s.store.AddComment(r.Context(), validationID, req.Author, req.Body)
	if err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"id": commentID.String()})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	validationID, err := parseValidationID(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	comments, err := s.store.ListComments(r.Context(), validationID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"comments": comments})
}

func (s *Server) handleListValidations(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("id")
	if storyID == "" {
		errorResponse(w, &pipeline.InputError{Field: "story_id", Reason: "must not be empty"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			errorResponse(w, &pipeline.InputError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = parsed
	}

	summaries, err := s.store.ListValidations(r.Context(), storyID, limit)
	if err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"validations": summaries})
}

func parseValidationID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &pipeline.InputError{Field: "validation_id", Reason: "must be a UUID"}
	}
	return id, nil
}
