// Package types defines the shared data model for story validation runs.
package types

import "strings"

// Story is a user story under validation. It is immutable once fetched
// for a validation run.
type Story struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// QueryText builds the free text used to embed the story for retrieval.
func (s *Story) QueryText() string {
	parts := make([]string, 0, 2+len(s.AcceptanceCriteria))
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	parts = append(parts, s.AcceptanceCriteria...)
	return strings.Join(parts, "\n")
}
