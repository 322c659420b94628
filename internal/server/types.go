package server

import (
	"github.com/fiscalxml/processor/internal/model"
)

// ProcessResponse is the response for the process endpoint.
type ProcessResponse struct {
	Status     string          `json:"status"`
	DocumentID string          `json:"document_id,omitempty"`
	Type       string          `json:"type"`
	Document   *model.Document `json:"document,omitempty"`
}

// ValidationResponse is the response for the validate endpoint.
type ValidationResponse struct {
	Valid  bool                    `json:"valid"`
	Type   string                  `json:"type,omitempty"`
	Issues []model.ValidationIssue `json:"issues,omitempty"`
	Errors []string                `json:"errors,omitempty"`
}

// DetectResponse is the response for the detect endpoint.
type DetectResponse struct {
	Type    string `json:"type"`
	Pattern string `json:"pattern,omitempty"`
	Size    int    `json:"size"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
