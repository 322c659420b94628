package cmd

import (
	"github.com/fiscalxml/processor/internal/model"
	"github.com/fiscalxml/processor/internal/processor"
)

// processResult is the CLI-facing shape of a pipeline result.
type processResult struct {
	File       string          `json:"file"`
	Status     string          `json:"status"`
	Type       string          `json:"type,omitempty"`
	DocumentID string          `json:"document_id,omitempty"`
	Document   *model.Document `json:"document,omitempty"`
	ElapsedMS  int64           `json:"elapsed_ms"`
	Error      string          `json:"error,omitempty"`
}

func newProcessResult(r *processor.Result) *processResult {
	out := &processResult{
		File:      r.File,
		Status:    string(r.Status),
		Document:  r.Document,
		ElapsedMS: r.Elapsed.Milliseconds(),
	}
	if r.Document != nil {
		out.Type = r.DocumentType.String()
		out.DocumentID = r.DocumentID
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// validationResult is the CLI-facing shape of a validation run.
type validationResult struct {
	File   string                  `json:"file"`
	Valid  bool                    `json:"valid"`
	Type   string                  `json:"type,omitempty"`
	Issues []model.ValidationIssue `json:"issues,omitempty"`
	Errors []string                `json:"errors,omitempty"`
}
