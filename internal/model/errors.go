package model

import (
	"errors"
	"fmt"
)

// ErrDuplicate is returned by storage when a document with the same content
// hash or access key already exists. Callers treat it as benign.
var ErrDuplicate = errors.New("document already exists")

// LoadFailure classifies fatal loader errors.
type LoadFailure string

const (
	LoadIOFailure       LoadFailure = "io_failure"
	LoadBadExtension    LoadFailure = "bad_extension"
	LoadSizeExceeded    LoadFailure = "size_exceeded"
	LoadEncodingFailure LoadFailure = "encoding_failure"
	LoadNotXML          LoadFailure = "not_xml"
)

// LoadError represents a fatal file-level error raised before extraction.
type LoadError struct {
	Path  string
	Kind  LoadFailure
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s (%v)", e.Path, e.Kind, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NewLoadError creates a new load error.
func NewLoadError(path string, kind LoadFailure, cause error) *LoadError {
	return &LoadError{Path: path, Kind: kind, Cause: cause}
}

// ParseError represents a parsing failure with document-type context.
type ParseError struct {
	Type    DocumentType
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Type, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error.
func NewParseError(t DocumentType, field, message string, cause error) *ParseError {
	return &ParseError{Type: t, Field: field, Message: message, Cause: cause}
}

// ExtractionError represents a model-level extraction failure. The registry
// absorbs it by falling back to the generic extractor; it only surfaces when
// even the generic extractor cannot recover any structure.
type ExtractionError struct {
	Type    DocumentType
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed [%s]: %s (%v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed [%s]: %s", e.Type, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new extraction error.
func NewExtractionError(t DocumentType, message string, cause error) *ExtractionError {
	return &ExtractionError{Type: t, Message: message, Cause: cause}
}
