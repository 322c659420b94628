// Package fiscal provides the public API for processing Brazilian fiscal
// XML documents.
//
// Example usage:
//
//	p := fiscal.NewProcessor()
//	result := p.Process(ctx, "nota.xml")
//	if result.Err != nil {
//	    log.Fatal(result.Err)
//	}
//	fmt.Println(result.Document.Totals.Grand)
package fiscal

import "github.com/fiscalxml/processor/internal/model"

// Re-export core types for the public API.
type (
	Document        = model.Document
	LineItem        = model.LineItem
	Party           = model.Party
	Totals          = model.Totals
	TaxTotals       = model.TaxTotals
	TaxDetail       = model.TaxDetail
	Payment         = model.Payment
	Transport       = model.Transport
	ValidationIssue = model.ValidationIssue
	DocumentType    = model.DocumentType
)

// Re-export document type constants.
const (
	TypeProductInvoice  = model.TypeProductInvoice
	TypeConsumerInvoice = model.TypeConsumerInvoice
	TypeWaybill         = model.TypeWaybill
	TypeServiceInvoice  = model.TypeServiceInvoice
	TypeUnknown         = model.TypeUnknown
)

// Re-export error types.
type (
	LoadError       = model.LoadError
	ParseError      = model.ParseError
	ExtractionError = model.ExtractionError
)

// ErrDuplicate is returned by stores for already-known documents.
var ErrDuplicate = model.ErrDuplicate
