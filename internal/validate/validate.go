// Package validate applies the business-rule checks that flag suspicious
// documents without blocking their persistence.
package validate

import (
	"fmt"

	"github.com/fiscalxml/processor/internal/model"
	"github.com/fiscalxml/processor/internal/normalize"
)

// accessKeyLength is the fixed length of the national access key carried by
// NFe-family documents and waybills.
const accessKeyLength = 44

// Check runs every rule against the document and returns the issues found.
// All issues are warnings; the caller appends them to the document and
// persists it anyway.
func Check(doc *model.Document) []model.ValidationIssue {
	var issues []model.ValidationIssue

	warn := func(field, message string) {
		issues = append(issues, model.ValidationIssue{
			Field:    field,
			Message:  message,
			Severity: model.SeverityWarning,
		})
	}

	if doc.Type == model.TypeUnknown {
		warn("type", "document schema not recognized")
		return issues
	}

	if doc.Issuer.TaxID == "" {
		warn("issuer.tax_id", "issuer tax id is missing")
	} else if !normalize.ValidTaxID(doc.Issuer.TaxID) {
		warn("issuer.tax_id", fmt.Sprintf("issuer tax id %q is not a plausible CNPJ/CPF", doc.Issuer.TaxID))
	}
	if doc.Recipient.TaxID != "" && !normalize.ValidTaxID(doc.Recipient.TaxID) {
		warn("recipient.tax_id", fmt.Sprintf("recipient tax id %q is not a plausible CNPJ/CPF", doc.Recipient.TaxID))
	}

	if doc.Number == "" {
		warn("number", "document number is missing")
	}
	if doc.IssuedAt == nil {
		warn("issued_at", "issue date is missing or unparseable")
	}
	if !doc.Totals.Grand.IsPositive() {
		warn("totals.grand", "document total is zero or negative")
	}

	if doc.Type.IsInvoice() || doc.Type == model.TypeWaybill {
		switch {
		case doc.AccessKey == "":
			warn("access_key", "access key is missing")
		case len(doc.AccessKey) != accessKeyLength:
			warn("access_key", fmt.Sprintf("access key has %d characters, expected %d", len(doc.AccessKey), accessKeyLength))
		}
	}

	if doc.Type.IsInvoice() && len(doc.Items) == 0 {
		warn("items", "invoice has no line items")
	}

	return issues
}
