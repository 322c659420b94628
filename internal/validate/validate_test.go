package validate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fiscalxml/processor/internal/model"
	"github.com/fiscalxml/processor/internal/validate"
)

func validDocument() *model.Document {
	issued := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return &model.Document{
		Type:      model.TypeProductInvoice,
		Number:    "123",
		AccessKey: strings.Repeat("3", 44),
		IssuedAt:  &issued,
		Issuer:    model.Party{TaxID: "12345678000195"},
		Recipient: model.Party{TaxID: "12345678901"},
		Totals:    model.Totals{Grand: decimal.NewFromInt(100)},
		Items:     []model.LineItem{{Number: 1, Description: "item"}},
	}
}

func fields(issues []model.ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Field)
	}
	return out
}

func TestCheck_CleanDocument(t *testing.T) {
	assert.Empty(t, validate.Check(validDocument()))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*model.Document)
		expected string
	}{
		{
			name:     "missing issuer tax id",
			mutate:   func(d *model.Document) { d.Issuer.TaxID = "" },
			expected: "issuer.tax_id",
		},
		{
			name:     "implausible issuer tax id",
			mutate:   func(d *model.Document) { d.Issuer.TaxID = "11111111111111" },
			expected: "issuer.tax_id",
		},
		{
			name:     "implausible recipient tax id",
			mutate:   func(d *model.Document) { d.Recipient.TaxID = "123" },
			expected: "recipient.tax_id",
		},
		{
			name:     "missing number",
			mutate:   func(d *model.Document) { d.Number = "" },
			expected: "number",
		},
		{
			name:     "missing issue date",
			mutate:   func(d *model.Document) { d.IssuedAt = nil },
			expected: "issued_at",
		},
		{
			name:     "zero total",
			mutate:   func(d *model.Document) { d.Totals.Grand = decimal.Zero },
			expected: "totals.grand",
		},
		{
			name:     "missing access key",
			mutate:   func(d *model.Document) { d.AccessKey = "" },
			expected: "access_key",
		},
		{
			name:     "truncated access key",
			mutate:   func(d *model.Document) { d.AccessKey = "35240312345" },
			expected: "access_key",
		},
		{
			name:     "invoice without items",
			mutate:   func(d *model.Document) { d.Items = nil },
			expected: "items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)

			issues := validate.Check(doc)
			assert.Contains(t, fields(issues), tt.expected)
			for _, issue := range issues {
				assert.Equal(t, model.SeverityWarning, issue.Severity)
			}
		})
	}
}

func TestCheck_EmptyRecipientAllowed(t *testing.T) {
	// Consumer invoices commonly omit the buyer entirely.
	doc := validDocument()
	doc.Type = model.TypeConsumerInvoice
	doc.Recipient = model.Party{}

	assert.Empty(t, validate.Check(doc))
}

func TestCheck_UnknownType(t *testing.T) {
	doc := &model.Document{Type: model.TypeUnknown}

	issues := validate.Check(doc)
	assert.Equal(t, []string{"type"}, fields(issues))
}

func TestCheck_ServiceInvoiceSkipsAccessKey(t *testing.T) {
	doc := validDocument()
	doc.Type = model.TypeServiceInvoice
	doc.AccessKey = ""

	assert.NotContains(t, fields(validate.Check(doc)), "access_key")
}
