package xml

import (
	"context"

	"github.com/fiscalxml/processor/internal/model"
)

// consumerInvoiceExtractor handles NFCe, which reuses the NFe schema with
// model code 65 plus a consumer-facing supplement block.
type consumerInvoiceExtractor struct{}

func newConsumerInvoiceExtractor() *consumerInvoiceExtractor {
	return &consumerInvoiceExtractor{}
}

func (e *consumerInvoiceExtractor) DocumentType() model.DocumentType {
	return model.TypeConsumerInvoice
}

func (e *consumerInvoiceExtractor) Extract(_ context.Context, in *model.RawInput) (*model.Document, error) {
	tree, err := parseTree(in.Content)
	if err != nil {
		return nil, model.NewParseError(e.DocumentType(), "root", "malformed XML", err)
	}

	doc := extractInvoice(&tree.Element, e.DocumentType())
	doc.SetExtra("qr_code", findText(&tree.Element, "//infNFeSupl/qrCode"))
	doc.SetExtra("consumer_url", findText(&tree.Element, "//infNFeSupl/urlChave"))
	return doc, nil
}
