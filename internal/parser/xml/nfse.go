package xml

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fiscalxml/processor/internal/model"
	"github.com/fiscalxml/processor/internal/normalize"
)

// serviceInvoiceExtractor handles NFSe. Unlike the national schemas, every
// municipality emits its own dialect, so fields are located by local tag
// name, case-insensitively, instead of fixed paths.
type serviceInvoiceExtractor struct{}

func newServiceInvoiceExtractor() *serviceInvoiceExtractor {
	return &serviceInvoiceExtractor{}
}

func (e *serviceInvoiceExtractor) DocumentType() model.DocumentType {
	return model.TypeServiceInvoice
}

func (e *serviceInvoiceExtractor) Extract(_ context.Context, in *model.RawInput) (*model.Document, error) {
	tree, err := parseTree(in.Content)
	if err != nil {
		return nil, model.NewParseError(e.DocumentType(), "root", "malformed XML", err)
	}
	root := &tree.Element

	doc := &model.Document{Type: e.DocumentType()}

	// Scope the number lookup to the InfNfse block when present; a bare
	// subtree search would hit the street number of an address first in
	// some dialects.
	numberScope := findLocal(root, "infnfse")
	if numberScope == nil {
		numberScope = root
	}
	doc.Number = localText(numberScope, "numero")
	doc.IssuedAt = localDate(root, "dataemissao", "dataemissaonfse")
	doc.SetExtra("verification_code", localText(root, "codigoverificacao"))

	if prest := findLocal(root, "prestadorservico", "prestador"); prest != nil {
		doc.Issuer = model.Party{
			TaxID: normalize.CleanTaxID(localText(prest, "cnpj", "cpf")),
			Name:  localText(prest, "razaosocial", "nomefantasia"),
		}
	}
	if tomador := findLocal(root, "tomadorservico", "tomador"); tomador != nil {
		doc.Recipient = model.Party{
			TaxID: normalize.CleanTaxID(localText(tomador, "cnpj", "cpf")),
			Name:  localText(tomador, "razaosocial", "nomefantasia"),
		}
	}

	value := localDecimal(root, "valorservicos", "valorliquidonfse")
	doc.Totals.Grand = value
	doc.Totals.Products = value
	doc.ComputeTaxTotal()

	// ISS is a municipal tax outside the canonical ICMS/IPI/PIS/COFINS
	// slots; it is preserved in Extra rather than folded into the total.
	doc.SetExtra("iss_value", localText(root, "valoriss"))
	doc.SetExtra("iss_rate", localText(root, "aliquota"))
	doc.SetExtra("municipality_code", localText(root, "codigomunicipio"))

	description := localText(root, "discriminacao")
	doc.Notes = description

	if description != "" || !value.IsZero() {
		item := model.LineItem{
			Number:      1,
			Description: description,
			Quantity:    decimal.NewFromInt(1),
			UnitValue:   value,
			TotalValue:  value,
		}
		item.ComputeTaxes()
		doc.Items = append(doc.Items, item)
	}

	return doc, nil
}
