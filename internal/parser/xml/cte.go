package xml

import (
	"context"
	"strings"

	"github.com/fiscalxml/processor/internal/model"
)

// waybillExtractor handles CTe transport documents. Waybills have no product
// lines; modal-specific data that has no canonical slot lands in Extra.
type waybillExtractor struct{}

func newWaybillExtractor() *waybillExtractor {
	return &waybillExtractor{}
}

func (e *waybillExtractor) DocumentType() model.DocumentType {
	return model.TypeWaybill
}

func (e *waybillExtractor) Extract(_ context.Context, in *model.RawInput) (*model.Document, error) {
	tree, err := parseTree(in.Content)
	if err != nil {
		return nil, model.NewParseError(e.DocumentType(), "root", "malformed XML", err)
	}
	root := &tree.Element

	doc := &model.Document{Type: e.DocumentType()}

	doc.Number = findText(root, "//infCte/ide/nCT", "//ide/nCT")
	doc.Series = findText(root, "//infCte/ide/serie", "//ide/serie")
	doc.ModelCode = findText(root, "//infCte/ide/mod", "//ide/mod")
	doc.OperationNature = findText(root, "//infCte/ide/natOp", "//ide/natOp")
	doc.IssuedAt = findDate(root, "//ide/dhEmi", "//ide/dEmi")

	doc.AccessKey = findText(root, "//protCTe/infProt/chCTe")
	if doc.AccessKey == "" {
		doc.AccessKey = strings.TrimPrefix(findAttr(root, "Id", "//infCte"), "CTe")
	}
	doc.ProtocolNumber = findText(root, "//protCTe/infProt/nProt")
	doc.ProtocolAt = findDate(root, "//protCTe/infProt/dhRecbto")

	doc.Issuer = extractParty(root, "//emit", "//emit/enderEmit")
	doc.Recipient = extractParty(root, "//dest", "//dest/enderDest")

	// The sender of the cargo is distinct from the waybill issuer (the
	// carrier); it keeps only an Extra slot.
	sender := extractParty(root, "//rem", "//rem/enderReme")
	doc.SetExtra("sender_tax_id", sender.TaxID)
	doc.SetExtra("sender_name", sender.Name)

	doc.Totals.Grand = findDecimal(root, "//vPrest/vTPrest")
	doc.Totals.Products = findDecimal(root, "//vPrest/vRec")

	icms := resolveTax(findElement(root, "//infCte/imp", "//imp"), icmsSpec)
	doc.Taxes.ICMS = icms.Value
	doc.Taxes.ICMSBase = icms.Base
	doc.ComputeTaxTotal()

	doc.SetExtra("total_tributes", findText(root, "//imp/vTotTrib"))
	doc.SetExtra("modal", findText(root, "//ide/modal"))
	doc.SetExtra("service_type", findText(root, "//ide/tpServ"))
	doc.SetExtra("cfop", findText(root, "//ide/CFOP"))
	doc.SetExtra("cargo_value", findText(root, "//infCarga/vCarga"))
	doc.SetExtra("cargo_description", findText(root, "//infCarga/proPred"))

	doc.Notes = findText(root, "//compl/xObs")

	return doc, nil
}
