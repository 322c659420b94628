package xml

import (
	"context"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/fiscalxml/processor/internal/model"
	"github.com/fiscalxml/processor/internal/normalize"
)

// paymentLabels maps the national tPag payment method codes to their names.
var paymentLabels = map[string]string{
	"01": "Dinheiro",
	"02": "Cheque",
	"03": "Cartão de Crédito",
	"04": "Cartão de Débito",
	"05": "Crédito Loja",
	"10": "Vale Alimentação",
	"11": "Vale Refeição",
	"12": "Vale Presente",
	"13": "Vale Combustível",
	"15": "Boleto Bancário",
	"16": "Depósito Bancário",
	"17": "PIX",
	"18": "Transferência Bancária",
	"19": "Programa de Fidelidade",
	"90": "Sem Pagamento",
	"99": "Outros",
}

type productInvoiceExtractor struct{}

func newProductInvoiceExtractor() *productInvoiceExtractor {
	return &productInvoiceExtractor{}
}

func (e *productInvoiceExtractor) DocumentType() model.DocumentType {
	return model.TypeProductInvoice
}

func (e *productInvoiceExtractor) Extract(_ context.Context, in *model.RawInput) (*model.Document, error) {
	tree, err := parseTree(in.Content)
	if err != nil {
		return nil, model.NewParseError(e.DocumentType(), "root", "malformed XML", err)
	}
	return extractInvoice(&tree.Element, e.DocumentType()), nil
}

// extractInvoice handles the NFe schema shared by product and consumer
// invoices. Every field resolves through a fallback chain; a missing element
// leaves the zero value in place.
func extractInvoice(root *etree.Element, t model.DocumentType) *model.Document {
	doc := &model.Document{Type: t}

	doc.Number = findText(root, "//infNFe/ide/nNF", "//ide/nNF")
	doc.Series = findText(root, "//infNFe/ide/serie", "//ide/serie")
	doc.ModelCode = findText(root, "//infNFe/ide/mod", "//ide/mod")
	doc.OperationNature = findText(root, "//infNFe/ide/natOp", "//ide/natOp")
	doc.IssuedAt = findDate(root, "//ide/dhEmi", "//ide/dEmi")
	doc.ExitAt = findDate(root, "//ide/dhSaiEnt", "//ide/dSaiEnt")

	// The authorization protocol carries the definitive access key; without
	// it the key is recovered from the infNFe Id attribute.
	doc.AccessKey = findText(root, "//protNFe/infProt/chNFe")
	if doc.AccessKey == "" {
		doc.AccessKey = strings.TrimPrefix(findAttr(root, "Id", "//infNFe"), "NFe")
	}
	doc.ProtocolNumber = findText(root, "//protNFe/infProt/nProt")
	doc.ProtocolAt = findDate(root, "//protNFe/infProt/dhRecbto")

	doc.Issuer = extractParty(root, "//emit", "//emit/enderEmit")
	doc.Recipient = extractParty(root, "//dest", "//dest/enderDest")

	doc.Totals = model.Totals{
		Products:  findDecimal(root, "//total/ICMSTot/vProd"),
		Freight:   findDecimal(root, "//total/ICMSTot/vFrete"),
		Insurance: findDecimal(root, "//total/ICMSTot/vSeg"),
		Discount:  findDecimal(root, "//total/ICMSTot/vDesc"),
		Other:     findDecimal(root, "//total/ICMSTot/vOutro"),
		Grand:     findDecimal(root, "//total/ICMSTot/vNF"),
	}
	doc.Taxes = model.TaxTotals{
		ICMSBase:   findDecimal(root, "//total/ICMSTot/vBC"),
		ICMS:       findDecimal(root, "//total/ICMSTot/vICMS"),
		ICMSSTBase: findDecimal(root, "//total/ICMSTot/vBCST"),
		ICMSST:     findDecimal(root, "//total/ICMSTot/vST"),
		IPI:        findDecimal(root, "//total/ICMSTot/vIPI"),
		PIS:        findDecimal(root, "//total/ICMSTot/vPIS"),
		COFINS:     findDecimal(root, "//total/ICMSTot/vCOFINS"),
	}
	doc.ComputeTaxTotal()

	doc.Transport = model.Transport{
		Modality:     findText(root, "//transp/modFrete"),
		CarrierTaxID: normalize.CleanTaxID(findText(root, "//transp/transporta/CNPJ", "//transp/transporta/CPF")),
		CarrierName:  findText(root, "//transp/transporta/xNome"),
	}

	code := findText(root, "//pag/detPag/tPag", "//pag/tPag")
	doc.Payment = model.Payment{
		MethodCode: code,
		Method:     paymentLabels[code],
		Amount:     findDecimal(root, "//pag/detPag/vPag", "//pag/vPag"),
	}

	doc.Notes = findText(root, "//infAdic/infCpl")

	items := root.FindElements("//infNFe/det")
	if len(items) == 0 {
		items = root.FindElements("//det")
	}
	for i, det := range items {
		doc.Items = append(doc.Items, extractItem(det, i))
	}

	return doc
}

func extractParty(root *etree.Element, base, addr string) model.Party {
	return model.Party{
		TaxID:             normalize.CleanTaxID(findText(root, base+"/CNPJ", base+"/CPF")),
		Name:              findText(root, base+"/xNome"),
		TradeName:         findText(root, base+"/xFant"),
		StateRegistration: findText(root, base+"/IE"),
		Street:            findText(root, addr+"/xLgr"),
		Number:            findText(root, addr+"/nro"),
		District:          findText(root, addr+"/xBairro"),
		City:              findText(root, addr+"/xMun"),
		State:             findText(root, addr+"/UF"),
		PostalCode:        findText(root, addr+"/CEP"),
	}
}

func extractItem(det *etree.Element, index int) model.LineItem {
	item := model.LineItem{Number: index + 1}
	if n, err := strconv.Atoi(det.SelectAttrValue("nItem", "")); err == nil {
		item.Number = n
	}

	item.Code = findText(det, "prod/cProd")
	item.EAN = itemEAN(det)
	item.Description = findText(det, "prod/xProd")
	item.NCM = findText(det, "prod/NCM")
	item.CFOP = findText(det, "prod/CFOP")
	item.Unit = findText(det, "prod/uCom")
	item.Quantity = findDecimal(det, "prod/qCom")
	item.UnitValue = findDecimal(det, "prod/vUnCom")
	item.TotalValue = findDecimal(det, "prod/vProd")

	imposto := det.SelectElement("imposto")
	item.ICMS = resolveTax(imposto, icmsSpec)
	item.IPI = resolveTax(imposto, ipiSpec)
	item.PIS = resolveTax(imposto, pisSpec)
	item.COFINS = resolveTax(imposto, cofinsSpec)
	item.ComputeTaxes()

	return item
}

// itemEAN prefers the taxable barcode and drops the "SEM GTIN" placeholder
// emitters use for products without one.
func itemEAN(det *etree.Element) string {
	ean := findText(det, "prod/cEANTrib", "prod/cEAN")
	if strings.EqualFold(ean, "SEM GTIN") {
		return ""
	}
	return ean
}
