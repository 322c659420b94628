// Package model defines the canonical representation of Brazilian fiscal
// documents produced by the extraction engine.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies one of the supported fiscal document families.
type DocumentType string

const (
	TypeProductInvoice  DocumentType = "nfe"     // NFe - goods invoice
	TypeConsumerInvoice DocumentType = "nfce"    // NFCe - consumer-facing goods invoice
	TypeWaybill         DocumentType = "cte"     // CTe - transport waybill
	TypeServiceInvoice  DocumentType = "nfse"    // NFSe - service invoice
	TypeUnknown         DocumentType = "unknown" // unrecognized schema
)

// IsInvoice reports whether the type belongs to the NFe invoice family,
// which carries a 44-character access key.
func (t DocumentType) IsInvoice() bool {
	return t == TypeProductInvoice || t == TypeConsumerInvoice
}

func (t DocumentType) String() string { return string(t) }

// RawInput is a loaded, sanitized source file. Raw holds the original bytes
// (the fingerprint source); Content holds the sanitized UTF-8 text handed to
// the extractors. Immutable once loaded.
type RawInput struct {
	Name     string
	Path     string
	Size     int64
	Encoding string
	Raw      []byte
	Content  []byte
}

// Fingerprint returns the SHA-256 hex digest of the original bytes. Two
// byte-identical files always fingerprint identically regardless of how
// sanitization rewrote their content.
func (in *RawInput) Fingerprint() string {
	sum := sha256.Sum256(in.Raw)
	return hex.EncodeToString(sum[:])
}

// Party is an issuer or recipient of a fiscal document.
type Party struct {
	TaxID             string `json:"tax_id"` // CNPJ or CPF, digits only
	Name              string `json:"name"`
	TradeName         string `json:"trade_name,omitempty"`
	StateRegistration string `json:"state_registration,omitempty"`
	Street            string `json:"street,omitempty"`
	Number            string `json:"number,omitempty"`
	District          string `json:"district,omitempty"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
	PostalCode        string `json:"postal_code,omitempty"`
}

// Totals are the document-level financial totals.
type Totals struct {
	Products  decimal.Decimal `json:"products"`
	Freight   decimal.Decimal `json:"freight"`
	Insurance decimal.Decimal `json:"insurance"`
	Discount  decimal.Decimal `json:"discount"`
	Other     decimal.Decimal `json:"other"`
	Grand     decimal.Decimal `json:"grand"`
}

// TaxTotals are the document-level tax totals as declared by the source.
type TaxTotals struct {
	ICMSBase   decimal.Decimal `json:"icms_base"`
	ICMS       decimal.Decimal `json:"icms"`
	ICMSSTBase decimal.Decimal `json:"icms_st_base"`
	ICMSST     decimal.Decimal `json:"icms_st"`
	IPI        decimal.Decimal `json:"ipi"`
	PIS        decimal.Decimal `json:"pis"`
	COFINS     decimal.Decimal `json:"cofins"`
}

// Sum returns ICMS + IPI + PIS + COFINS. The document tax total is always
// this computed value, never a figure trusted from the source.
func (t TaxTotals) Sum() decimal.Decimal {
	return t.ICMS.Add(t.IPI).Add(t.PIS).Add(t.COFINS)
}

// Transport describes how the goods move.
type Transport struct {
	Modality     string `json:"modality,omitempty"`
	CarrierTaxID string `json:"carrier_tax_id,omitempty"`
	CarrierName  string `json:"carrier_name,omitempty"`
}

// Payment describes the declared payment method.
type Payment struct {
	MethodCode string          `json:"method_code,omitempty"`
	Method     string          `json:"method,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// TaxDetail is one canonical rate/base/value triple for a single tax kind
// on a line item, resolved from whichever sub-variant the source populated.
type TaxDetail struct {
	CST   string          `json:"cst,omitempty"` // CST or CSOSN code
	Base  decimal.Decimal `json:"base"`
	Value decimal.Decimal `json:"value"`
	Rate  decimal.Decimal `json:"rate"`
}

// LineItem is one product or service line of a document.
type LineItem struct {
	Number      int             `json:"number"`
	Code        string          `json:"code"`
	EAN         string          `json:"ean,omitempty"`
	Description string          `json:"description"`
	NCM         string          `json:"ncm,omitempty"`
	CFOP        string          `json:"cfop,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	TotalValue  decimal.Decimal `json:"total_value"`

	ICMS   TaxDetail `json:"icms"`
	IPI    TaxDetail `json:"ipi"`
	PIS    TaxDetail `json:"pis"`
	COFINS TaxDetail `json:"cofins"`

	TaxTotal decimal.Decimal `json:"tax_total"` // computed: icms+ipi+pis+cofins
	TaxRate  decimal.Decimal `json:"tax_rate"`  // computed: 100*TaxTotal/TotalValue, 0 when total is 0
}

// ComputeTaxes recalculates TaxTotal and TaxRate from the four tax details.
func (it *LineItem) ComputeTaxes() {
	it.TaxTotal = it.ICMS.Value.Add(it.IPI.Value).Add(it.PIS.Value).Add(it.COFINS.Value)
	if it.TotalValue.IsPositive() {
		it.TaxRate = it.TaxTotal.Mul(decimal.NewFromInt(100)).Div(it.TotalValue)
	} else {
		it.TaxRate = decimal.Zero
	}
}

// Severity of a validation issue. Issues never block persistence.
type Severity string

const SeverityWarning Severity = "warning"

// ValidationIssue is a non-fatal business-rule violation attached to an
// otherwise successfully extracted document.
type ValidationIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Document is the canonical, type-independent record extracted from one
// fiscal XML file. Created once; only the Issues list is appended afterwards.
type Document struct {
	Type      DocumentType `json:"type"`
	Number    string       `json:"number"`
	Series    string       `json:"series,omitempty"`
	ModelCode string       `json:"model_code,omitempty"`

	IssuedAt *time.Time `json:"issued_at,omitempty"`
	ExitAt   *time.Time `json:"exit_at,omitempty"`

	// AccessKey is the fixed 44-character national identifier carried by
	// invoice-family documents and waybills.
	AccessKey       string     `json:"access_key,omitempty"`
	ProtocolNumber  string     `json:"protocol_number,omitempty"`
	ProtocolAt      *time.Time `json:"protocol_at,omitempty"`
	OperationNature string     `json:"operation_nature,omitempty"`

	Issuer    Party `json:"issuer"`
	Recipient Party `json:"recipient"`

	Totals    Totals          `json:"totals"`
	Taxes     TaxTotals       `json:"taxes"`
	TaxTotal  decimal.Decimal `json:"tax_total"` // computed from Taxes, never trusted from source
	Transport Transport       `json:"transport"`
	Payment   Payment         `json:"payment"`
	Notes     string          `json:"notes,omitempty"`

	// Extra holds type-specific fields that have no canonical slot
	// (waybill modal, service-invoice verification code, ISS values, ...).
	Extra map[string]string `json:"extra,omitempty"`

	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	FileSize    int64  `json:"file_size"`
	ContentHash string `json:"content_hash"`

	Items  []LineItem        `json:"items"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// ComputeTaxTotal recalculates the document tax total from its tax totals.
func (d *Document) ComputeTaxTotal() {
	d.TaxTotal = d.Taxes.Sum()
}

// AppendIssue attaches a warning to the document.
func (d *Document) AppendIssue(field, message string) {
	d.Issues = append(d.Issues, ValidationIssue{Field: field, Message: message, Severity: SeverityWarning})
}

// SetExtra records a type-specific field, allocating the map on first use.
func (d *Document) SetExtra(key, value string) {
	if value == "" {
		return
	}
	if d.Extra == nil {
		d.Extra = make(map[string]string)
	}
	d.Extra[key] = value
}
