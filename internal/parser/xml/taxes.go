package xml

import (
	"github.com/beevik/etree"

	"github.com/fiscalxml/processor/internal/model"
)

// taxSpec names the container element and the value/rate tags of one tax
// kind inside an item's imposto block.
type taxSpec struct {
	container string
	value     string
	rate      string
}

var (
	icmsSpec   = taxSpec{"ICMS", "vICMS", "pICMS"}
	ipiSpec    = taxSpec{"IPI", "vIPI", "pIPI"}
	pisSpec    = taxSpec{"PIS", "vPIS", "pPIS"}
	cofinsSpec = taxSpec{"COFINS", "vCOFINS", "pCOFINS"}
)

// resolveTax scans the mutually exclusive sub-variant children of a tax
// container (ICMS00, ICMS10, ICMSSN102, PISAliq, IPITrib, ...) and resolves
// the first variant that carries any data. The schemas guarantee at most one
// populated variant per container; structural elements like IPI/cEnq carry
// no CST, base or value and are skipped by the same check.
func resolveTax(imposto *etree.Element, spec taxSpec) model.TaxDetail {
	if imposto == nil {
		return model.TaxDetail{}
	}
	container := imposto.SelectElement(spec.container)
	if container == nil {
		return model.TaxDetail{}
	}

	for _, variant := range container.ChildElements() {
		detail := model.TaxDetail{
			CST:   findText(variant, "CST", "CSOSN"),
			Base:  findDecimal(variant, "vBC"),
			Value: findDecimal(variant, spec.value),
			Rate:  findDecimal(variant, spec.rate),
		}
		if detail.CST != "" || !detail.Base.IsZero() || !detail.Value.IsZero() {
			return detail
		}
	}
	return model.TaxDetail{}
}
