package xml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalxml/processor/internal/model"
)

const sampleCTe = `<?xml version="1.0" encoding="UTF-8"?>
<cteProc xmlns="http://www.portalfiscal.inf.br/cte" versao="3.00">
  <CTe>
    <infCte Id="CTe35240398765432000188570010000004561000004567" versao="3.00">
      <ide>
        <mod>57</mod>
        <serie>1</serie>
        <nCT>456</nCT>
        <dhEmi>2024-03-20T08:00:00-03:00</dhEmi>
        <natOp>PRESTACAO DE SERVICO DE TRANSPORTE</natOp>
        <modal>01</modal>
        <tpServ>0</tpServ>
        <CFOP>5353</CFOP>
      </ide>
      <emit>
        <CNPJ>98765432000188</CNPJ>
        <xNome>Transportes Rapidos LTDA</xNome>
        <enderEmit><xMun>Campinas</xMun><UF>SP</UF></enderEmit>
      </emit>
      <rem>
        <CNPJ>12345678000195</CNPJ>
        <xNome>Distribuidora Exemplo LTDA</xNome>
      </rem>
      <dest>
        <CNPJ>11222333000144</CNPJ>
        <xNome>Loja Destino ME</xNome>
      </dest>
      <vPrest>
        <vTPrest>350.00</vTPrest>
        <vRec>350.00</vRec>
      </vPrest>
      <imp>
        <ICMS>
          <ICMS00>
            <CST>00</CST>
            <vBC>350.00</vBC>
            <pICMS>12.00</pICMS>
            <vICMS>42.00</vICMS>
          </ICMS00>
        </ICMS>
        <vTotTrib>42.00</vTotTrib>
      </imp>
      <infCTeNorm>
        <infCarga>
          <vCarga>15000.00</vCarga>
          <proPred>Autopecas</proPred>
        </infCarga>
      </infCTeNorm>
    </infCte>
  </CTe>
  <protCTe>
    <infProt>
      <chCTe>35240398765432000188570010000004561000004567</chCTe>
      <nProt>135240000000099</nProt>
      <dhRecbto>2024-03-20T08:01:10-03:00</dhRecbto>
    </infProt>
  </protCTe>
</cteProc>`

func TestExtract_CTe(t *testing.T) {
	doc, det := extractOne(t, "cte.xml", sampleCTe)

	assert.Equal(t, model.TypeWaybill, det.Type)
	assert.Equal(t, model.TypeWaybill, doc.Type)
	assert.Equal(t, "456", doc.Number)
	assert.Equal(t, "57", doc.ModelCode)
	assert.Equal(t, "35240398765432000188570010000004561000004567", doc.AccessKey)
	assert.Equal(t, "135240000000099", doc.ProtocolNumber)

	assert.Equal(t, "98765432000188", doc.Issuer.TaxID)
	assert.Equal(t, "Transportes Rapidos LTDA", doc.Issuer.Name)
	assert.Equal(t, "11222333000144", doc.Recipient.TaxID)

	assert.Equal(t, "350", doc.Totals.Grand.String())
	assert.Equal(t, "42", doc.Taxes.ICMS.String())
	assert.Equal(t, "42", doc.TaxTotal.String())

	assert.Equal(t, "12345678000195", doc.Extra["sender_tax_id"])
	assert.Equal(t, "01", doc.Extra["modal"])
	assert.Equal(t, "5353", doc.Extra["cfop"])
	assert.Equal(t, "15000.00", doc.Extra["cargo_value"])
	assert.Equal(t, "Autopecas", doc.Extra["cargo_description"])

	assert.Empty(t, doc.Items, "waybills have no product lines")
}

func TestExtract_CTe_AccessKeyFallback(t *testing.T) {
	content := `<CTe xmlns="http://www.portalfiscal.inf.br/cte">
  <infCte Id="CTe35240398765432000188570010000004561000004567">
    <ide><mod>57</mod><nCT>456</nCT></ide>
  </infCte>
</CTe>`

	doc, _ := extractOne(t, "cte-bare.xml", content)
	require.Equal(t, model.TypeWaybill, doc.Type)
	assert.Equal(t, "35240398765432000188570010000004561000004567", doc.AccessKey)
}
