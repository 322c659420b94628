package fiscal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalxml/processor/pkg/fiscal"
)

const libNFe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe">
  <NFe>
    <infNFe Id="NFe35240312345678000195550010000001231000001234">
      <ide><mod>55</mod><serie>1</serie><nNF>123</nNF><dhEmi>2024-03-15T10:30:00-03:00</dhEmi></ide>
      <emit><CNPJ>12345678000195</CNPJ><xNome>Distribuidora Exemplo</xNome></emit>
      <det nItem="1">
        <prod><cProd>P001</cProd><xProd>Parafuso</xProd><qCom>2</qCom><vUnCom>50.00</vUnCom><vProd>100.00</vProd></prod>
      </det>
      <total><ICMSTot><vProd>100.00</vProd><vNF>100.00</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestProcessor_ProcessBytes(t *testing.T) {
	p := fiscal.NewProcessor()

	result := p.ProcessBytes(context.Background(), "nota.xml", []byte(libNFe))
	require.Equal(t, fiscal.StatusSuccess, result.Status)
	require.NotNil(t, result.Document)

	assert.Equal(t, fiscal.TypeProductInvoice, result.Document.Type)
	assert.Equal(t, "123", result.Document.Number)
	assert.Equal(t, "100", result.Document.Totals.Grand.String())
}

func TestProcessor_WithMemoryStore(t *testing.T) {
	p := fiscal.NewProcessorWithOptions(fiscal.Options{Store: fiscal.NewMemoryStore()})
	ctx := context.Background()

	first := p.ProcessBytes(ctx, "a.xml", []byte(libNFe))
	require.Equal(t, fiscal.StatusSuccess, first.Status)
	assert.NotEmpty(t, first.DocumentID)

	second := p.ProcessBytes(ctx, "b.xml", []byte(libNFe))
	assert.Equal(t, fiscal.StatusSkipped, second.Status)
}
