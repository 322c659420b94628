package xml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalxml/processor/internal/model"
)

const sampleNFSe = `<?xml version="1.0" encoding="UTF-8"?>
<CompNfse xmlns="http://www.abrasf.org.br/nfse.xsd">
  <Nfse>
    <InfNfse>
      <Numero>789</Numero>
      <CodigoVerificacao>AB12-CD34</CodigoVerificacao>
      <DataEmissao>2024-04-10T14:20:00</DataEmissao>
      <Servico>
        <Valores>
          <ValorServicos>1500.00</ValorServicos>
          <ValorIss>75.00</ValorIss>
          <Aliquota>5.00</Aliquota>
        </Valores>
        <Discriminacao>Consultoria em engenharia</Discriminacao>
        <CodigoMunicipio>3550308</CodigoMunicipio>
      </Servico>
      <PrestadorServico>
        <IdentificacaoPrestador>
          <Cnpj>12345678000195</Cnpj>
        </IdentificacaoPrestador>
        <RazaoSocial>Engenharia Exemplo LTDA</RazaoSocial>
        <Endereco>
          <Endereco>Av Paulista</Endereco>
          <Numero>1000</Numero>
        </Endereco>
      </PrestadorServico>
      <TomadorServico>
        <IdentificacaoTomador>
          <CpfCnpj><Cnpj>11222333000144</Cnpj></CpfCnpj>
        </IdentificacaoTomador>
        <RazaoSocial>Construtora Cliente SA</RazaoSocial>
      </TomadorServico>
    </InfNfse>
  </Nfse>
</CompNfse>`

func TestExtract_NFSe(t *testing.T) {
	doc, det := extractOne(t, "nfse.xml", sampleNFSe)

	assert.Equal(t, model.TypeServiceInvoice, det.Type)
	assert.Equal(t, model.TypeServiceInvoice, doc.Type)

	// The invoice number, not the street number of the provider address.
	assert.Equal(t, "789", doc.Number)

	require.NotNil(t, doc.IssuedAt)
	assert.Equal(t, "2024-04-10T14:20:00", doc.IssuedAt.Format("2006-01-02T15:04:05"))
	assert.Equal(t, "AB12-CD34", doc.Extra["verification_code"])

	assert.Equal(t, "12345678000195", doc.Issuer.TaxID)
	assert.Equal(t, "Engenharia Exemplo LTDA", doc.Issuer.Name)
	assert.Equal(t, "11222333000144", doc.Recipient.TaxID)
	assert.Equal(t, "Construtora Cliente SA", doc.Recipient.Name)

	assert.Equal(t, "1500", doc.Totals.Grand.String())
	assert.Equal(t, "75.00", doc.Extra["iss_value"])
	assert.Equal(t, "5.00", doc.Extra["iss_rate"])
	assert.Equal(t, "3550308", doc.Extra["municipality_code"])

	// ISS stays in Extra; the canonical tax total covers only the four
	// component taxes, which a service invoice does not carry.
	assert.True(t, doc.TaxTotal.IsZero())

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Consultoria em engenharia", doc.Items[0].Description)
	assert.Equal(t, "1500", doc.Items[0].TotalValue.String())
	assert.Equal(t, "Consultoria em engenharia", doc.Notes)
}

func TestExtract_NFSe_ForeignLocalNameCollision(t *testing.T) {
	// Local-name matching is deliberate for municipal dialects, but a
	// trailing embedded block (signatures, control records) can carry
	// colliding local names. Document order protects the real fields.
	content := `<?xml version="1.0" encoding="UTF-8"?>
<CompNfse xmlns="http://www.abrasf.org.br/nfse.xsd">
  <Nfse>
    <InfNfse>
      <Numero>321</Numero>
      <DataEmissao>2024-06-01T09:00:00</DataEmissao>
      <Servico>
        <Valores>
          <ValorServicos>800.00</ValorServicos>
        </Valores>
        <Discriminacao>Manutencao predial</Discriminacao>
      </Servico>
      <PrestadorServico>
        <IdentificacaoPrestador>
          <Cnpj>12345678000195</Cnpj>
        </IdentificacaoPrestador>
        <RazaoSocial>Predial Exemplo LTDA</RazaoSocial>
      </PrestadorServico>
    </InfNfse>
  </Nfse>
  <ctrl:RegistroControle xmlns:ctrl="http://example.com/controle">
    <ctrl:Numero>999999</ctrl:Numero>
    <ctrl:Cnpj>00000000000000</ctrl:Cnpj>
    <ctrl:ValorServicos>9.99</ctrl:ValorServicos>
    <ctrl:Discriminacao>registro interno</ctrl:Discriminacao>
  </ctrl:RegistroControle>
</CompNfse>`

	doc, _ := extractOne(t, "nfse-collision.xml", content)

	assert.Equal(t, model.TypeServiceInvoice, doc.Type)
	assert.Equal(t, "321", doc.Number)
	assert.Equal(t, "12345678000195", doc.Issuer.TaxID)
	assert.Equal(t, "800", doc.Totals.Grand.String())
	assert.Equal(t, "Manutencao predial", doc.Notes)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "800", doc.Items[0].TotalValue.String())
}

func TestExtract_NFSe_LowercaseDialect(t *testing.T) {
	content := `<GerarNfseResposta>
  <ListaNfse>
    <CompNfse>
      <Nfse>
        <InfNfse>
          <numero>55</numero>
          <dataEmissao>2024-05-01</dataEmissao>
          <prestador>
            <cnpj>12345678000195</cnpj>
            <razaoSocial>Servicos Gerais ME</razaoSocial>
          </prestador>
          <valorLiquidoNfse>200,00</valorLiquidoNfse>
        </InfNfse>
      </Nfse>
    </CompNfse>
  </ListaNfse>
</GerarNfseResposta>`

	doc, _ := extractOne(t, "nfse-dialect.xml", content)

	assert.Equal(t, model.TypeServiceInvoice, doc.Type)
	assert.Equal(t, "55", doc.Number)
	assert.Equal(t, "12345678000195", doc.Issuer.TaxID)
	assert.Equal(t, "200", doc.Totals.Grand.String())
}
