package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

func invoiceNumberDef(t *testing.T) model.FieldDefinition {
	t.Helper()
	return compiledDef(t, model.FieldDefinition{
		Name:     "invoice_number",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindIdentifier,
		Aliases:  []string{"invoice number", "invoice no", "fatura"},
		Pattern:  `([A-Z0-9\-/]{4,})`,
	})
}

func compiledDef(t *testing.T, def model.FieldDefinition) model.FieldDefinition {
	t.Helper()
	cat, err := newTestCatalog(def)
	require.NoError(t, err)
	return cat.Fields()[0]
}

func TestLayerAInlineMatch(t *testing.T) {
	def := invoiceNumberDef(t)
	matchers := compileAliasMatchers(def)
	lines := splitLines("ACME EXPORTS LTD\nInvoice Number: INV-2026/001\nDate: 15/03/2026")

	c, ok := layerA(lines, def, matchers, 0)
	require.True(t, ok)
	assert.Equal(t, "INV-2026/001", c.Value)
	assert.InDelta(t, 0.95, c.Confidence, 1e-9)
}

func TestLayerANextLineMatch(t *testing.T) {
	def := invoiceNumberDef(t)
	matchers := compileAliasMatchers(def)
	lines := splitLines("Invoice No:\nINV-2026/002\nsomething else")

	c, ok := layerA(lines, def, matchers, 0)
	require.True(t, ok)
	assert.Equal(t, "INV-2026/002", c.Value)
}

func TestLayerAAliasPriority(t *testing.T) {
	// The first alias in catalog order wins even when a later alias also
	// matches earlier in the document.
	def := invoiceNumberDef(t)
	matchers := compileAliasMatchers(def)
	lines := splitLines("Fatura: BR-0001/XX\nInvoice Number: INV-2026/003")

	c, ok := layerA(lines, def, matchers, 0)
	require.True(t, ok)
	assert.Equal(t, "INV-2026/003", c.Value)
}

func TestLayerAAccentedLabel(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "country_of_origin",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindCountry,
		Aliases:  []string{"país de origem"},
		Pattern:  `([A-Za-zÀ-ÿ]{3,}(?:\s+[A-Za-zÀ-ÿ.]{2,}){0,3})`,
	})
	matchers := compileAliasMatchers(def)

	for _, label := range []string{"País de Origem", "Pais de Origem"} {
		c, ok := layerA(splitLines(label+": Brasil"), def, matchers, 0)
		require.True(t, ok, label)
		assert.Equal(t, "BR", c.Value)
	}
}

func TestFoldDiacritics(t *testing.T) {
	assert.Equal(t, "Descricao da mercadoria", foldDiacritics("Descrição da mercadoria"))
	assert.Equal(t, "peso liquido", foldDiacritics("peso líquido"))
	assert.Equal(t, "plain ascii", foldDiacritics("plain ascii"))
}

func TestLayerANoMatch(t *testing.T) {
	def := invoiceNumberDef(t)
	matchers := compileAliasMatchers(def)
	lines := splitLines("no labels here at all\njust free prose")

	_, ok := layerA(lines, def, matchers, 0)
	assert.False(t, ok)
}

func TestLayerAOCRPenalty(t *testing.T) {
	def := invoiceNumberDef(t)
	matchers := compileAliasMatchers(def)
	lines := splitLines("Invoice Number: INV-2026/004")

	c, ok := layerA(lines, def, matchers, 0.05)
	require.True(t, ok)
	assert.InDelta(t, 0.90, c.Confidence, 1e-9)
}

func TestLayerANonConformantValueIsNoMatch(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "issue_date",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindDate,
		Aliases:  []string{"issue date"},
		Pattern:  `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	})
	matchers := compileAliasMatchers(def)
	// Anchored text matches the shape but is not a real date.
	lines := splitLines("Issue Date: 99/99/9999")

	_, ok := layerA(lines, def, matchers, 0)
	assert.False(t, ok)
}

func TestSplitLines(t *testing.T) {
	lines := splitLines("  a  \n\n\n b\t c \n")
	assert.Equal(t, []string{"a", "b c"}, lines)
}
