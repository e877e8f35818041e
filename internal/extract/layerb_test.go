package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

func TestLayerBWindowSearch(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "issue_date",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindDate,
		Aliases:  []string{"date of issue"},
		Pattern:  `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	})

	// The label and the value sit on different lines with no anchoring
	// separator; only the proximity window can associate them.
	raw := "ACME EXPORTS\nDate of issue stated below\nsome filler\n15/03/2026 Sao Paulo"
	c, ok := layerB(raw, splitLines(raw), def, 0)
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", c.Value)
	assert.InDelta(t, 0.72, c.Confidence, 1e-9)
}

func TestLayerBWindowLooksBack(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "issue_date",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindDate,
		Aliases:  []string{"issue date"},
		Pattern:  `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	})

	raw := "15/03/2026\nIssue date above"
	c, ok := layerB(raw, splitLines(raw), def, 0)
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", c.Value)
}

func TestLayerBWholeTextFallbackForDates(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "issue_date",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindDate,
		Aliases:  []string{"date of issue"},
		Pattern:  `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	})

	// No alias anywhere: the kind-level whole-text pattern still finds the
	// only date in the document, at reduced confidence.
	raw := "ACME EXPORTS\nSao Paulo 15/03/2026\ngoods as per contract"
	c, ok := layerB(raw, splitLines(raw), def, 0)
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", c.Value)
	assert.InDelta(t, 0.58, c.Confidence, 1e-9)
}

func TestLayerBWholeTextImplausibleDateRejected(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "issue_date",
		DocTypes: []model.DocType{model.DocInvoice},
		Kind:     model.KindDate,
		Aliases:  []string{"date of issue"},
		Pattern:  `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	})

	raw := "founded 01/01/1850\nnothing else"
	_, ok := layerB(raw, splitLines(raw), def, 0)
	assert.False(t, ok)
}

func TestLayerBNoWholeTextForFreeTextFields(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:     "shipper",
		DocTypes: []model.DocType{model.DocBL},
		Kind:     model.KindString,
		Aliases:  []string{"shipper"},
		Pattern:  `([A-Za-z0-9&.,\-\s]{3,})`,
	})

	// A free-text pattern would match almost any line; without an alias
	// mention the field must stay unresolved rather than guess.
	raw := "completely unrelated narrative text about the voyage"
	_, ok := layerB(raw, splitLines(raw), def, 0)
	assert.False(t, ok)
}

func TestLayerBVocabularyWholeText(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:       "incoterm",
		DocTypes:   []model.DocType{model.DocInvoice},
		Kind:       model.KindString,
		Aliases:    []string{"incoterm"},
		Pattern:    `\b(EXW|FCA|FAS|FOB|CFR|CIF|CPT|CIP|DAP|DPU|DDP)\b`,
		Vocabulary: []string{"EXW", "FCA", "FAS", "FOB", "CFR", "CIF", "CPT", "CIP", "DAP", "DPU", "DDP"},
	})

	// Closed vocabulary: the term is found anywhere in the text even with
	// no label near it.
	raw := "price basis FOB Santos as agreed"
	c, ok := layerB(raw, splitLines(raw), def, 0)
	require.True(t, ok)
	assert.Equal(t, "FOB", c.Value)
}

func TestLayerBContextScanWholeText(t *testing.T) {
	def := compiledDef(t, model.FieldDefinition{
		Name:        "consignee_cnpj",
		DocTypes:    []model.DocType{model.DocInvoice},
		Kind:        model.KindIdentifier,
		Aliases:     []string{"cnpj"},
		Pattern:     `(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})`,
		ContextScan: true,
	})

	raw := "IMPORTADORA XYZ LTDA\n12.345.678/0001-95\nRua das Flores 100"
	c, ok := layerB(raw, splitLines(raw), def, 0)
	require.True(t, ok)
	assert.Equal(t, "12.345.678/0001-95", c.Value)
}

func TestMentionsAlias(t *testing.T) {
	assert.True(t, mentionsAlias("Total Invoice Value: 100", []string{"invoice value"}))
	assert.False(t, mentionsAlias("Total freight", []string{"invoice value"}))
}
