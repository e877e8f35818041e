package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradedoc-cli/internal/catalog"
	"github.com/sells-group/tradedoc-cli/internal/model"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]model.FieldDefinition{
		{
			Name:     "total_value",
			DocTypes: []model.DocType{model.DocInvoice, model.DocPackingList, model.DocBL},
			Kind:     model.KindMoney,
			Aliases:  []string{"total value"},
			Pattern:  `([0-9][0-9.,]*)`,
		},
		{
			Name:     "shipper",
			DocTypes: []model.DocType{model.DocInvoice, model.DocPackingList, model.DocBL},
			Kind:     model.KindString,
			Aliases:  []string{"shipper"},
			Pattern:  `([A-Za-z0-9&.,\-\s]{3,})`,
		},
		{
			Name:     "net_weight",
			DocTypes: []model.DocType{model.DocPackingList, model.DocBL},
			Kind:     model.KindWeight,
			Aliases:  []string{"net weight"},
			Pattern:  `([0-9][0-9.,]*\s*[A-Za-z]{0,3})`,
		},
	}, []string{"total_value", "shipper", "net_weight"})
	require.NoError(t, err)
	return cat
}

func doc(t model.DocType, fields map[string]model.ResolvedField) *model.DocumentExtraction {
	return &model.DocumentExtraction{DocType: t, Fields: fields}
}

func resolvedA(value string) model.ResolvedField {
	return model.ResolvedField{Value: value, SourceLayer: model.LayerA, Confidence: 0.9}
}

func TestAnalyzeExactMatchIsOK(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     resolvedA("ACME LTD"),
		}),
		model.DocPackingList: doc(model.DocPackingList, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     resolvedA("ACME LTD"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     resolvedA("ACME LTD"),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	assert.Equal(t, model.StatusOK, res.Status)
	assert.Empty(t, res.Divergences)
	require.Len(t, res.Matrix, 3)
	assert.Equal(t, "1000.00", res.Matrix[0].Invoice)
	assert.Equal(t, "1000.00", res.Matrix[0].PackingList)
	assert.Equal(t, "1000.00", res.Matrix[0].BL)
}

func TestAnalyzeNumericWithinTolerance(t *testing.T) {
	cat := testCatalog(t)
	// 0.5% apart at 1% tolerance: no divergence.
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("1005.00"),
		}),
	}

	res := Analyze(docs, cat, Options{NumericTolerance: 0.01, OCRAcceptance: 0.60})
	require.Len(t, res.Divergences, 1)
	assert.NotContains(t, res.Divergences[0], "total_value")
	assert.Contains(t, res.Divergences[0], "missing for cross-analysis")
}

func TestAnalyzeNumericBeyondTolerance(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
		}),
		model.DocPackingList: doc(model.DocPackingList, map[string]model.ResolvedField{
			"total_value": resolvedA("1005.00"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("1100.00"),
		}),
	}

	res := Analyze(docs, cat, Options{NumericTolerance: 0.01, OCRAcceptance: 0.60})
	assert.Equal(t, model.StatusWarn, res.Status)
	require.Len(t, res.Divergences, 1)
	assert.Contains(t, res.Divergences[0], "total_value")
}

func TestAnalyzeThreeWayWithinTolerance(t *testing.T) {
	cat := testCatalog(t)
	// Max spread (1008-1000)/1000 = 0.8% under the 1% tolerance.
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
		}),
		model.DocPackingList: doc(model.DocPackingList, map[string]model.ResolvedField{
			"total_value": resolvedA("1005.00"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("1008.00"),
		}),
	}

	res := Analyze(docs, cat, Options{NumericTolerance: 0.01, OCRAcceptance: 0.60})
	assert.Equal(t, model.StatusOK, res.Status)
}

func TestAnalyzeStringNormalization(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"shipper": resolvedA("ACME LTD"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"shipper": resolvedA("  acme   ltd "),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	require.Len(t, res.Divergences, 1)
	assert.NotContains(t, res.Divergences[0], "shipper")
}

func TestAnalyzeStringDisagreement(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"shipper": resolvedA("ACME LTD"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"shipper": resolvedA("GLOBEX CORP"),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	assert.Equal(t, model.StatusWarn, res.Status)
	require.Len(t, res.Divergences, 2)
	assert.Contains(t, res.Divergences[0], "shipper")
	assert.Contains(t, res.Divergences[0], "disagree")
	assert.Contains(t, res.Divergences[1], "missing for cross-analysis")
}

func TestAnalyzeWeightUnitSuffixIgnored(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocPackingList: doc(model.DocPackingList, map[string]model.ResolvedField{
			"net_weight": resolvedA("12500.00 KG"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"net_weight": resolvedA("12500.00"),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	require.Len(t, res.Divergences, 1)
	assert.NotContains(t, res.Divergences[0], "net_weight")
}

func TestAnalyzeMissingFlaggedField(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     resolvedA("ACME LTD"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     model.UnresolvedField(),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	assert.Equal(t, model.StatusWarn, res.Status)
	require.Len(t, res.Divergences, 2)
	assert.Contains(t, res.Divergences[0], "shipper")
	assert.Contains(t, res.Divergences[0], "missing or pending review")
	assert.Contains(t, res.Divergences[0], "bl")
	assert.Contains(t, res.Divergences[1], "packing_list")
}

func TestAnalyzeSingleUnflaggedValueIsQuiet(t *testing.T) {
	cat := testCatalog(t)
	// net_weight only applies to PL and BL; with only the invoice present
	// nothing can be compared and no field-level message is raised. The sole
	// remaining notice is about the absent documents themselves.
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     resolvedA("ACME LTD"),
			"net_weight":  model.IgnoredField(),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	require.Len(t, res.Divergences, 1)
	assert.NotContains(t, res.Divergences[0], "total_value")
	assert.NotContains(t, res.Divergences[0], "shipper")
	assert.NotContains(t, res.Divergences[0], "net_weight")
}

func TestAnalyzeNumericParseFallsBackToStrings(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("as per contract"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("as per contract"),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	require.Len(t, res.Divergences, 1)
	assert.NotContains(t, res.Divergences[0], "total_value")
}

func TestAnalyzeOCRAdvisory(t *testing.T) {
	cat := testCatalog(t)
	low := 0.40
	blDoc := doc(model.DocBL, map[string]model.ResolvedField{
		"total_value": resolvedA("1000.00"),
	})
	blDoc.OCRUsed = true
	blDoc.OCRConfidence = &low

	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
		}),
		model.DocBL: blDoc,
	}

	res := Analyze(docs, cat, DefaultOptions())
	assert.Equal(t, model.StatusWarn, res.Status)
	require.Len(t, res.Divergences, 2)
	assert.Contains(t, res.Divergences[0], "missing for cross-analysis")
	assert.Contains(t, res.Divergences[1], "low OCR confidence")
	assert.Contains(t, res.Divergences[1], "bl")
}

func TestAnalyzeBlankCellsForAbsentDocuments(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	require.Len(t, res.Matrix, 3)
	assert.Equal(t, "1000.00", res.Matrix[0].Invoice)
	assert.Empty(t, res.Matrix[0].PackingList)
	assert.Empty(t, res.Matrix[0].BL)
}

func TestAnalyzeMissingDocumentsNotice(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
		}),
	}

	res := Analyze(docs, cat, DefaultOptions())
	assert.Equal(t, model.StatusWarn, res.Status)
	require.Len(t, res.Divergences, 1)
	assert.Contains(t, res.Divergences[0], "missing for cross-analysis")
	assert.Contains(t, res.Divergences[0], "packing_list, bl")
}

func TestAnalyzeNoDocuments(t *testing.T) {
	cat := testCatalog(t)

	res := Analyze(map[model.DocType]*model.DocumentExtraction{}, cat, DefaultOptions())
	assert.Equal(t, model.StatusWarn, res.Status)
	require.Len(t, res.Matrix, 3)
	require.Len(t, res.Divergences, 1)
	assert.Contains(t, res.Divergences[0], "invoice, packing_list, bl")
}

func TestAnalyzeIdempotent(t *testing.T) {
	cat := testCatalog(t)
	docs := map[model.DocType]*model.DocumentExtraction{
		model.DocInvoice: doc(model.DocInvoice, map[string]model.ResolvedField{
			"total_value": resolvedA("1000.00"),
			"shipper":     resolvedA("ACME LTD"),
		}),
		model.DocBL: doc(model.DocBL, map[string]model.ResolvedField{
			"total_value": resolvedA("1100.00"),
			"shipper":     resolvedA("ACME LTD"),
		}),
	}

	first := Analyze(docs, cat, DefaultOptions())
	second := Analyze(docs, cat, DefaultOptions())
	assert.Equal(t, first, second)
}
