// Package recon reduces independently extracted document field sets into a
// single comparative judgment: a side-by-side matrix plus a divergence list.
// Analyze is a pure function of its inputs; it holds no state between calls
// and always reads the snapshot the caller passes in, so it is safe to run
// concurrently with re-extraction of any document.
package recon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/tradedoc-cli/internal/catalog"
	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Options holds the reconciliation policy constants.
type Options struct {
	// NumericTolerance is the maximum relative spread between the smallest
	// and largest numeric value before a divergence is raised. Absorbs
	// rounding differences between documents.
	NumericTolerance float64
	// OCRAcceptance is the OCR confidence below which a per-document
	// advisory is emitted.
	OCRAcceptance float64
}

// DefaultOptions returns the stock reconciliation policy: 1% numeric
// tolerance, 0.60 OCR acceptance.
func DefaultOptions() Options {
	return Options{NumericTolerance: 0.01, OCRAcceptance: 0.60}
}

// presentValue is one non-blank cell of a comparative row.
type presentValue struct {
	doc   model.DocType
	value string
}

// Analyze builds the comparative matrix and divergence list for up to three
// documents. Any subset may be absent; absent documents render blank cells
// and are excluded from pairwise checks.
func Analyze(docs map[model.DocType]*model.DocumentExtraction, cat *catalog.Catalog, opts Options) model.AnalysisResult {
	result := model.AnalysisResult{
		Status:      model.StatusOK,
		Matrix:      make([]model.ComparativeRow, 0, len(cat.ComparativeFields())),
		Divergences: []string{},
	}

	for _, def := range cat.ComparativeFields() {
		row := model.ComparativeRow{Field: def.Name}
		var present []presentValue
		var flagged []model.DocType

		for _, t := range model.AllDocTypes {
			doc, ok := docs[t]
			if !ok || doc == nil {
				continue
			}
			rf, ok := doc.Fields[def.Name]
			if !ok {
				continue
			}
			if rf.Resolved() {
				row.SetCell(t, rf.Value)
				present = append(present, presentValue{doc: t, value: rf.Value})
				if rf.PendingReview {
					flagged = append(flagged, t)
				}
			} else if rf.SourceLayer == model.LayerUnresolved {
				flagged = append(flagged, t)
			}
		}

		result.Matrix = append(result.Matrix, row)

		if len(present) >= 2 {
			if msg, diverges := compareField(def, present, opts.NumericTolerance); diverges {
				result.Divergences = append(result.Divergences, msg)
			}
		} else if len(flagged) > 0 {
			result.Divergences = append(result.Divergences,
				fmt.Sprintf("field %s: missing or pending review on %s", def.Name, docList(flagged)))
		}
	}

	// An incomplete document set still produces a matrix, but the report
	// flags which documents were never supplied.
	var absent []model.DocType
	for _, t := range model.AllDocTypes {
		if doc, ok := docs[t]; !ok || doc == nil {
			absent = append(absent, t)
		}
	}
	if len(absent) > 0 {
		result.Divergences = append(result.Divergences,
			fmt.Sprintf("documents missing for cross-analysis: %s", docList(absent)))
	}

	// OCR advisories come after field-level messages, in document order.
	for _, t := range model.AllDocTypes {
		doc, ok := docs[t]
		if !ok || doc == nil || !doc.OCRUsed || doc.OCRConfidence == nil {
			continue
		}
		if *doc.OCRConfidence < opts.OCRAcceptance {
			result.Divergences = append(result.Divergences,
				fmt.Sprintf("document %s: low OCR confidence (%.2f), extracted values need manual verification", t, *doc.OCRConfidence))
		}
	}

	if len(result.Divergences) > 0 {
		result.Status = model.StatusWarn
	}
	return result
}

// compareField applies the kind-appropriate divergence rule across the
// present values of one field.
func compareField(def model.FieldDefinition, present []presentValue, tolerance float64) (string, bool) {
	if def.Kind.Numeric() {
		if msg, decided, diverges := compareNumeric(def, present, tolerance); decided {
			return msg, diverges
		}
		// A present value that fails to parse falls back to exact comparison.
	}

	var first string
	for i, pv := range present {
		norm := canonical(pv.value)
		if i == 0 {
			first = norm
			continue
		}
		if norm != first {
			return fmt.Sprintf("field %s: documents disagree (%s)", def.Name, cells(present)), true
		}
	}
	return "", false
}

// compareNumeric raises a divergence when the relative spread between the
// smallest and largest value exceeds the tolerance. decided=false means a
// value did not parse and the caller should fall back to string equality.
func compareNumeric(def model.FieldDefinition, present []presentValue, tolerance float64) (string, bool, bool) {
	var lo, hi float64
	for i, pv := range present {
		n, err := strconv.ParseFloat(numericPart(pv.value), 64)
		if err != nil {
			return "", false, false
		}
		if i == 0 {
			lo, hi = n, n
			continue
		}
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	if lo <= 0 {
		return "", false, false
	}

	spread := (hi - lo) / lo
	if spread > tolerance {
		return fmt.Sprintf("field %s: values spread %.1f%% exceeds %.1f%% tolerance (%s)",
			def.Name, spread*100, tolerance*100, cells(present)), true, true
	}
	return "", true, false
}

var numericLead = regexp.MustCompile(`^[\d.]+`)

// numericPart strips a trailing unit suffix from normalized weight values.
func numericPart(v string) string {
	if m := numericLead.FindString(strings.TrimSpace(v)); m != "" {
		return m
	}
	return v
}

var innerWS = regexp.MustCompile(`\s+`)

// canonical normalizes a value for equality comparison: trim, collapse
// internal whitespace, case-fold.
func canonical(v string) string {
	return strings.ToLower(innerWS.ReplaceAllString(strings.TrimSpace(v), " "))
}

func cells(present []presentValue) string {
	parts := make([]string, len(present))
	for i, pv := range present {
		parts[i] = fmt.Sprintf("%s=%s", pv.doc, pv.value)
	}
	return strings.Join(parts, ", ")
}

func docList(docs []model.DocType) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
