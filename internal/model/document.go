package model

import "time"

// DocType identifies one of the three trade document categories.
type DocType string

const (
	DocInvoice     DocType = "invoice"
	DocPackingList DocType = "packing_list"
	DocBL          DocType = "bl"
)

// AllDocTypes lists every recognized document type in presentation order.
var AllDocTypes = []DocType{DocInvoice, DocPackingList, DocBL}

// Valid reports whether t is a recognized document type.
func (t DocType) Valid() bool {
	switch t {
	case DocInvoice, DocPackingList, DocBL:
		return true
	}
	return false
}

// SourceLayer records which extraction strategy produced a field's value.
type SourceLayer string

const (
	LayerA          SourceLayer = "A"
	LayerB          SourceLayer = "B"
	LayerC          SourceLayer = "C"
	LayerUnresolved SourceLayer = "unresolved"
	LayerIgnored    SourceLayer = "ignored"
)

// ResolvedField is one field's extraction outcome for one document.
// Values are immutable once created; re-extraction produces a new value.
type ResolvedField struct {
	Value         string      `json:"value"`
	SourceLayer   SourceLayer `json:"source_layer"`
	Confidence    float64     `json:"confidence"`
	PendingReview bool        `json:"pending_review"`
}

// IgnoredField returns the outcome for a field not applicable to the
// document's type. No layer is ever invoked for it.
func IgnoredField() ResolvedField {
	return ResolvedField{SourceLayer: LayerIgnored}
}

// UnresolvedField returns the outcome for a field no layer could produce a
// value for. Always flagged for human review.
func UnresolvedField() ResolvedField {
	return ResolvedField{SourceLayer: LayerUnresolved, PendingReview: true}
}

// Resolved reports whether a layer produced a value for this field.
func (f ResolvedField) Resolved() bool {
	return f.SourceLayer == LayerA || f.SourceLayer == LayerB || f.SourceLayer == LayerC
}

// LineItem is one probable goods row detected in the document body. Line
// items are a display aid for the reviewer; reconciliation never compares
// them.
type LineItem struct {
	Line     string `json:"line"`
	Quantity string `json:"quantity"`
	Amount   string `json:"amount"`
}

// DocumentExtraction is the full extraction result for one uploaded document.
// Fields covers every entry in the catalog, including ignored ones.
type DocumentExtraction struct {
	DocType        DocType                  `json:"doc_type"`
	Filename       string                   `json:"filename,omitempty"`
	ExtractedAt    time.Time                `json:"extracted_at"`
	RawText        string                   `json:"-"`
	RawTextPreview string                   `json:"raw_text_preview"`
	OCRUsed        bool                     `json:"ocr_used"`
	OCRConfidence  *float64                 `json:"ocr_confidence,omitempty"`
	Fields         map[string]ResolvedField `json:"fields"`
	LineItems      []LineItem               `json:"line_items"`
}

// AnalysisStatus is the overall reconciliation verdict.
type AnalysisStatus string

const (
	StatusOK   AnalysisStatus = "ok"
	StatusWarn AnalysisStatus = "warn"
)

// ComparativeRow is one field rendered side by side across the three
// document types. Cells are blank for absent documents and for
// ignored/unresolved fields.
type ComparativeRow struct {
	Field       string `json:"field"`
	Invoice     string `json:"invoice"`
	PackingList string `json:"packing_list"`
	BL          string `json:"bl"`
}

// Cell returns the value shown for the given document type.
func (r ComparativeRow) Cell(t DocType) string {
	switch t {
	case DocInvoice:
		return r.Invoice
	case DocPackingList:
		return r.PackingList
	case DocBL:
		return r.BL
	}
	return ""
}

// SetCell sets the value shown for the given document type.
func (r *ComparativeRow) SetCell(t DocType, v string) {
	switch t {
	case DocInvoice:
		r.Invoice = v
	case DocPackingList:
		r.PackingList = v
	case DocBL:
		r.BL = v
	}
}

// AnalysisResult is the output of cross-document reconciliation. It is
// recomputed on every request and never cached.
type AnalysisResult struct {
	Status      AnalysisStatus   `json:"status"`
	Matrix      []ComparativeRow `json:"matrix"`
	Divergences []string         `json:"divergences"`
}
