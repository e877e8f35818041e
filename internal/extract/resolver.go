package extract

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/tradedoc-cli/internal/catalog"
	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Config holds the extraction policy constants. These are deliberately
// configuration, not code: acceptance thresholds and penalties get tuned per
// deployment without touching layer logic.
type Config struct {
	// Per-layer acceptance thresholds: a resolved value below its layer's
	// threshold is flagged pending_review.
	AcceptA float64
	AcceptB float64
	AcceptC float64
	// OCRAcceptance is the minimum OCR confidence below which every value
	// from that document is flagged pending_review.
	OCRAcceptance float64
	// OCRPenalty is subtracted from Layer A/B confidence when the source
	// document went through OCR.
	OCRPenalty float64
	// LayerCTimeout bounds each fallback model call. A timeout is a
	// no_match, never a fatal error.
	LayerCTimeout time.Duration
	// FieldConcurrency bounds concurrent field resolution per document.
	FieldConcurrency int
}

// DefaultConfig returns the stock extraction policy.
func DefaultConfig() Config {
	return Config{
		AcceptA:          0.75,
		AcceptB:          0.65,
		AcceptC:          0.60,
		OCRAcceptance:    0.60,
		OCRPenalty:       0.05,
		LayerCTimeout:    20 * time.Second,
		FieldConcurrency: 8,
	}
}

// Input is the extraction boundary contract: already-acquired text plus the
// OCR-quality signal. The resolver never touches PDF bytes or pixels.
type Input struct {
	DocType model.DocType
	// Filename is the original upload name, carried through to the report.
	Filename      string
	RawText       string
	OCRUsed       bool
	OCRConfidence *float64
}

// Resolver runs the A→B→C fallback chain for every catalog field of a
// document. It holds no per-document state; the same resolver is safe to use
// concurrently across documents.
type Resolver struct {
	cat      *catalog.Catalog
	cfg      Config
	fallback Fallback // nil disables Layer C
	matchers map[string][]aliasMatcher
}

// NewResolver creates a Resolver over the given catalog. Alias patterns are
// compiled once here. fallback may be nil, in which case fields Layer B
// cannot resolve end up unresolved.
func NewResolver(cat *catalog.Catalog, cfg Config, fallback Fallback) *Resolver {
	matchers := make(map[string][]aliasMatcher)
	for _, def := range cat.Fields() {
		matchers[def.Name] = compileAliasMatchers(def)
	}
	return &Resolver{cat: cat, cfg: cfg, fallback: fallback, matchers: matchers}
}

// Extract resolves every catalog field for one document. Fields not
// applicable to the document's type are marked ignored without invoking any
// layer. All per-field and per-layer failures are absorbed into provenance
// metadata; the only error is an invalid document type.
func (r *Resolver) Extract(ctx context.Context, in Input) (*model.DocumentExtraction, error) {
	if !in.DocType.Valid() {
		return nil, eris.Errorf("extract: unknown document type %q", in.DocType)
	}

	lines := splitLines(in.RawText)

	ocrPenalty := 0.0
	if in.OCRUsed {
		ocrPenalty = r.cfg.OCRPenalty
	}
	ocrLow := in.OCRUsed && in.OCRConfidence != nil && *in.OCRConfidence < r.cfg.OCRAcceptance

	doc := &model.DocumentExtraction{
		DocType:        in.DocType,
		Filename:       in.Filename,
		ExtractedAt:    time.Now().UTC(),
		RawText:        in.RawText,
		RawTextPreview: preview(in.RawText),
		OCRUsed:        in.OCRUsed,
		OCRConfidence:  in.OCRConfidence,
		Fields:         make(map[string]model.ResolvedField, len(r.cat.Fields())),
		LineItems:      parseLineItems(lines),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.FieldConcurrency)

	for _, def := range r.cat.Fields() {
		if !def.AppliesTo(in.DocType) {
			doc.Fields[def.Name] = model.IgnoredField()
			continue
		}
		g.Go(func() error {
			rf := r.resolveField(gctx, def, in, lines, ocrPenalty, ocrLow)
			mu.Lock()
			doc.Fields[def.Name] = rf
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.mirrorDocumentNumber(doc)
	return doc, nil
}

// resolveField runs the strict linear fallback chain for one field: Layer A,
// then B, then C. No layer is skipped after a prior miss and none is retried.
func (r *Resolver) resolveField(ctx context.Context, def model.FieldDefinition, in Input, lines []string, ocrPenalty float64, ocrLow bool) model.ResolvedField {
	if c, ok := layerA(lines, def, r.matchers[def.Name], ocrPenalty); ok {
		return resolved(c, model.LayerA, r.cfg.AcceptA, ocrLow)
	}

	if c, ok := layerB(in.RawText, lines, def, ocrPenalty); ok {
		return resolved(c, model.LayerB, r.cfg.AcceptB, ocrLow)
	}

	if c, ok := r.layerC(ctx, def, in); ok {
		return resolved(c, model.LayerC, r.cfg.AcceptC, ocrLow)
	}

	return model.UnresolvedField()
}

// layerC delegates to the injected fallback capability. Absence, failure and
// timeout all degrade to no_match so one slow field never poisons the rest
// of the document.
func (r *Resolver) layerC(ctx context.Context, def model.FieldDefinition, in Input) (Candidate, bool) {
	if r.fallback == nil {
		return Candidate{}, false
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.LayerCTimeout)
	defer cancel()

	cand, err := r.fallback.Resolve(cctx, FieldQuery{
		FieldName:   def.Name,
		Description: def.Description,
		Kind:        def.Kind,
		DocType:     in.DocType,
		RawText:     in.RawText,
	})
	if err != nil {
		zap.L().Warn("extract: layer C unavailable",
			zap.String("field", def.Name),
			zap.String("doc_type", string(in.DocType)),
			zap.Error(err),
		)
		return Candidate{}, false
	}
	if cand == nil {
		return Candidate{}, false
	}

	v, ok := conform(def, cand.Value)
	if !ok {
		return Candidate{}, false
	}
	// The model's score is the confidence; no boosting, no OCR penalty.
	return Candidate{Value: v, Confidence: clamp(cand.Confidence)}, true
}

func resolved(c Candidate, layer model.SourceLayer, accept float64, ocrLow bool) model.ResolvedField {
	return model.ResolvedField{
		Value:         c.Value,
		SourceLayer:   layer,
		Confidence:    c.Confidence,
		PendingReview: c.Confidence < accept || ocrLow,
	}
}

// previewRunes bounds the raw-text excerpt carried in the report payload.
const previewRunes = 1500

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes])
}

// typeNumberField maps each document type to its own number field.
var typeNumberField = map[model.DocType]string{
	model.DocInvoice:     "invoice_number",
	model.DocPackingList: "packing_list_number",
	model.DocBL:          "bl_number",
}

// mirrorDocumentNumber fills an unresolved document_number from the
// type-specific number field. Counterparties rarely label a generic
// "document number"; the invoice/packing-list/BL number is that number.
func (r *Resolver) mirrorDocumentNumber(doc *model.DocumentExtraction) {
	generic, ok := doc.Fields["document_number"]
	if !ok || generic.Resolved() || generic.SourceLayer == model.LayerIgnored {
		return
	}
	specific, ok := doc.Fields[typeNumberField[doc.DocType]]
	if !ok || !specific.Resolved() {
		return
	}
	doc.Fields["document_number"] = specific
}

// ExtractAll runs extraction for up to three documents in parallel. Each
// document is independent; a failure on one (only possible via context
// cancellation or a bad doc type) aborts the set.
func (r *Resolver) ExtractAll(ctx context.Context, inputs []Input) (map[model.DocType]*model.DocumentExtraction, error) {
	out := make(map[model.DocType]*model.DocumentExtraction, len(inputs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, in := range inputs {
		g.Go(func() error {
			doc, err := r.Extract(gctx, in)
			if err != nil {
				return err
			}
			mu.Lock()
			out[in.DocType] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
