// Package ocr acquires raw text from PDF documents, either through the local
// pdftotext tool (born-digital PDFs) or a remote OCR API (scans). The
// extraction core consumes only the resulting text plus the OCR-quality
// signal; it never sees PDF bytes.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tradedoc-cli/internal/config"
)

// Acquisition is the acquired text plus the OCR-quality signal handed to the
// extraction core.
type Acquisition struct {
	Text          string
	OCRUsed       bool
	OCRConfidence *float64 // nil when no OCR was involved
}

// Acquirer turns a PDF file into extraction input.
type Acquirer interface {
	Acquire(ctx context.Context, pdfPath string) (*Acquisition, error)
}

// NewAcquirer creates an Acquirer based on config.
func NewAcquirer(cfg config.OCRConfig) (Acquirer, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
