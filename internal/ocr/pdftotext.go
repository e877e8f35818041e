package ocr

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// PdfToText acquires text using the pdftotext CLI tool. No OCR is involved,
// so the quality signal is absent.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText acquirer. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// Acquire runs pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) Acquire(ctx context.Context, pdfPath string) (*Acquisition, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "ocr: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	return &Acquisition{Text: stdout.String()}, nil
}
