// Package report assembles the session report: extracted documents plus the
// cross-document analysis, serialized as JSON or exported as an XLSX workbook.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Report is the full output for a session: every extracted document and the
// comparative analysis across them.
type Report struct {
	GeneratedAt time.Time                                  `json:"generated_at"`
	SessionID   string                                     `json:"session_id,omitempty"`
	Documents   map[model.DocType]model.DocumentExtraction `json:"documents"`
	Analysis    *model.AnalysisResult                      `json:"analysis"`
}

// Build assembles a report from extracted documents and their analysis.
func Build(sessionID string, docs map[model.DocType]model.DocumentExtraction, analysis *model.AnalysisResult) *Report {
	return &Report{
		GeneratedAt: time.Now().UTC(),
		SessionID:   sessionID,
		Documents:   docs,
		Analysis:    analysis,
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}
