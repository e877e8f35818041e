package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tradedoc-cli/internal/extract"
	"github.com/sells-group/tradedoc-cli/internal/model"
	"github.com/sells-group/tradedoc-cli/internal/recon"
	"github.com/sells-group/tradedoc-cli/internal/report"
	"github.com/sells-group/tradedoc-cli/internal/store"
)

const maxUploadBytes = 32 << 20

var (
	errBadBody     = eris.New("malformed request body")
	errEmptyText   = eris.New("document text is empty")
	errMissingFile = eris.New("multipart field 'file' is required")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ttl := time.Duration(s.cfg.Session.TTLHours) * time.Hour
	sess, err := s.st.CreateSession(r.Context(), ttl)
	if err != nil {
		s.log.Error("create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// uploadRequest is the JSON body alternative to a multipart PDF upload, for
// callers that already have the document text.
type uploadRequest struct {
	Text          string   `json:"text"`
	Filename      string   `json:"filename"`
	OCRUsed       bool     `json:"ocr_used"`
	OCRConfidence *float64 `json:"ocr_confidence"`
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	docType := model.DocType(chi.URLParam(r, "docType"))
	if !docType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown document type: "+string(docType))
		return
	}

	if _, err := s.st.GetSession(r.Context(), sessionID); err != nil {
		if err == store.ErrSessionNotFound {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.log.Error("get session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	in, err := s.buildInput(r, docType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ext, err := s.resolver.Extract(r.Context(), *in)
	if err != nil {
		s.log.Error("extract document", zap.String("doc_type", string(docType)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	if err := s.st.PutDocument(r.Context(), sessionID, *ext); err != nil {
		s.log.Error("store document", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

// buildInput turns the upload body into an extraction input. Multipart
// uploads go through text acquisition; JSON bodies carry the text directly.
func (s *Server) buildInput(r *http.Request, docType model.DocType) (*extract.Input, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return s.inputFromPDF(r, docType)
	}

	var req uploadRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		return nil, errBadBody
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, errEmptyText
	}
	return &extract.Input{
		DocType:       docType,
		Filename:      req.Filename,
		RawText:       req.Text,
		OCRUsed:       req.OCRUsed,
		OCRConfidence: req.OCRConfidence,
	}, nil
}

func (s *Server) inputFromPDF(r *http.Request, docType model.DocType) (*extract.Input, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errBadBody
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errMissingFile
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	acq, err := s.acquirer.Acquire(r.Context(), tmp.Name())
	if err != nil {
		return nil, err
	}
	return &extract.Input{
		DocType:       docType,
		Filename:      header.Filename,
		RawText:       acq.Text,
		OCRUsed:       acq.OCRUsed,
		OCRConfidence: acq.OCRConfidence,
	}, nil
}

// handleAnalyze reconciles whatever subset of documents the session holds.
// Absent documents render blank cells and a missing-document advisory; they
// are not a request error.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	docs, ok := s.loadSessionDocs(w, r)
	if !ok {
		return
	}

	analysis := recon.Analyze(byRef(docs), s.cat, recon.Options{
		NumericTolerance: s.cfg.Recon.NumericTolerance,
		OCRAcceptance:    s.cfg.Extract.OCRAcceptance,
	})
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	docs, ok := s.loadSessionDocs(w, r)
	if !ok {
		return
	}

	analysis := recon.Analyze(byRef(docs), s.cat, recon.Options{
		NumericTolerance: s.cfg.Recon.NumericTolerance,
		OCRAcceptance:    s.cfg.Extract.OCRAcceptance,
	})

	rep := report.Build(sessionID, docs, &analysis)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := rep.WriteJSON(w); err != nil {
		s.log.Error("write report", zap.Error(err))
	}
}

// loadSessionDocs resolves the session from the URL and loads its documents,
// writing the error response itself when that fails.
func (s *Server) loadSessionDocs(w http.ResponseWriter, r *http.Request) (map[model.DocType]model.DocumentExtraction, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.st.GetSession(r.Context(), sessionID); err != nil {
		if err == store.ErrSessionNotFound {
			writeError(w, http.StatusNotFound, "session not found")
			return nil, false
		}
		s.log.Error("get session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}

	docs, err := s.st.GetDocuments(r.Context(), sessionID)
	if err != nil {
		s.log.Error("get documents", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load documents")
		return nil, false
	}
	return docs, true
}

func byRef(docs map[model.DocType]model.DocumentExtraction) map[model.DocType]*model.DocumentExtraction {
	out := make(map[model.DocType]*model.DocumentExtraction, len(docs))
	for t := range docs {
		d := docs[t]
		out[t] = &d
	}
	return out
}
