package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/tradedoc-cli/internal/model"
	"github.com/sells-group/tradedoc-cli/pkg/anthropic"
)

// FieldQuery describes one unresolved field for the fallback capability.
type FieldQuery struct {
	FieldName   string
	Description string
	Kind        model.ValueKind
	DocType     model.DocType
	RawText     string
}

// Fallback is the last-resort entity-recognition capability consumed by
// Layer C. A nil candidate with nil error means no_match. Implementations
// may be remote and slow; the caller bounds every call with a timeout, and
// any failure degrades to no_match rather than aborting extraction.
type Fallback interface {
	Resolve(ctx context.Context, q FieldQuery) (*Candidate, error)
}

const fallbackPrompt = `You are extracting one field from a trade import document (%s).

Field: %s
Meaning: %s
Value type: %s

Document text:
%s

Return ONLY a JSON object, no prose:
{"value": "<extracted value or empty string if not present>", "confidence": <0.0-1.0>}`

const fallbackSystemText = "You extract structured fields from shipping and commercial documents. You output strict JSON only."

// maxFallbackChars bounds how much document text is sent per field query.
const maxFallbackChars = 12000

// AnthropicFallback resolves fields through a Claude model. Calls are rate
// limited so a document with many unresolved fields does not burst the API.
type AnthropicFallback struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
}

// NewAnthropicFallback creates the model-backed fallback resolver.
func NewAnthropicFallback(client anthropic.Client, modelID string, rps float64, burst int) *AnthropicFallback {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &AnthropicFallback{
		client:  client,
		model:   modelID,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Resolve asks the model for the field's value. The model-provided score is
// passed through as the candidate confidence with no further boosting.
func (f *AnthropicFallback) Resolve(ctx context.Context, q FieldQuery) (*Candidate, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fallback: rate limit wait")
	}

	text := q.RawText
	if len(text) > maxFallbackChars {
		text = text[:maxFallbackChars]
	}

	prompt := fmt.Sprintf(fallbackPrompt, q.DocType, q.FieldName, q.Description, q.Kind, text)

	resp, err := f.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     f.model,
		MaxTokens: 256,
		System:    []anthropic.SystemBlock{{Text: fallbackSystemText}},
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fallback: field %s", q.FieldName)
	}
	resp.Usage.LogCost(f.model, "layer_c")

	var parsed struct {
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	raw := cleanJSON(responseText(resp))
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		zap.L().Warn("fallback: unparseable model response",
			zap.String("field", q.FieldName),
			zap.Error(err),
		)
		return nil, nil
	}

	if strings.TrimSpace(parsed.Value) == "" {
		return nil, nil
	}

	return &Candidate{
		Value:      normalizeSpaces(parsed.Value),
		Confidence: clamp(parsed.Confidence),
	}, nil
}

func responseText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// cleanJSON strips markdown code fences models sometimes wrap JSON in.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
