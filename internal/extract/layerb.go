package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Layer B confidence bands. Alias-proximity hits are worth more than bare
// whole-text pattern hits.
const (
	windowConfidence    = 0.72
	wholeTextConfidence = 0.58
	windowBefore        = 2
	windowAfter         = 3
)

// layerB is the contextual fallback for fields Layer A could not anchor.
// It first searches a window of lines around any line mentioning one of the
// field's aliases, then, for fields whose kind or definition allows it,
// scans the entire text with a broader pattern gated by a plausibility
// filter. First occurrence in document order wins: documents are assumed to
// state header-level facts near the top.
func layerB(raw string, lines []string, def model.FieldDefinition, ocrPenalty float64) (Candidate, bool) {
	if c, ok := windowSearch(lines, def, ocrPenalty); ok {
		return c, true
	}
	return wholeTextSearch(raw, def, ocrPenalty)
}

func windowSearch(lines []string, def model.FieldDefinition, ocrPenalty float64) (Candidate, bool) {
	spec := specFor(def.Kind)

	for i, line := range lines {
		if !mentionsAlias(line, def.Aliases) {
			continue
		}
		start := max(0, i-windowBefore)
		end := min(len(lines), i+windowAfter)
		for _, candidate := range lines[start:end] {
			sub := def.ValueRegex.FindStringSubmatch(candidate)
			if sub == nil {
				continue
			}
			v, ok := conform(def, sub[1])
			if !ok || !spec.plausible(v) {
				continue
			}
			return Candidate{Value: v, Confidence: clamp(windowConfidence - ocrPenalty)}, true
		}
	}
	return Candidate{}, false
}

func wholeTextSearch(raw string, def model.FieldDefinition, ocrPenalty float64) (Candidate, bool) {
	pattern := contextPatternFor(def)
	if pattern == nil {
		return Candidate{}, false
	}

	spec := specFor(def.Kind)
	for _, sub := range pattern.FindAllStringSubmatch(raw, -1) {
		v, ok := conform(def, sub[1])
		if !ok || !spec.plausible(v) {
			continue
		}
		return Candidate{Value: v, Confidence: clamp(wholeTextConfidence - ocrPenalty)}, true
	}
	return Candidate{}, false
}

// contextPatternFor picks the whole-text pattern for a field, or nil when
// whole-text search would be too spurious for it. Closed-vocabulary fields
// and fields explicitly marked for context scanning use their own value
// pattern; otherwise the kind-level pattern applies (dates, countries).
// Free-text and generic identifier fields get no whole-text pass: their
// patterns match almost anything, and a wrong confident value is worse than
// an unresolved one.
func contextPatternFor(def model.FieldDefinition) *regexp.Regexp {
	if len(def.Vocabulary) > 0 || def.ContextScan {
		return def.ValueRegex
	}
	return specFor(def.Kind).contextPattern
}

func mentionsAlias(line string, aliases []string) bool {
	lower := strings.ToLower(foldDiacritics(line))
	for _, alias := range aliases {
		if strings.Contains(lower, strings.ToLower(foldDiacritics(alias))) {
			return true
		}
	}
	return false
}
