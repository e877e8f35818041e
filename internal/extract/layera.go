package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// aliasMatcher holds the compiled anchored patterns for one alias of one
// field. Compiled once at resolver construction so per-document extraction
// is a pure scan.
type aliasMatcher struct {
	alias string
	// inline matches "<alias> [no|number|#] [:|-] <value>" on a single line.
	inline *regexp.Regexp
	// labelOnly matches a line that carries the label but no value, in which
	// case the value is expected at the start of the next line.
	labelOnly *regexp.Regexp
	// valueStart matches the field's value pattern at the start of a line.
	valueStart *regexp.Regexp
}

const labelSeparator = `\s*(?:n[oº°]\.?|number|#)?\s*[:\-]?\s*`

func compileAliasMatchers(def model.FieldDefinition) []aliasMatcher {
	matchers := make([]aliasMatcher, 0, len(def.Aliases))
	for _, alias := range def.Aliases {
		quoted := regexp.QuoteMeta(foldDiacritics(alias))
		matchers = append(matchers, aliasMatcher{
			alias:      alias,
			inline:     regexp.MustCompile(`(?i)` + quoted + labelSeparator + def.Pattern),
			labelOnly:  regexp.MustCompile(`(?i)^\s*` + quoted + labelSeparator + `$`),
			valueStart: regexp.MustCompile(`(?i)^\s*` + def.Pattern),
		})
	}
	return matchers
}

// layerA performs deterministic alias-anchored extraction: it scans the
// document lines for each alias in catalog priority order and extracts the
// value anchored immediately after the label, on the same line or at the
// start of the next one. The first alias yielding a type-conformant value
// wins. Returns no_match (ok=false) when no alias does; the orchestrator
// then proceeds to Layer B.
func layerA(lines []string, def model.FieldDefinition, matchers []aliasMatcher, ocrPenalty float64) (Candidate, bool) {
	base := specFor(def.Kind).anchorConfidence - ocrPenalty

	for _, m := range matchers {
		for i, line := range lines {
			// Aliases compile diacritic-folded, so accented labels are
			// matched against a folded view of the line.
			folded := foldDiacritics(line)
			if sub := m.inline.FindStringSubmatch(line); sub != nil {
				if v, ok := conform(def, sub[1]); ok {
					return Candidate{Value: v, Confidence: clamp(base)}, true
				}
			} else if sub := m.inline.FindStringSubmatch(folded); sub != nil {
				if v, ok := conform(def, sub[1]); ok {
					return Candidate{Value: v, Confidence: clamp(base)}, true
				}
			}
			if m.labelOnly.MatchString(folded) && i+1 < len(lines) {
				if sub := m.valueStart.FindStringSubmatch(lines[i+1]); sub != nil {
					if v, ok := conform(def, sub[1]); ok {
						return Candidate{Value: v, Confidence: clamp(base)}, true
					}
				}
			}
		}
	}
	return Candidate{}, false
}

// splitLines normalizes the raw text into non-empty whitespace-collapsed
// lines. Both anchored layers work on this view.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if clean := normalizeSpaces(line); clean != "" {
			lines = append(lines, clean)
		}
	}
	return lines
}

func clamp(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
