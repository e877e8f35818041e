package extract

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics strips combining marks so "Descrição" and "Descricao"
// compare equal. OCR output for Portuguese documents loses accents often
// enough that label matching cannot rely on them. The chain is built per
// call: chained transformers carry internal buffers and fields resolve
// concurrently.
func foldDiacritics(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}
