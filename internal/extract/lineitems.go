package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// maxLineItems caps the rows surfaced per document; past that point the
// table is noise, not a goods list.
const maxLineItems = 30

var (
	anyNumber  = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`)
	itemQty    = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(?:pcs|kg|ctn|box|un)?\b`)
	itemAmount = regexp.MustCompile(`(\d+[.,]\d{2})\s*$`)
)

// parseLineItems pulls probable goods rows out of the normalized document
// lines: at least four tokens, at least one number, and a leading quantity
// (optionally unit-suffixed) or a trailing two-decimal amount.
func parseLineItems(lines []string) []model.LineItem {
	var items []model.LineItem
	for _, line := range lines {
		if !anyNumber.MatchString(line) || len(strings.Fields(line)) < 4 {
			continue
		}
		qty := itemQty.FindStringSubmatch(line)
		amount := itemAmount.FindStringSubmatch(line)
		if qty == nil && amount == nil {
			continue
		}
		item := model.LineItem{Line: line}
		if qty != nil {
			item.Quantity = qty[1]
		}
		if amount != nil {
			item.Amount = amount[1]
		}
		items = append(items, item)
		if len(items) == maxLineItems {
			break
		}
	}
	return items
}
