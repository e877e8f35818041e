package extract

import (
	"github.com/sells-group/tradedoc-cli/internal/catalog"
	"github.com/sells-group/tradedoc-cli/internal/model"
)

// newTestCatalog builds a validated catalog from ad-hoc definitions, using
// the first definition as the comparative list.
func newTestCatalog(defs ...model.FieldDefinition) (*catalog.Catalog, error) {
	return catalog.New(defs, []string{defs[0].Name})
}
