package report

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

var docColumns = []struct {
	header string
	typ    model.DocType
}{
	{"Invoice", model.DocInvoice},
	{"Packing List", model.DocPackingList},
	{"Bill of Lading", model.DocBL},
}

// WriteXLSX exports the report as a workbook with a comparative matrix sheet,
// a divergences sheet and one detail sheet per document.
func (r *Report) WriteXLSX(path string) error {
	f := xlsx.NewFile()

	if err := r.addMatrixSheet(f); err != nil {
		return err
	}
	if err := r.addDivergenceSheet(f); err != nil {
		return err
	}
	for _, col := range docColumns {
		ext, ok := r.Documents[col.typ]
		if !ok {
			continue
		}
		if err := addDocumentSheet(f, col.header, ext); err != nil {
			return err
		}
	}

	return eris.Wrap(f.Save(path), "report: save xlsx")
}

func (r *Report) addMatrixSheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Comparative")
	if err != nil {
		return eris.Wrap(err, "report: add comparative sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Field"
	for _, col := range docColumns {
		header.AddCell().Value = col.header
	}

	if r.Analysis == nil {
		return nil
	}
	for _, row := range r.Analysis.Matrix {
		xr := sheet.AddRow()
		xr.AddCell().Value = row.Field
		for _, col := range docColumns {
			xr.AddCell().Value = row.Cell(col.typ)
		}
	}
	return nil
}

func (r *Report) addDivergenceSheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Divergences")
	if err != nil {
		return eris.Wrap(err, "report: add divergences sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Message"

	if r.Analysis == nil {
		return nil
	}
	for _, msg := range r.Analysis.Divergences {
		sheet.AddRow().AddCell().Value = msg
	}
	return nil
}

func addDocumentSheet(f *xlsx.File, name string, ext model.DocumentExtraction) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", name)
	}

	header := sheet.AddRow()
	for _, h := range []string{"Field", "Value", "Source Layer", "Confidence", "Pending Review"} {
		header.AddCell().Value = h
	}

	for _, fieldName := range sortedFieldNames(ext.Fields) {
		rf := ext.Fields[fieldName]
		row := sheet.AddRow()
		row.AddCell().Value = fieldName
		row.AddCell().Value = rf.Value
		row.AddCell().Value = string(rf.SourceLayer)
		row.AddCell().Value = fmt.Sprintf("%.2f", rf.Confidence)
		row.AddCell().Value = fmt.Sprintf("%t", rf.PendingReview)
	}
	return nil
}

func sortedFieldNames(fields map[string]model.ResolvedField) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
