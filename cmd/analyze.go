package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tradedoc-cli/internal/extract"
	"github.com/sells-group/tradedoc-cli/internal/model"
	"github.com/sells-group/tradedoc-cli/internal/recon"
	"github.com/sells-group/tradedoc-cli/internal/report"
)

var (
	analyzeInvoice     string
	analyzePackingList string
	analyzeBL          string
	analyzeOut         string
	analyzeXLSX        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract and cross-check a set of trade documents",
	Long:  "Extracts fields from each supplied document, builds the comparative matrix and reports divergences. At least two documents are required.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths := map[model.DocType]string{}
		if analyzeInvoice != "" {
			paths[model.DocInvoice] = analyzeInvoice
		}
		if analyzePackingList != "" {
			paths[model.DocPackingList] = analyzePackingList
		}
		if analyzeBL != "" {
			paths[model.DocBL] = analyzeBL
		}
		if len(paths) < 2 {
			return eris.New("at least two of --invoice, --packing-list and --bl are required")
		}

		cat, err := initCatalog()
		if err != nil {
			return err
		}
		resolver := initResolver(cat)

		var inputs []extract.Input
		for _, docType := range model.AllDocTypes {
			path, ok := paths[docType]
			if !ok {
				continue
			}
			pdfPath, textPath := path, ""
			if strings.EqualFold(filepath.Ext(path), ".txt") {
				pdfPath, textPath = "", path
			}
			in, err := acquireInput(cmd, docType, pdfPath, textPath)
			if err != nil {
				return err
			}
			inputs = append(inputs, *in)
		}

		docs, err := resolver.ExtractAll(ctx, inputs)
		if err != nil {
			return eris.Wrap(err, "extract documents")
		}

		analysis := recon.Analyze(docs, cat, recon.Options{
			NumericTolerance: cfg.Recon.NumericTolerance,
			OCRAcceptance:    cfg.Extract.OCRAcceptance,
		})
		zap.L().Info("analysis complete",
			zap.String("status", string(analysis.Status)),
			zap.Int("divergences", len(analysis.Divergences)),
		)

		byValue := make(map[model.DocType]model.DocumentExtraction, len(docs))
		for t, d := range docs {
			byValue[t] = *d
		}
		rep := report.Build("", byValue, &analysis)

		if analyzeXLSX != "" {
			if err := rep.WriteXLSX(analyzeXLSX); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", analyzeXLSX))
		}

		return writeJSONOutput(analyzeOut, rep)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInvoice, "invoice", "", "path to the invoice (PDF or .txt)")
	analyzeCmd.Flags().StringVar(&analyzePackingList, "packing-list", "", "path to the packing list (PDF or .txt)")
	analyzeCmd.Flags().StringVar(&analyzeBL, "bl", "", "path to the bill of lading (PDF or .txt)")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write the report JSON to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeXLSX, "xlsx", "", "also export the report as an XLSX workbook")
	rootCmd.AddCommand(analyzeCmd)
}
