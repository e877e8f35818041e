package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tradedoc-cli/internal/extract"
	"github.com/sells-group/tradedoc-cli/internal/model"
)

var (
	extractType    string
	extractPDF     string
	extractText    string
	extractOut     string
	extractOCRConf float64
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract canonical fields from a single document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		docType := model.DocType(extractType)
		if !docType.Valid() {
			return eris.Errorf("unknown document type: %s (use invoice, packing_list or bl)", extractType)
		}

		in, err := acquireInput(cmd, docType, extractPDF, extractText)
		if err != nil {
			return err
		}
		if extractText != "" && cmd.Flags().Changed("ocr-confidence") {
			// Text that came out of an external OCR pass carries its quality
			// signal so the pipeline can penalize and flag accordingly.
			conf := extractOCRConf
			in.OCRUsed = true
			in.OCRConfidence = &conf
		}

		cat, err := initCatalog()
		if err != nil {
			return err
		}
		resolver := initResolver(cat)

		ext, err := resolver.Extract(ctx, *in)
		if err != nil {
			return eris.Wrap(err, "extract document")
		}
		zap.L().Info("document extracted",
			zap.String("doc_type", string(docType)),
			zap.Int("fields", len(ext.Fields)),
		)

		return writeJSONOutput(extractOut, ext)
	},
}

// acquireInput loads document text from a PDF (through the configured
// acquirer) or from a plain text file.
func acquireInput(cmd *cobra.Command, docType model.DocType, pdfPath, textPath string) (*extract.Input, error) {
	switch {
	case pdfPath != "" && textPath != "":
		return nil, eris.New("--pdf and --text are mutually exclusive")
	case pdfPath != "":
		acquirer, err := initAcquirer()
		if err != nil {
			return nil, err
		}
		acq, err := acquirer.Acquire(cmd.Context(), pdfPath)
		if err != nil {
			return nil, eris.Wrapf(err, "acquire text from %s", pdfPath)
		}
		return &extract.Input{
			DocType:       docType,
			Filename:      filepath.Base(pdfPath),
			RawText:       acq.Text,
			OCRUsed:       acq.OCRUsed,
			OCRConfidence: acq.OCRConfidence,
		}, nil
	case textPath != "":
		data, err := os.ReadFile(textPath)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", textPath)
		}
		return &extract.Input{
			DocType:  docType,
			Filename: filepath.Base(textPath),
			RawText:  string(data),
		}, nil
	default:
		return nil, eris.New("one of --pdf or --text is required")
	}
}

func writeJSONOutput(path string, v any) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

func init() {
	extractCmd.Flags().StringVar(&extractType, "type", "", "document type: invoice, packing_list or bl (required)")
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "path to a PDF document")
	extractCmd.Flags().StringVar(&extractText, "text", "", "path to a plain text document")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "write the extraction JSON to a file instead of stdout")
	extractCmd.Flags().Float64Var(&extractOCRConf, "ocr-confidence", 1, "treat --text input as OCR output with this confidence (0-1)")
	_ = extractCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(extractCmd)
}
