package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tradedoc-cli/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the field catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective field catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := initCatalog()
		if err != nil {
			return err
		}
		return writeJSONOutput("", cat.Fields())
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a catalog override file, or the configured catalog when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cat *catalog.Catalog
			err error
		)
		if len(args) == 1 {
			cat, err = catalog.Load(args[0])
			if err != nil {
				return eris.Wrapf(err, "validate %s", args[0])
			}
		} else if cat, err = initCatalog(); err != nil {
			return err
		}
		fmt.Printf("ok: %d fields, %d comparative\n", len(cat.Fields()), len(cat.ComparativeFields()))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}
