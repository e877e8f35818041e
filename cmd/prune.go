package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired sessions and their documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		n, err := st.DeleteExpiredSessions(ctx)
		if err != nil {
			return eris.Wrap(err, "prune sessions")
		}
		fmt.Printf("deleted %d expired sessions\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
