package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.setupIndexes(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "indexes are up to date")
		return nil
	},
}
