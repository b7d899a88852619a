package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check out every employee still checked in today",
	Long: `reconcile runs one auto-checkout pass immediately, closing each open
session at the current time. Running it again is harmless.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.attendance.ReconcileOpenSessions(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "closed:  %d\n", result.Closed)
	fmt.Fprintf(out, "skipped: %d\n", result.Skipped)
	fmt.Fprintf(out, "failed:  %d\n", result.Failed)
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  %s (user %s): %v\n", f.DayID, f.UserID, f.Err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d records could not be closed", result.Failed)
	}
	return nil
}
