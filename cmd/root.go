package cmd

import (
	"fmt"
	"os"

	"employee_tracker/config"
	"employee_tracker/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Warehouse employee attendance tracker",
	Long: `tracker runs the attendance API used by the mobile app and the admin
dashboard: geofenced check-in/out, outside activity logs and the daily
auto-checkout. Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		utils.InitValidator()
	},
	RunE: runServe,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(createAdminCmd)
}
