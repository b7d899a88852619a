package cmd

import (
	"context"
	"fmt"
	"time"

	"employee_tracker/model"
	"employee_tracker/usecase"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

// createAdminCmd bootstraps the first admin, since registration over HTTP
// requires one.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Args:  cobra.NoArgs,
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
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

	user, err := a.users.Register(ctx, usecase.RegisterInput{
		Username: adminUsername,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %s", usecase.MessageOf(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Username, user.UserID)
	return nil
}
