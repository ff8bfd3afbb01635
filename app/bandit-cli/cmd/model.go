package cmd

import (
	"context"
	"fmt"

	"myArtMarket/app/bootstrap"

	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect or reset per-user models",
}

var modelShowCmd = &cobra.Command{
	Use:   "show <user_id>",
	Short: "Print a summary of a user's model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			summary, err := app.Service.InspectModel(ctx, userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		})
	},
}

var modelResetForce bool

var modelResetCmd = &cobra.Command{
	Use:   "reset <user_id>",
	Short: "Forget everything learned for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		if !modelResetForce {
			return fmt.Errorf("refusing to reset user %d without --force", userID)
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			if err := app.Service.ResetModel(ctx, userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model reset for user %d\n", userID)
			return nil
		})
	},
}

func init() {
	modelResetCmd.Flags().BoolVar(&modelResetForce, "force", false, "Confirm the reset")
	modelCmd.AddCommand(modelShowCmd)
	modelCmd.AddCommand(modelResetCmd)
}
