package cmd

import (
	"context"
	"fmt"

	"myArtMarket/app/bootstrap"
	"myArtMarket/business/recommendation"

	"github.com/spf13/cobra"
)

var (
	recommendLimit  int
	recommendDevice string
	recommendBudget float64
	recommendDebug  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <user_id>",
	Short: "Rank the catalog for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		hints := recommendationHints(cmd, recommendDevice, recommendBudget)

		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			if recommendDebug {
				recs, err := app.Service.DebugRecommend(ctx, userID, recommendLimit, hints)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), recs)
			}
			recs, err := app.Service.GetPersonalizedRecommendations(ctx, userID, recommendLimit, hints)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		})
	},
}

var (
	feedbackDevice string
	feedbackBudget float64
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <user_id> <artwork_id> <event_type>",
	Short: "Record an interaction and update the user's model",
	Long:  "event_type is one of impression, click, save, add_to_cart, purchase, dismiss.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		var artworkID uint64
		if _, err := fmt.Sscan(args[1], &artworkID); err != nil {
			return fmt.Errorf("invalid artwork id %q", args[1])
		}
		hints := recommendationHints(cmd, feedbackDevice, feedbackBudget)

		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			if err := app.Service.RecordFeedback(ctx, userID, artworkID, args[2], hints); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s on artwork %d for user %d\n", args[2], artworkID, userID)
			return nil
		})
	},
}

// recommendationHints only sets the budget when the flag was given.
func recommendationHints(cmd *cobra.Command, device string, budget float64) recommendation.Hints {
	h := recommendation.Hints{Device: device}
	if cmd.Flags().Changed("budget") {
		b := budget
		h.Budget = &b
	}
	return h
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "Number of results (0 uses the configured default)")
	recommendCmd.Flags().StringVar(&recommendDevice, "device", "", "Device class: mobile, tablet or desktop")
	recommendCmd.Flags().Float64Var(&recommendBudget, "budget", 0, "Budget override")
	recommendCmd.Flags().BoolVar(&recommendDebug, "debug", false, "Print score components and feature vectors")

	feedbackCmd.Flags().StringVar(&feedbackDevice, "device", "", "Device class: mobile, tablet or desktop")
	feedbackCmd.Flags().Float64Var(&feedbackBudget, "budget", 0, "Budget override")
}
