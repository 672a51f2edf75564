package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newLeaderboardListCmd())
	cmd.AddCommand(newLeaderboardSubmitCmd())

	return cmd
}

func newLeaderboardListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the ranked leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/leaderboard"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result []LeaderboardEntry
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to show (server caps at 50)")

	return cmd
}

func newLeaderboardSubmitCmd() *cobra.Command {
	var (
		userID    string
		name      string
		totalTime int64
		penalties int64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a score for a player",
		Long: `Submit a finished play-through. The player defaults to the stored identity;
--user and --name override it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := cfg.LoadIdentity()
			if err != nil {
				return err
			}
			if userID == "" && stored != nil {
				userID = stored.UserID
			}
			if name == "" && stored != nil {
				name = stored.DisplayName
			}
			if userID == "" {
				return fmt.Errorf("--user is required when no identity is stored")
			}

			req := map[string]any{
				"userId":    userID,
				"totalTime": totalTime,
				"penalties": penalties,
			}
			if name != "" {
				req["displayName"] = name
			}

			var result LeaderboardEntry
			if err := client.Post("/api/v1/leaderboard", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Player user id (defaults to the stored identity)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the stored identity)")
	cmd.Flags().Int64Var(&totalTime, "time", 0, "Total time in milliseconds (required)")
	cmd.Flags().Int64Var(&penalties, "penalties", 0, "Number of wrong guesses")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}
