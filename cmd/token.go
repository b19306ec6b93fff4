package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"github.com/yourusername/freelancedesk/handlers"
)

var tokenUserID uint

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access and refresh token pair for a user",
	Long: `Mint tokens signed with JWT_SECRET and JWT_REFRESH_SECRET. Accounts are
managed outside this service, so this is how local and test callers obtain
credentials.`,
	Example: `  freelancedesk token --user 1`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID == 0 {
			return errors.New("--user must be a positive user id")
		}
		tokens, err := handlers.IssueTokens(cfg, tokenUserID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	},
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user", 0, "User id to put in the token claims")
	rootCmd.AddCommand(tokenCmd)
}
