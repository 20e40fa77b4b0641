package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	tokenAppID          string
	tokenInstallationID string
	tokenKey            string
	tokenPasteKey       bool
	tokenJSON           bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a fresh installation access token",
	Long: `Issue a fresh GitHub App installation access token and print it.

The token is valid for about an hour and authorizes git operations for
the installation's repositories, e.g.:

  git clone https://x-access-token:$(ghapp token)@github.com/org/repo.git

No token is cached; every call performs a fresh exchange.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := gatherInputs(cmd.Context(), tokenAppID, tokenInstallationID, tokenKey, tokenPasteKey)
		if err != nil {
			return err
		}

		token, err := inputs.Issuer.IssueToken(cmd.Context(), inputs.AppID, inputs.PrivateKey, inputs.InstallationID)
		if err != nil {
			return err
		}

		if tokenJSON {
			return json.NewEncoder(os.Stdout).Encode(token)
		}
		fmt.Println(token.Token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenAppID, "app-id", "", "GitHub App id")
	tokenCmd.Flags().StringVar(&tokenInstallationID, "installation-id", "", "App installation id")
	tokenCmd.Flags().StringVar(&tokenKey, "key", "", "private key: literal PEM, file path, or secret reference")
	tokenCmd.Flags().BoolVar(&tokenPasteKey, "paste-key", false, "read the private key from the terminal (hidden input)")
	tokenCmd.Flags().BoolVar(&tokenJSON, "json", false, "print token and expiry as JSON")
	rootCmd.AddCommand(tokenCmd)
}
