package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var credentialHelperCmd = &cobra.Command{
	Use:   "credential-helper <get|store|erase>",
	Short: "Act as a git credential helper backed by fresh App tokens",
	Long: `Implements the git credential helper protocol. Configure with:

  git config --global credential.https://github.com.helper "!ghapp credential-helper"

On "get" for a github.com HTTPS remote, a fresh installation token is
issued and returned as the password for the x-access-token user. Since
tokens are never stored, "store" and "erase" are accepted and ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "get" {
			// git calls store/erase as part of its normal flow; nothing
			// is persisted here, so both are no-ops.
			return nil
		}

		attrs, err := parseCredentialInput(os.Stdin)
		if err != nil {
			return err
		}
		if !wantsGitHubToken(attrs) {
			return nil
		}

		inputs, err := gatherInputs(cmd.Context(), "", "", "", false)
		if err != nil {
			return err
		}
		token, err := inputs.Issuer.GenerateInstallationToken(cmd.Context(), inputs.AppID, inputs.PrivateKey, inputs.InstallationID)
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, formatCredentialOutput(token))
		return nil
	},
}

// parseCredentialInput reads git's key=value credential description,
// terminated by a blank line or EOF.
func parseCredentialInput(r io.Reader) (map[string]string, error) {
	attrs := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed credential input line: %q", line)
		}
		attrs[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading credential input: %w", err)
	}
	return attrs, nil
}

// wantsGitHubToken reports whether the credential request is for an
// HTTPS github.com remote. Anything else is left to other helpers.
func wantsGitHubToken(attrs map[string]string) bool {
	if attrs["protocol"] != "https" {
		return false
	}
	host := attrs["host"]
	return host == "github.com" || strings.HasSuffix(host, ".github.com")
}

// formatCredentialOutput renders the helper response git expects.
func formatCredentialOutput(token string) string {
	return "username=x-access-token\npassword=" + token + "\n"
}

func init() {
	rootCmd.AddCommand(credentialHelperCmd)
}
