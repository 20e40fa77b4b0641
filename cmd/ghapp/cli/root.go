// Package cli implements the ghapp command-line interface using Cobra.
package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/majorcontext/ghapp/internal/config"
	"github.com/majorcontext/ghapp/internal/log"
)

var (
	verbose bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:   "ghapp",
	Short: "Issue GitHub App installation tokens for git operations",
	Long: `ghapp issues short-lived GitHub App installation access tokens used
to authorize git clone, fetch, and push in automated builds and
sandboxes. Every invocation performs a fresh exchange: sign a JWT with
the App's private key, trade it for an installation token (~1 hour).

Inputs come from flags, GHAPP_* environment variables, or
~/.ghapp/config.yaml. The private key may be given as a literal PEM
string, a file path, or a secret reference (env://, file://,
keyring://, awssm://, op://).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		globalCfg, _ := config.Load()
		retentionDays := 7
		if globalCfg != nil {
			retentionDays = globalCfg.Debug.RetentionDays
		}
		debugDir := filepath.Join(config.Dir(), "debug")

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonLog,
			DebugDir:      debugDir,
			RetentionDays: retentionDays,
		}); err != nil {
			// Log init failure is non-fatal; fall back to the default logger.
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	defer log.Close()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "JSON log output on stderr")
}
