package cmd

import (
	"fmt"
	"os"

	"github.com/drawkit/draw-session/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	dataDir string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "draw-session",
	Short: "Inspect and manage AI diagram chat sessions",
	Long: `Operational CLI for the draw-session store: the durable, versioned
database of AI diagram chat sessions.

The store keeps each conversation together with its diagram state, ordered
by recency, migrated automatically from the legacy flat storage format.

Quick Start:
  draw-session list                    # List stored sessions
  draw-session show <session-id>       # View one conversation
  draw-session export --format md      # Export sessions as Markdown
  draw-session migrate                 # Import legacy flat storage`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Custom data directory (defaults to the per-OS location)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// resolvePaths resolves storage locations, honoring --data-dir.
func resolvePaths() (internal.DataPaths, error) {
	if dataDir != "" {
		os.Setenv(internal.EnvDataDir, dataDir)
	}
	return internal.DefaultDataPaths()
}

// openStore opens the session store for the resolved data directory.
func openStore() (*internal.Store, internal.DataPaths, error) {
	paths, err := resolvePaths()
	if err != nil {
		return nil, paths, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	store := internal.NewStore(paths.DBPath)
	if !store.Available() {
		return nil, paths, fmt.Errorf("session store unavailable at %s", paths.DBPath)
	}
	return store, paths, nil
}
