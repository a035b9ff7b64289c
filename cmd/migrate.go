package cmd

import (
	"fmt"

	"github.com/drawkit/draw-session/internal"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import legacy flat storage",
	Long: `Run the one-time migration of the legacy flat-storage conversation
into the session store. Safe to run repeatedly: once the migration has
completed it is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, paths, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		flat := internal.NewFlatStore(paths.LegacyPath)
		migrator := internal.NewMigrator(store, flat)

		if id := migrator.Run(); id != "" {
			fmt.Printf("Migrated legacy conversation to session %s\n", id)
		} else {
			fmt.Println("Nothing to migrate.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
