package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drawkit/draw-session/internal"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export [session-id...]",
	Short: "Export sessions to files or stdout",
	Long: `Export stored sessions in json, yaml, or markdown format.

With session ids, exports those sessions; without, exports every stored
session. With --output, writes one file per session into the directory;
without, writes to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		exporter, err := internal.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		ids := args
		if len(ids) == 0 {
			for _, meta := range store.ListMetadata() {
				ids = append(ids, meta.ID)
			}
		}
		if len(ids) == 0 {
			fmt.Println("No sessions to export.")
			return nil
		}

		if exportOutput != "" {
			if err := os.MkdirAll(exportOutput, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		exported := 0
		for _, id := range ids {
			session := store.Get(id)
			if session == nil {
				internal.LogWarn("Session not found, skipping: %s", id)
				continue
			}
			if exportOutput == "" {
				if err := exporter.Export(session, os.Stdout); err != nil {
					return fmt.Errorf("failed to export %s: %w", id, err)
				}
			} else {
				path := filepath.Join(exportOutput, fmt.Sprintf("session_%s.%s", id, exporter.Extension()))
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				if err := exporter.Export(session, f); err != nil {
					f.Close()
					return fmt.Errorf("failed to export %s: %w", id, err)
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			exported++
		}

		if exportOutput != "" {
			fmt.Printf("Exported %d session(s) to %s\n", exported, exportOutput)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, yaml, md)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
