package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	diagramStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long:  `List every stored chat session, most recently updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		sessions := store.ListMetadata()
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Sessions (%d)", len(sessions))))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, s := range sessions {
			updated := time.UnixMilli(s.UpdatedAt).Format("2006-01-02 15:04")
			diagram := ""
			if s.HasDiagram {
				diagram = diagramStyle.Render("◆")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				idStyle.Render(s.ID),
				s.Title,
				countStyle.Render(fmt.Sprintf("%d msgs", s.MessageCount)),
				dateStyle.Render(updated),
				diagram,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
