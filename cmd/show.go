package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var showLimit int

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's conversation",
	Long:  `Show the full conversation of one stored session.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		session := store.Get(args[0])
		if session == nil {
			return fmt.Errorf("session not found: %s", args[0])
		}

		fmt.Println(sessionHeaderStyle.Render(session.Title))
		fmt.Println(sessionMetaStyle.Render(fmt.Sprintf(
			"%s · %d messages · updated %s",
			session.ID,
			len(session.Messages),
			time.UnixMilli(session.UpdatedAt).Format("2006-01-02 15:04"),
		)))

		messages := session.Messages
		if showLimit > 0 && len(messages) > showLimit {
			messages = messages[len(messages)-showLimit:]
			fmt.Println(sessionMetaStyle.Render(fmt.Sprintf("(showing last %d)", showLimit)))
		}

		for _, msg := range messages {
			switch msg.Role {
			case "user":
				fmt.Println(userMessageStyle.Render("You"))
			case "assistant":
				fmt.Println(assistantMessageStyle.Render("Assistant"))
			default:
				fmt.Println(sessionMetaStyle.Render(msg.Role))
			}
			for _, part := range msg.Parts {
				switch part.Type {
				case "text":
					fmt.Println(messageContentStyle.Render(part.Text()))
				case "file":
					fmt.Println(messageContentStyle.Render("[file attachment]"))
				default:
					fmt.Println(messageContentStyle.Render(fmt.Sprintf("[%s]", part.Type)))
				}
			}
		}

		if session.HasDiagram() {
			fmt.Println(sessionMetaStyle.Render("Session has a saved diagram. Use 'export' to retrieve it."))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Show only the last N messages")
	rootCmd.AddCommand(showCmd)
}
