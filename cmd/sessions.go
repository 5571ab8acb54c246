package cmd

import (
	"fmt"
	"strings"

	"github.com/arin/roomchat/internal/ai"
	"github.com/arin/roomchat/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"history"},
	Short:   "Manage saved chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := history.List(sessionsLimit)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}

		cyan := color.New(color.FgCyan)
		dim := color.New(color.FgHiBlack)
		for _, s := range sessions {
			cyan.Printf("%s  ", shortID(s.ID))
			fmt.Printf("%s ", s.Title)
			dim.Printf("(%d messages, %s)\n", len(s.Messages), s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create an empty session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := history.Create(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		fmt.Println(s.ID)
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := history.Get(args[0])
		if err != nil {
			return fmt.Errorf("session %q: %w", args[0], err)
		}

		bold := color.New(color.Bold)
		green := color.New(color.FgGreen)
		cyan := color.New(color.FgCyan, color.Bold)
		dim := color.New(color.FgHiBlack)

		bold.Println(s.Title)
		dim.Printf("%s · created %s\n\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"))
		for _, m := range s.Messages {
			if m.Role == ai.RoleUser {
				green.Print("  you → ")
			} else {
				cyan.Print("  design → ")
			}
			fmt.Printf("%s\n\n", m.Content)
		}
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := history.Rename(args[0], strings.Join(args[1:], " ")); err != nil {
			return fmt.Errorf("failed to rename session: %w", err)
		}
		fmt.Println("Session renamed.")
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := history.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		fmt.Println("Chat deleted.")
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Number of sessions to show")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
