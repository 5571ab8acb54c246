package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roomchat [question]",
	Short: "Chat with the AI interior-design assistant",
	Long: `roomchat streams replies from the design assistant's chat endpoint
straight into your terminal.

Examples:
  roomchat                                  start an interactive chat
  roomchat chat --session 3f2a              continue a saved session
  roomchat how do I make a narrow hallway feel wider
  roomchat sessions list

Configure the endpoint first:
  roomchat config set-url https://<project>.supabase.co/functions/v1/chat
  roomchat config set-key <publishable-key>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runChat(cmd, args)
		}
		return runAsk(cmd, args)
	},
	SilenceUsage:               true,
	SilenceErrors:              true,
	TraverseChildren:           true,
	SuggestionsMinimumDistance: 1,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(doctorCmd)
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point called from main.
func Execute() error {
	return rootCmd.Execute()
}
