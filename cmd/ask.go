package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/arin/roomchat/internal/ai"
	"github.com/arin/roomchat/internal/ui"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single design question",
	Long: `Send one question to the design assistant and stream the reply to
stdout. Nothing is saved to your sessions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, err := newClient("ask")
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	prompt := strings.Join(args, " ")
	sp := ui.NewSpinner("Thinking...")
	r := ui.NewRenderer(os.Stdout, "")
	r.OnFirst = sp.Stop
	sp.Start()
	client.StreamChat(ctx, []ai.Message{{Role: ai.RoleUser, Content: prompt}}, r.Callbacks())
	sp.Stop()

	if !r.Done() {
		// The notifier has already told the user what went wrong.
		return errors.New(r.Err())
	}
	return nil
}
