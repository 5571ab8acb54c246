package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/arin/roomchat/internal/ai"
	"github.com/arin/roomchat/internal/history"
	"github.com/arin/roomchat/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive design chat",
	Long: `Start a conversational session with the design assistant. Replies
stream in as they are generated and every exchange is saved, so you can
pick the conversation up later with --session.

Press Ctrl-C while a reply is streaming to stop it.
Type 'exit' or 'quit' to end the session.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "Continue the session with this id (or id prefix)")
}

// turn tracks the cancel func of the reply currently streaming.
type turn struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (t *turn) set(cancel context.CancelFunc) {
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()
}

func (t *turn) stop() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := newClient("chat")
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	session, err := openSession(chatSessionID)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, "  roomchat")
	dim.Fprintf(os.Stderr, "  %s (%s)\n", session.Title, shortID(session.ID))
	dim.Fprintf(os.Stderr, "  Type 'exit' to quit.\n\n")

	// Ctrl-C cancels a streaming reply; at the prompt it ends the chat.
	var current turn
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			if client.InFlight() {
				current.stop()
				continue
			}
			dim.Fprintf(os.Stderr, "\n  Later! 👋\n\n")
			os.Exit(0)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		green.Fprint(os.Stderr, "  you → ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" || input == "bye" {
			dim.Fprintf(os.Stderr, "\n  Later! 👋\n\n")
			break
		}

		if _, err := history.AddMessage(session.ID, ai.RoleUser, input); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		if session, err = history.Get(session.ID); err != nil {
			return fmt.Errorf("failed to reload session: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		current.set(cancel)

		sp := ui.NewSpinner("Sketching ideas...")
		r := ui.NewRenderer(os.Stdout, cyan.Sprint("  design → "))
		r.OnFirst = sp.Stop
		sp.Start()
		client.StreamChat(ctx, session.Conversation(), r.Callbacks())
		sp.Stop()

		current.set(nil)
		cancelled := endedByCancel(ctx, r)
		cancel()

		if !r.Done() {
			if cancelled {
				dim.Fprintf(os.Stderr, "  (reply cancelled)\n\n")
			}
			continue
		}
		if r.Text() == "" {
			continue
		}
		if _, err := history.AddMessage(session.ID, ai.RoleAssistant, r.Text()); err != nil {
			return fmt.Errorf("failed to save reply: %w", err)
		}
	}

	return scanner.Err()
}

// endedByCancel reports whether the reply stopped because ctx was
// cancelled, as opposed to a server error that happens to read "cancelled".
func endedByCancel(ctx context.Context, r *ui.Renderer) bool {
	return !r.Done() && errors.Is(ctx.Err(), context.Canceled)
}

// openSession loads the session with id, or creates a new one when id is empty.
func openSession(id string) (*history.Session, error) {
	if id == "" {
		s, err := history.Create("")
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		return s, nil
	}
	s, err := history.Get(id)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", id, err)
	}
	return s, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
