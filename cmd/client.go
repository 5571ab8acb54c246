package cmd

import (
	"os"

	"github.com/arin/roomchat/internal/ai"
	"github.com/arin/roomchat/internal/config"
	"github.com/arin/roomchat/internal/stats"
	"github.com/arin/roomchat/internal/ui"
)

// newClient loads the configuration and builds a chat client whose
// notices go to stderr and whose reports are recorded under subcommand.
func newClient(subcommand string) (*ai.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return ai.NewClient(cfg.ChatURL, cfg.APIKey,
		ai.WithNotifier(ui.NewNotifier(os.Stderr)),
		ai.WithReporter(func(rep ai.Report) {
			_ = stats.Save(stats.FromReport(subcommand, rep))
		}),
	), nil
}
