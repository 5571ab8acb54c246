package cmd

import (
	"fmt"

	"github.com/arin/roomchat/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage roomchat configuration",
}

var setURLCmd = &cobra.Command{
	Use:   "set-url <chat-url>",
	Short: "Set the chat endpoint URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetChatURL(args[0]); err != nil {
			return fmt.Errorf("failed to save chat URL: %w", err)
		}
		fmt.Println("Chat URL saved.")
		return nil
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Set the key sent as the bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetAPIKey(args[0]); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
		fmt.Println("API key saved successfully.")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		chatURL := cfg.ChatURL
		if chatURL == "" {
			chatURL = "(not set)"
		}
		fmt.Printf("Chat URL:   %s\n", chatURL)
		fmt.Printf("API Key:    %s\n", cfg.MaskedKey())
		fmt.Printf("Config Dir: %s\n", config.Dir())
		return nil
	},
}

func init() {
	configCmd.AddCommand(setURLCmd)
	configCmd.AddCommand(setKeyCmd)
	configCmd.AddCommand(showCmd)
}
