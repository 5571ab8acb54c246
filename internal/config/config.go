// Package config handles loading and persisting user configuration
// for roomchat. Configuration is stored in ~/.roomchat/config.json and
// may be overridden by a .env file or the environment.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	dirName  = ".roomchat"
	fileName = "config.json"
	envFile  = ".env"

	envKeyChatURL    = "ROOMCHAT_CHAT_URL"
	envKeyAPIKey     = "ROOMCHAT_API_KEY"
	envKeyProjectURL = "ROOMCHAT_PROJECT_URL"

	// chatFunctionPath is appended to a project URL to reach the chat function.
	chatFunctionPath = "/functions/v1/chat"
)

// ErrNoChatURL is returned by Validate when no endpoint is configured.
var ErrNoChatURL = errors.New("no chat endpoint configured (run: roomchat config set-url <url>)")

// Config holds the user's configuration.
type Config struct {
	ChatURL string `json:"chat_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// Dir returns the configuration directory path.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

func configPath() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the configuration from disk, then applies a .env file in
// the working directory and the environment. Values already present in
// the environment win over .env.
func Load() (*Config, error) {
	cfg := readFile()

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if project := os.Getenv(envKeyProjectURL); project != "" {
		cfg.ChatURL = strings.TrimRight(project, "/") + chatFunctionPath
	}
	if url := os.Getenv(envKeyChatURL); url != "" {
		cfg.ChatURL = url
	}
	if key := os.Getenv(envKeyAPIKey); key != "" {
		cfg.APIKey = key
	}

	return cfg, nil
}

// Validate reports whether cfg can be used to reach the chat endpoint.
func (c *Config) Validate() error {
	if c.ChatURL == "" {
		return ErrNoChatURL
	}
	return nil
}

// MaskedKey returns the API key with everything but its ends hidden.
func (c *Config) MaskedKey() string {
	switch {
	case c.APIKey == "":
		return "(not set)"
	case len(c.APIKey) <= 8:
		return strings.Repeat("*", len(c.APIKey))
	default:
		return c.APIKey[:4] + "..." + c.APIKey[len(c.APIKey)-4:]
	}
}

// readFile loads the on-disk config, ignoring a missing or corrupt file.
func readFile() *Config {
	cfg := &Config{}
	data, err := os.ReadFile(configPath())
	if err == nil {
		_ = json.Unmarshal(data, cfg)
	}
	return cfg
}

// save persists the config to disk.
func save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0o600)
}

// SetAPIKey saves the API key to the config file.
func SetAPIKey(key string) error {
	cfg := readFile()
	cfg.APIKey = key
	return save(cfg)
}

// SetChatURL saves the chat endpoint URL to the config file.
func SetChatURL(url string) error {
	cfg := readFile()
	cfg.ChatURL = url
	return save(cfg)
}
