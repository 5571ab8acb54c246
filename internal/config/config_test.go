package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears the variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(envKeyChatURL, "")
	t.Setenv(envKeyAPIKey, "")
	t.Setenv(envKeyProjectURL, "")
	wd := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return wd
}

func TestLoad_Empty(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.ChatURL != "" || cfg.APIKey != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if err := cfg.Validate(); err != ErrNoChatURL {
		t.Errorf("expected ErrNoChatURL, got %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	isolate(t)

	if err := SetChatURL("https://example.test/chat"); err != nil {
		t.Fatalf("SetChatURL failed: %v", err)
	}
	if err := SetAPIKey("pk-123456789"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.ChatURL != "https://example.test/chat" {
		t.Errorf("unexpected chat url: %s", cfg.ChatURL)
	}
	if cfg.APIKey != "pk-123456789" {
		t.Errorf("unexpected api key: %s", cfg.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	_ = SetChatURL("https://file.test/chat")

	t.Setenv(envKeyChatURL, "https://env.test/chat")
	t.Setenv(envKeyAPIKey, "env-key")

	cfg, _ := Load()
	if cfg.ChatURL != "https://env.test/chat" {
		t.Errorf("expected chat url from env, got: %s", cfg.ChatURL)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("expected api key from env, got: %s", cfg.APIKey)
	}
}

func TestLoad_ProjectURL(t *testing.T) {
	isolate(t)
	t.Setenv(envKeyProjectURL, "https://abc.example.co/")

	cfg, _ := Load()
	if cfg.ChatURL != "https://abc.example.co/functions/v1/chat" {
		t.Errorf("unexpected chat url: %s", cfg.ChatURL)
	}
}

func TestLoad_ChatURLBeatsProjectURL(t *testing.T) {
	isolate(t)
	t.Setenv(envKeyProjectURL, "https://abc.example.co")
	t.Setenv(envKeyChatURL, "https://direct.test/chat")

	cfg, _ := Load()
	if cfg.ChatURL != "https://direct.test/chat" {
		t.Errorf("unexpected chat url: %s", cfg.ChatURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	wd := isolate(t)
	os.Unsetenv(envKeyChatURL)
	os.Unsetenv(envKeyAPIKey)

	content := envKeyChatURL + "=https://dotenv.test/chat\n" + envKeyAPIKey + "=dotenv-key\n"
	if err := os.WriteFile(filepath.Join(wd, envFile), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv(envKeyChatURL)
		os.Unsetenv(envKeyAPIKey)
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.ChatURL != "https://dotenv.test/chat" {
		t.Errorf("expected chat url from .env, got: %s", cfg.ChatURL)
	}
	if cfg.APIKey != "dotenv-key" {
		t.Errorf("expected api key from .env, got: %s", cfg.APIKey)
	}
}

func TestMaskedKey(t *testing.T) {
	cases := map[string]string{
		"":                 "(not set)",
		"short":            "*****",
		"pk-live-abcdef12": "pk-l...ef12",
	}
	for key, want := range cases {
		cfg := &Config{APIKey: key}
		if got := cfg.MaskedKey(); got != want {
			t.Errorf("MaskedKey(%q) = %q, want %q", key, got, want)
		}
	}
}
