package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/arin/roomchat/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const probeTimeout = 5 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and endpoint health",
	Long: `Run a health check on your roomchat setup.
Verifies the config directory, the chat endpoint URL and key, and that
the endpoint answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)
		cyan := color.New(color.FgCyan, color.Bold)

		cyan.Fprintf(os.Stderr, "\n  🩺 roomchat doctor\n\n")

		pass, fail, warn := 0, 0, 0

		check := func(name string, fn func() (string, error)) {
			detail, err := fn()
			if err != nil {
				if strings.HasPrefix(err.Error(), "warn:") {
					yellow.Fprintf(os.Stderr, "  ⚠ %s\n", name)
					dim.Fprintf(os.Stderr, "    %s\n", strings.TrimPrefix(err.Error(), "warn:"))
					warn++
				} else {
					red.Fprintf(os.Stderr, "  ✗ %s\n", name)
					dim.Fprintf(os.Stderr, "    %s\n", err.Error())
					fail++
				}
			} else {
				green.Fprintf(os.Stderr, "  ✓ %s", name)
				if detail != "" {
					dim.Fprintf(os.Stderr, " — %s", detail)
				}
				fmt.Fprintln(os.Stderr)
				pass++
			}
		}

		cfg, cfgErr := config.Load()

		// 1. Config directory
		check("Config directory", func() (string, error) {
			dir := config.Dir()
			info, err := os.Stat(dir)
			if err != nil {
				return "", fmt.Errorf("warn:~/.roomchat not found — will be created on first use")
			}
			if !info.IsDir() {
				return "", fmt.Errorf("~/.roomchat exists but is not a directory")
			}
			return dir, nil
		})

		// 2. Config readable
		check("Configuration loads", func() (string, error) {
			if cfgErr != nil {
				return "", cfgErr
			}
			return "", nil
		})
		if cfgErr != nil {
			cfg = &config.Config{}
		}

		// 3. Chat URL
		check("Chat endpoint configured", func() (string, error) {
			if err := cfg.Validate(); err != nil {
				return "", err
			}
			return cfg.ChatURL, nil
		})

		// 4. API key
		check("API key set", func() (string, error) {
			if cfg.APIKey == "" {
				return "", fmt.Errorf("warn:no key — requests go out without an Authorization header")
			}
			return cfg.MaskedKey(), nil
		})

		// 5. Endpoint reachable
		check("Chat endpoint reachable", func() (string, error) {
			if cfg.ChatURL == "" {
				return "", fmt.Errorf("warn:skipped, no endpoint configured")
			}
			status, err := probe(cmd.Context(), cfg.ChatURL)
			if err != nil {
				return "", fmt.Errorf("could not connect: %v", err)
			}
			return fmt.Sprintf("HTTP %d", status), nil
		})

		// 6. OS and arch
		check("System info", func() (string, error) {
			return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), nil
		})

		// Summary
		fmt.Fprintln(os.Stderr)
		total := pass + fail + warn
		if fail == 0 && warn == 0 {
			green.Fprintf(os.Stderr, "  All %d checks passed. You're good to go.\n\n", total)
		} else if fail == 0 {
			yellow.Fprintf(os.Stderr, "  %d passed, %d warnings. Everything works, but some things could be better.\n\n", pass, warn)
		} else {
			red.Fprintf(os.Stderr, "  %d passed, %d failed, %d warnings. Fix the failures above.\n\n", pass, fail, warn)
		}

		return nil
	},
}

// probe sends an OPTIONS request to url. Any HTTP answer means the
// endpoint is reachable; the chat function itself only accepts POST.
func probe(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
