package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"narou-client/internal/components/telemetry"
	"narou-client/internal/fetcher"
	"narou-client/internal/narou"
	"narou-client/internal/useragent"
	"narou-client/pkg/configutil"

	"github.com/spf13/cobra"
)

// Config is read from narou.json5 (and narou.local.json5) in the current
// directory or any of its parents, every field is optional.
type Config struct {
	// UserAgentMode is "random" or "fixed".
	UserAgentMode     string               `json:"user_agent_mode"`
	UserAgent         string               `json:"user_agent"`
	TimeoutSeconds    int                  `json:"timeout_seconds"`
	MinDelayMs        int                  `json:"min_delay_ms"`
	MaxDelayMs        int                  `json:"max_delay_ms"`
	DisableDelay      bool                 `json:"disable_delay"`
	BaseURLs          map[string]string    `json:"base_urls"`
	DecodePolicy      string               `json:"decode_policy"`
	RequestsPerSecond float64              `json:"requests_per_second"`
	CloudflareBypass  bool                 `json:"cloudflare_bypass"`
	Telemetry         telemetry.OtlpConfig `json:"telemetry"`
}

var (
	configName string
	debug      bool
	outputJSON bool

	cfg     Config
	tracing telemetry.Tracing
	tel     telemetry.API = telemetry.SlogAPI{}
)

var rootCmd = &cobra.Command{
	Use:   "narou",
	Short: "narou is a CLI for the syosetu.com apis and pages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(debug)

		loaded, err := configutil.ReadRecursively[Config](configName)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no config file found, using defaults", "name", configName)
		case err != nil:
			return fmt.Errorf("read config: %w", err)
		default:
			cfg = loaded
		}

		tracing, err = telemetry.SetupTracing(cmd.Context(), "narou", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := tracing.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush traces", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configName, "config", "narou.json5", "Name of the config file to look for.")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print debug logs.")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print results as json instead of a table.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func userAgentFromConfig(c Config) (*useragent.Provider, error) {
	switch c.UserAgentMode {
	case "", "random":
		if c.UserAgent != "" {
			return useragent.NewFixed(c.UserAgent, nil)
		}
		return useragent.NewRandom(nil), nil
	case "fixed":
		return useragent.NewFixed(c.UserAgent, nil)
	}
	return nil, fmt.Errorf("unknown user agent mode %q", c.UserAgentMode)
}

func delayFromConfig(c Config) (fetcher.DelayConfig, error) {
	if c.DisableDelay {
		return fetcher.DisabledDelay(), nil
	}
	if c.MinDelayMs == 0 && c.MaxDelayMs == 0 {
		return fetcher.DefaultDelay(), nil
	}
	return fetcher.NewDelayConfig(
		time.Duration(c.MinDelayMs)*time.Millisecond,
		time.Duration(c.MaxDelayMs)*time.Millisecond,
	)
}

func newClient() (*narou.Client, error) {
	policy, err := narou.ParseDecodePolicy(cfg.DecodePolicy)
	if err != nil {
		return nil, err
	}
	opts := narou.Options{
		BaseURLs:          cfg.BaseURLs,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
		DecodePolicy:      policy,
	}
	if cfg.UserAgent != "" {
		ua, err := useragent.NewFixed(cfg.UserAgent, nil)
		if err != nil {
			return nil, err
		}
		opts.UserAgent = ua
	}
	return narou.NewClient(opts, tel)
}

func newFetcher() (*fetcher.Fetcher, error) {
	ua, err := userAgentFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	delay, err := delayFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return fetcher.New(fetcher.Options{
		UserAgent:        ua,
		Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
		Delay:            &delay,
		CloudflareBypass: cfg.CloudflareBypass,
	}, tel)
}
