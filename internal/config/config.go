package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Sandbox defaults for the ledger JSON API.
	DefaultHTTPBaseURL = "http://localhost:7575/"
	DefaultWSBaseURL   = "ws://localhost:7575/"

	// Development-only signing secret understood by the sandbox.
	defaultTokenSecret = "secret"
)

type GlobalFlags struct {
	ConfigPath     string
	JSON           bool
	EnableCommands string
	Timeout        string
	LedgerURL      string
	WSURL          string
}

type Settings struct {
	OutputMode     string
	EnableCommands []string
	Timeout        time.Duration
	HTTPBaseURL    string
	WSBaseURL      string
	TokenSecret    string
}

type fileConfig struct {
	Output  string `yaml:"output"`
	Timeout string `yaml:"timeout"`
	Ledger  struct {
		HTTPURL        string `yaml:"http_url"`
		WSURL          string `yaml:"ws_url"`
		TokenSecret    string `yaml:"token_secret"`
		TokenSecretEnv string `yaml:"token_secret_env"`
	} `yaml:"ledger"`
}

// Load resolves settings with flags > environment > config file > defaults.
func Load(flags GlobalFlags) (Settings, error) {
	settings := Settings{
		OutputMode:  "text",
		Timeout:     10 * time.Second,
		HTTPBaseURL: DefaultHTTPBaseURL,
		WSBaseURL:   DefaultWSBaseURL,
		TokenSecret: defaultTokenSecret,
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}
	applyEnv(&settings)
	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	if settings.OutputMode != "text" && settings.OutputMode != "json" {
		return Settings{}, fmt.Errorf("output must be text or json")
	}
	return settings, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "lending", "config.yaml"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Ledger.HTTPURL != "" {
		settings.HTTPBaseURL = cfg.Ledger.HTTPURL
	}
	if cfg.Ledger.WSURL != "" {
		settings.WSBaseURL = cfg.Ledger.WSURL
	}
	if cfg.Ledger.TokenSecret != "" {
		settings.TokenSecret = cfg.Ledger.TokenSecret
	}
	if cfg.Ledger.TokenSecretEnv != "" {
		settings.TokenSecret = os.Getenv(cfg.Ledger.TokenSecretEnv)
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("LENDING_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("LENDING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("LEDGER_HTTP_URL"); v != "" {
		settings.HTTPBaseURL = v
	}
	if v := os.Getenv("LEDGER_WS_URL"); v != "" {
		settings.WSBaseURL = v
	}
	if v := os.Getenv("LEDGER_TOKEN_SECRET"); v != "" {
		settings.TokenSecret = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if strings.TrimSpace(flags.EnableCommands) != "" {
		parts := strings.Split(flags.EnableCommands, ",")
		allowed := make([]string, 0, len(parts))
		for _, part := range parts {
			if v := strings.TrimSpace(part); v != "" {
				allowed = append(allowed, v)
			}
		}
		settings.EnableCommands = allowed
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if strings.TrimSpace(flags.LedgerURL) != "" {
		settings.HTTPBaseURL = flags.LedgerURL
	}
	if strings.TrimSpace(flags.WSURL) != "" {
		settings.WSBaseURL = flags.WSURL
	}
	return nil
}
