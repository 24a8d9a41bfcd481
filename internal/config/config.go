// Package config loads watcher settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
)

// DefaultSourceURL is the NCSL 2025 AI-legislation tracking page.
const DefaultSourceURL = "https://www.ncsl.org/technology-and-communication/artificial-intelligence-2025-legislation"

// DefaultStateFile is where the watcher persists its run state.
const DefaultStateFile = "ncsl_ai_energy_state.json"

// Config carries every runtime setting for a watch run. It is read once at
// startup and handed to constructors explicitly; no other package reads the
// environment.
type Config struct {
	SourceURL string
	StateFile string

	SMTP    SMTPConfig
	Twitter TwitterConfig

	DiffPolicy     bill.Policy
	PriorityStates []string
	KeywordsFile   string

	ForceEmail  bool
	MinInterval time.Duration

	StealthFetch bool
	FetchTimeout time.Duration

	LogLevel logger.Level
}

type SMTPConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	To      []string
	Timeout time.Duration
}

// Configured reports whether enough is set to actually send mail.
// Host and port always have defaults, so credentials and recipients decide.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Pass != "" && len(c.To) > 0
}

type TwitterConfig struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

func (c TwitterConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present, without overriding real env vars.
func Load() (Config, error) {
	_ = godotenv.Load()

	smtpUser := getEnv("SMTP_USER", "")

	cfg := Config{
		SourceURL: getEnv("NCSL_URL", DefaultSourceURL),
		StateFile: getEnv("NCSL_STATE_FILE", DefaultStateFile),
		SMTP: SMTPConfig{
			Host:    getEnv("SMTP_HOST", "smtp.office365.com"),
			Port:    getEnvInt("SMTP_PORT", 587),
			User:    smtpUser,
			Pass:    getEnv("SMTP_PASS", ""),
			From:    getEnv("EMAIL_FROM", smtpUser),
			To:      splitList(getEnv("EMAIL_TO", "")),
			Timeout: getEnvDuration("SMTP_TIMEOUT", 60*time.Second),
		},
		Twitter: TwitterConfig{
			APIKey:       getEnv("TWITTER_API_KEY", ""),
			APISecret:    getEnv("TWITTER_API_SECRET", ""),
			AccessToken:  getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret: getEnv("TWITTER_ACCESS_SECRET", ""),
		},
		PriorityStates: splitList(getEnv("PRIORITY_STATES", "Connecticut")),
		KeywordsFile:   getEnv("WATCH_KEYWORDS_FILE", ""),
		ForceEmail:     getEnvBool("FORCE_EMAIL", false),
		MinInterval:    time.Duration(getEnvInt("MIN_INTERVAL_DAYS", 0)) * 24 * time.Hour,
		StealthFetch:   getEnvBool("STEALTH_FETCH", false),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 60*time.Second),
		LogLevel:       logger.ParseLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	policy, err := bill.ParsePolicy(getEnv("DIFF_POLICY", string(bill.PolicySnapshot)))
	if err != nil {
		return Config{}, fmt.Errorf("DIFF_POLICY: %w", err)
	}
	cfg.DiffPolicy = policy

	return cfg, nil
}

// splitList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "1" || strings.EqualFold(value, "true")
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
