package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ConfigFileName = ".tonunlock.json"

const (
	DefaultScheduleURL   = "https://ppl-ai-code-interpreter-files.s3.amazonaws.com/web/direct-files/cc2d77caed52778a07af0e0929f44f57/31fd8a6c-8675-411e-8f3f-3afe59f1826c/2fe0df27.json"
	DefaultMarketDataURL = "https://api.coingecko.com/api/v3"
	DefaultCoinGeckoID   = "the-open-network"
	DefaultSymbol        = "TON"
	DefaultExplorerURL   = "https://tonviewer.com"
	DefaultLogFileName   = ".tonunlock.log"
)

// Config holds application-wide settings and the persisted theme preference.
type Config struct {
	ScheduleURL            string `json:"schedule_url"`
	MarketDataURL          string `json:"market_data_url"`
	CoinGeckoID            string `json:"coingecko_id"`
	Symbol                 string `json:"symbol"`
	ExplorerURL            string `json:"explorer_url"`
	RequestTimeoutSeconds  int    `json:"request_timeout_seconds"`
	MetricsRefreshSeconds  int    `json:"metrics_refresh_seconds"`
	ErrorBannerSeconds     int    `json:"error_banner_seconds"`
	SystemThemePollSeconds int    `json:"system_theme_poll_seconds"`
	Theme                  string `json:"theme,omitempty"`
	LogFile                string `json:"log_file,omitempty"`
	LogLevel               string `json:"log_level"`
	LogEnvironment         string `json:"log_environment"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ScheduleURL:           DefaultScheduleURL,
		MarketDataURL:         DefaultMarketDataURL,
		CoinGeckoID:           DefaultCoinGeckoID,
		Symbol:                DefaultSymbol,
		ExplorerURL:           DefaultExplorerURL,
		RequestTimeoutSeconds: 10,
		ErrorBannerSeconds:    5,
		LogLevel:              "info",
		LogEnvironment:        "production",
	}
}

// RequestTimeout is the per-request bound for both remote resources.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate reports structural problems that make the dashboard unusable.
func (c Config) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.ScheduleURL) == "" {
		errs = append(errs, "schedule_url is empty")
	}
	if strings.TrimSpace(c.MarketDataURL) == "" {
		errs = append(errs, "market_data_url is empty")
	}
	if strings.TrimSpace(c.CoinGeckoID) == "" {
		errs = append(errs, "coingecko_id is empty")
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, "request_timeout_seconds must be positive")
	}
	if c.Theme != "" && c.Theme != "light" && c.Theme != "dark" {
		errs = append(errs, fmt.Sprintf("theme must be \"light\" or \"dark\", got %q", c.Theme))
	}
	return errs
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// DefaultLogPath places the log next to the user's home config.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultLogFileName
	}
	return filepath.Join(home, DefaultLogFileName)
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) (Config, error) {
	var raw struct {
		ScheduleURL            *string `json:"schedule_url"`
		MarketDataURL          *string `json:"market_data_url"`
		CoinGeckoID            *string `json:"coingecko_id"`
		Symbol                 *string `json:"symbol"`
		ExplorerURL            *string `json:"explorer_url"`
		RequestTimeoutSeconds  *int    `json:"request_timeout_seconds"`
		MetricsRefreshSeconds  *int    `json:"metrics_refresh_seconds"`
		ErrorBannerSeconds     *int    `json:"error_banner_seconds"`
		SystemThemePollSeconds *int    `json:"system_theme_poll_seconds"`
		Theme                  string  `json:"theme"`
		LogFile                string  `json:"log_file"`
		LogLevel               *string `json:"log_level"`
		LogEnvironment         *string `json:"log_environment"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if raw.ScheduleURL != nil {
		cfg.ScheduleURL = *raw.ScheduleURL
	}
	if raw.MarketDataURL != nil {
		cfg.MarketDataURL = strings.TrimRight(*raw.MarketDataURL, "/")
	}
	if raw.CoinGeckoID != nil {
		cfg.CoinGeckoID = *raw.CoinGeckoID
	}
	if raw.Symbol != nil {
		cfg.Symbol = *raw.Symbol
	}
	if raw.ExplorerURL != nil {
		cfg.ExplorerURL = strings.TrimRight(*raw.ExplorerURL, "/")
	}
	if raw.RequestTimeoutSeconds != nil {
		cfg.RequestTimeoutSeconds = *raw.RequestTimeoutSeconds
	}
	if raw.MetricsRefreshSeconds != nil {
		cfg.MetricsRefreshSeconds = *raw.MetricsRefreshSeconds
	}
	if raw.ErrorBannerSeconds != nil {
		cfg.ErrorBannerSeconds = *raw.ErrorBannerSeconds
	}
	if raw.SystemThemePollSeconds != nil {
		cfg.SystemThemePollSeconds = *raw.SystemThemePollSeconds
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.LogEnvironment != nil {
		cfg.LogEnvironment = *raw.LogEnvironment
	}
	cfg.Theme = raw.Theme
	cfg.LogFile = raw.LogFile

	return cfg, nil
}

// SaveConfig validates cfg, backs up the existing file and writes atomically.
func SaveConfig(cfg Config, path string) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}
	return writeAtomic(cfg, path)
}

func writeAtomic(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ThemeStore persists the theme preference inside the config file.
// Theme writes skip the backup step since they happen on every toggle.
type ThemeStore struct {
	Path string
}

// LoadTheme returns the saved preference, if any.
func (s ThemeStore) LoadTheme() (string, bool, error) {
	cfg, err := LoadConfigFromFile(s.Path)
	if err != nil {
		return "", false, err
	}
	if cfg.Theme == "" {
		return "", false, nil
	}
	return cfg.Theme, true, nil
}

// SaveTheme rewrites the config file with the new preference.
func (s ThemeStore) SaveTheme(theme string) error {
	cfg, err := LoadConfigFromFile(s.Path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Theme = theme
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}
	return writeAtomic(cfg, s.Path)
}
