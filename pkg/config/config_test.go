package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Malformed(t *testing.T) {
	reader := strings.NewReader(`{ "schedule_url": `)
	_, err := LoadConfig(reader)
	if err == nil {
		t.Error("Expected error loading malformed config, got nil")
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	cfg, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveConfig(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Symbol = "TON"
	cfg.MetricsRefreshSeconds = 120
	cfg.Theme = "dark"

	require.NoError(t, SaveConfig(cfg, tmpPath))

	loaded, err := LoadConfigFromFile(tmpPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// Saving again backs up the previous file.
	cfg.Theme = "light"
	require.NoError(t, SaveConfig(cfg, tmpPath))
	backups, err := filepath.Glob(tmpPath + ".*.bak")
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	require.NoError(t, RestoreLastBackup(tmpPath))
	restored, err := LoadConfigFromFile(tmpPath)
	require.NoError(t, err)
	assert.Equal(t, "dark", restored.Theme)
}

func TestSaveConfig_Invalid(t *testing.T) {
	cfg := Default()
	cfg.ScheduleURL = " "
	err := SaveConfig(cfg, filepath.Join(t.TempDir(), "config.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule_url is empty")
}

func TestRestoreLastBackup_NoBackups(t *testing.T) {
	err := RestoreLastBackup(filepath.Join(t.TempDir(), "config.json"))
	assert.Error(t, err)
}

func TestLoadConfig_TableDriven(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		jsonContent string
		expectError bool
		validate    func(*testing.T, Config)
	}{
		{
			name: "Full Config",
			jsonContent: `{
				"schedule_url": "http://data/schedule.json",
				"market_data_url": "http://cg/api/v3/",
				"coingecko_id": "toncoin",
				"symbol": "TON",
				"request_timeout_seconds": 3,
				"theme": "light"
			}`,
			validate: func(t *testing.T, c Config) {
				assert.Equal(t, "http://data/schedule.json", c.ScheduleURL)
				assert.Equal(t, "http://cg/api/v3", c.MarketDataURL)
				assert.Equal(t, "toncoin", c.CoinGeckoID)
				assert.Equal(t, 3, c.RequestTimeoutSeconds)
				assert.Equal(t, "light", c.Theme)
			},
		},
		{
			name:        "Partial Config (Defaults)",
			jsonContent: `{"symbol": "TON"}`,
			validate: func(t *testing.T, c Config) {
				assert.Equal(t, DefaultScheduleURL, c.ScheduleURL)
				assert.Equal(t, 10, c.RequestTimeoutSeconds)
				assert.Equal(t, 5, c.ErrorBannerSeconds)
				assert.Equal(t, "", c.Theme)
				assert.Equal(t, 0, c.MetricsRefreshSeconds)
			},
		},
		{
			name:        "Explicit Zero Overrides Default",
			jsonContent: `{"error_banner_seconds": 0}`,
			validate: func(t *testing.T, c Config) {
				assert.Equal(t, 0, c.ErrorBannerSeconds)
			},
		},
		{
			name:        "Malformed JSON",
			jsonContent: `{ "theme": unquoted`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadConfig(strings.NewReader(tt.jsonContent))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Default().Validate())

	cfg := Default()
	cfg.Theme = "sepia"
	cfg.RequestTimeoutSeconds = 0
	errs := cfg.Validate()
	assert.Len(t, errs, 2)
}

func TestThemeStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := ThemeStore{Path: path}

	_, ok, err := store.LoadTheme()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveTheme("light"))
	theme, ok, err := store.LoadTheme()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", theme)

	// Other settings survive a theme write.
	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCoinGeckoID, cfg.CoinGeckoID)

	backups, _ := filepath.Glob(path + ".*.bak")
	assert.Empty(t, backups)
}

func TestSaveConfig_PermissionError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmpDir := t.TempDir()
	if err := os.Chmod(tmpDir, 0500); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chmod(tmpDir, 0700) }()

	err := SaveConfig(Default(), filepath.Join(tmpDir, "config.json"))
	if err == nil {
		t.Error("Expected permission error, got nil")
	}
}
