package config

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "best", cfg.Quality)     // default
	require.Equal(t, 1, cfg.Concurrency)      // default
	require.Empty(t, cfg.CookiesPath)
	require.Empty(t, cfg.YTDLPPath)
	require.Empty(t, cfg.MaxFilesize)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("REELER_QUALITY", "bestvideo[height<=720]+bestaudio/best")
	t.Setenv("REELER_CONCURRENCY", "4")
	t.Setenv("REELER_COOKIES", "/tmp/cookies.txt")
	t.Setenv("REELER_YTDLP_PATH", "/opt/yt-dlp/yt-dlp")
	t.Setenv("REELER_MAX_FILESIZE", "500MB")
	t.Setenv("REELER_EXTRA_ARGS", "--proxy socks5://127.0.0.1:9050")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "bestvideo[height<=720]+bestaudio/best", cfg.Quality)
	require.Equal(t, 4, cfg.Concurrency)
	require.Equal(t, "/tmp/cookies.txt", cfg.CookiesPath)
	require.Equal(t, "/opt/yt-dlp/yt-dlp", cfg.YTDLPPath)
	require.Equal(t, "500MB", cfg.MaxFilesize)
	require.Equal(t, "--proxy socks5://127.0.0.1:9050", cfg.ExtraArgs)
}

func TestValidate_MergedConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	// Account comes from the command line, not the environment.
	require.Error(t, cfg.Validate())

	cfg.Account = "nasa"
	require.NoError(t, cfg.Validate())
}

func TestValidate_ConcurrencyBounds(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("REELER_CONCURRENCY", "99")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	cfg.Account = "nasa"
	require.Error(t, cfg.Validate())

	cfg.Concurrency = 8
	require.NoError(t, cfg.Validate())
}

func TestValidate_MaxFilesize(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	cfg.Account = "nasa"

	cfg.MaxFilesize = "1.5GB"
	require.NoError(t, cfg.Validate())

	cfg.MaxFilesize = "five hundred"
	require.Error(t, cfg.Validate())
}

func TestValidate_NegativeLimit(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	cfg.Account = "nasa"

	cfg.Limit = -1
	require.Error(t, cfg.Validate())
}
