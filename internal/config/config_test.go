package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, 4, cfg.PodSize)
	assert.InDelta(t, 0.4, cfg.MatchCutoff, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.RosterTimeout)
	assert.Equal(t, 60*time.Second, cfg.CollectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.TableInterval)
	assert.Equal(t, "1uHT4HWD_x00-AVKbeot7h-2OVcPnJfu-9y2cERcVmxU", cfg.TemplateSheetID)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	os.Unsetenv("DISCORD_BOT_TOKEN")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
	assert.NotEmpty(t, eris.StackFrames(err), "configuration errors carry a stack trace")
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	os.Unsetenv("DISCORD_BOT_TOKEN")
	t.Setenv("PODSTATS_POD_SIZE", "")
	os.Unsetenv("PODSTATS_POD_SIZE")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DISCORD_BOT_TOKEN=from-file\nPODSTATS_POD_SIZE=5\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DISCORD_BOT_TOKEN")
		os.Unsetenv("PODSTATS_POD_SIZE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DiscordToken)
	assert.Equal(t, 5, cfg.PodSize)
}

func TestValidate(t *testing.T) {
	base := Config{PodSize: 4, MatchCutoff: 0.4, RosterTimeout: time.Second, CollectTimeout: time.Second, ConfirmTimeout: time.Second}
	require.NoError(t, base.Validate())

	bad := base
	bad.PodSize = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.NotEmpty(t, eris.StackFrames(err))

	bad = base
	bad.MatchCutoff = 1.5
	assert.Error(t, bad.Validate())

	bad = base
	bad.ConfirmTimeout = 0
	assert.Error(t, bad.Validate())
}
