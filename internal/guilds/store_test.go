package guilds

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "guilds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestBindAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Get(ctx, "g1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.BindChannel(ctx, "g1", "c1"))
	b, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "c1", b.ChannelID)
	assert.Empty(t, b.SheetID)
	assert.False(t, b.UpdatedAt.IsZero())

	require.NoError(t, s.BindSheet(ctx, "g1", "sheet-1"))
	require.NoError(t, s.BindChannel(ctx, "g1", "c2"))
	b, err = s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, Binding{GuildID: "g1", ChannelID: "c2", SheetID: "sheet-1", UpdatedAt: b.UpdatedAt}, b)
}

func TestBindRequiresGuild(t *testing.T) {
	assert.Error(t, openTestStore(t).BindChannel(context.Background(), " ", "c"))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := openTestStore(t).Get(ctx, "g1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.BindChannel(ctx, "g2", "c2"))
	require.NoError(t, s.BindChannel(ctx, "g1", "c1"))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "g1", all[0].GuildID)
	assert.Equal(t, "g2", all[1].GuildID)
}

func TestImportLegacy(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	dir := t.TempDir()
	channels := filepath.Join(dir, "channels.json")
	sheets := filepath.Join(dir, "active_stats.json")
	require.NoError(t, os.WriteFile(channels, []byte(`{"111": 1234567890123456789, "222": 42}`), 0o600))
	require.NoError(t, os.WriteFile(sheets, []byte(`{"111": "sheet-a"}`), 0o600))

	require.NoError(t, s.BindChannel(ctx, "222", "kept"))

	n, err := s.ImportLegacy(ctx, channels, sheets)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := s.Get(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456789", b.ChannelID)
	assert.Equal(t, "sheet-a", b.SheetID)

	b, err = s.Get(ctx, "222")
	require.NoError(t, err)
	assert.Equal(t, "kept", b.ChannelID)

	n, err = s.ImportLegacy(ctx, channels, sheets)
	require.NoError(t, err)
	assert.Zero(t, n, "second import is a no-op")
}

func TestImportLegacyMissingFiles(t *testing.T) {
	dir := t.TempDir()
	n, err := openTestStore(t).ImportLegacy(context.Background(), filepath.Join(dir, "a.json"), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
