// Package guilds persists each guild's designated channel and bound
// spreadsheet.
package guilds

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for guilds that never ran setup.
var ErrNotFound = eris.New("guild binding not found")

// Binding is a guild's persisted configuration. Empty fields are unset.
type Binding struct {
	GuildID   string
	ChannelID string
	SheetID   string
	UpdatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS guild_bindings (
	guild_id   TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL DEFAULT '',
	sheet_id   TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL
)`

// Store provides SQLite-backed guild bindings.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the store at path and creates its table.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, eris.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open sqlite db")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "ping sqlite db")
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "create schema")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads a guild's binding.
func (s *Store) Get(ctx context.Context, guildID string) (Binding, error) {
	if err := s.check(ctx); err != nil {
		return Binding{}, err
	}
	var (
		b       = Binding{GuildID: guildID}
		updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT channel_id, sheet_id, updated_at FROM guild_bindings WHERE guild_id = ?`, guildID,
	).Scan(&b.ChannelID, &b.SheetID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Binding{}, ErrNotFound
	}
	if err != nil {
		return Binding{}, eris.Wrapf(err, "get binding for guild %s", guildID)
	}
	b.UpdatedAt = time.UnixMilli(updated).UTC()
	return b, nil
}

// BindChannel sets the designated channel of a guild.
func (s *Store) BindChannel(ctx context.Context, guildID, channelID string) error {
	return s.upsert(ctx, guildID, "channel_id", channelID)
}

// BindSheet sets the spreadsheet of a guild.
func (s *Store) BindSheet(ctx context.Context, guildID, sheetID string) error {
	return s.upsert(ctx, guildID, "sheet_id", sheetID)
}

func (s *Store) upsert(ctx context.Context, guildID, column, value string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return eris.New("guild id is required")
	}
	// column is one of two constants above, never user input.
	query := `INSERT INTO guild_bindings (guild_id, ` + column + `, updated_at) VALUES (?, ?, ?)
ON CONFLICT(guild_id) DO UPDATE SET ` + column + ` = excluded.` + column + `, updated_at = excluded.updated_at`
	if _, err := s.sqlDB.ExecContext(ctx, query, guildID, value, time.Now().UTC().UnixMilli()); err != nil {
		return eris.Wrapf(err, "bind %s for guild %s", column, guildID)
	}
	return nil
}

// List returns every binding ordered by guild id.
func (s *Store) List(ctx context.Context) ([]Binding, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT guild_id, channel_id, sheet_id, updated_at FROM guild_bindings ORDER BY guild_id`)
	if err != nil {
		return nil, eris.Wrap(err, "list bindings")
	}
	defer rows.Close()

	var out []Binding
	for rows.Next() {
		var (
			b       Binding
			updated int64
		)
		if err := rows.Scan(&b.GuildID, &b.ChannelID, &b.SheetID, &updated); err != nil {
			return nil, eris.Wrap(err, "scan binding")
		}
		b.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate bindings")
	}
	return out, nil
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return eris.New("storage is not configured")
	}
	return nil
}
