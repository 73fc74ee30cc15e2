// Package controller is the game session controller: it validates where a
// command comes from, runs the start-game and roster conversations, opens
// selection panels and writes the results through the spreadsheet backend.
//
// The controller is transport agnostic. Commands receive a Sender (or a
// conversation.Transport when they need replies) and report rejections to
// the user themselves before returning the matching error.
package controller

import (
	"context"
	"errors"
	"time"

	"podstats-discord-bot/internal/conversation"
	"podstats-discord-bot/internal/guilds"
	"podstats-discord-bot/internal/ledger"
	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/panel"
	"podstats-discord-bot/internal/roster"
	"podstats-discord-bot/internal/session"
)

// Request identifies who issued a command and where.
type Request struct {
	GuildID   string
	GuildName string
	ChannelID string
	UserID    string
}

func (r Request) fields(command string) logging.Fields {
	return logging.Fields{"guild": r.GuildID, "channel": r.ChannelID, "user": r.UserID, "command": command}
}

// Sender posts messages to the channel a command came from.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Bindings is the persisted per-guild configuration.
type Bindings interface {
	Get(ctx context.Context, guildID string) (guilds.Binding, error)
	BindChannel(ctx context.Context, guildID, channelID string) error
	BindSheet(ctx context.Context, guildID, sheetID string) error
}

// Backend is one guild's spreadsheet.
type Backend interface {
	ledger.Sheet
	ListKnownPlayers(ctx context.Context) ([]string, error)
	ListKnownCommanders(ctx context.Context) ([]string, error)
	AddPlayers(ctx context.Context, names []string) error
	AddCommanders(ctx context.Context, names []string) error
	TableValues(ctx context.Context) ([][]string, error)
}

// Backends opens and provisions spreadsheets.
type Backends interface {
	Open(ctx context.Context, sheetID string) (Backend, error)
	Provision(ctx context.Context, guildName string) (string, error)
}

// Options tune a Controller.
type Options struct {
	PodSize       int
	Cutoff        float64
	Timeouts      conversation.Timeouts
	TableInterval time.Duration
	Now           func() time.Time
}

// DefaultOptions mirror the stock configuration.
func DefaultOptions() Options {
	return Options{
		PodSize:       4,
		Cutoff:        roster.DefaultCutoff,
		Timeouts:      conversation.DefaultTimeouts(),
		TableInterval: 500 * time.Millisecond,
		Now:           time.Now,
	}
}

// Controller owns the session store and the open selection panels.
type Controller struct {
	sessions *session.Store
	panels   *panel.Registry
	bindings Bindings
	backends Backends

	ledger        ledger.Ledger
	resolver      roster.Resolver
	timeouts      conversation.Timeouts
	tableInterval time.Duration
	now           func() time.Time
}

// New wires a controller.
func New(bindings Bindings, backends Backends, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l := ledger.New(opts.PodSize)
	l.Now = opts.Now
	return &Controller{
		sessions:      session.NewStore(),
		panels:        panel.NewRegistry(),
		bindings:      bindings,
		backends:      backends,
		ledger:        l,
		resolver:      roster.NewResolver(opts.Cutoff),
		timeouts:      opts.Timeouts,
		tableInterval: opts.TableInterval,
		now:           opts.Now,
	}
}

// ActiveGames counts guilds with a game in progress.
func (c *Controller) ActiveGames() int {
	return c.sessions.Len()
}

// designated loads the guild binding and checks the command came from the
// bound channel of a fully set up guild.
func (c *Controller) designated(ctx context.Context, req Request, out Sender) (guilds.Binding, error) {
	b, err := c.bindings.Get(ctx, req.GuildID)
	switch {
	case errors.Is(err, guilds.ErrNotFound):
		c.say(ctx, out, "This command must be run in the designated channel. Use /setup to pick one.")
		return b, ErrNotInDesignatedChannel
	case err != nil:
		return b, err
	case b.ChannelID != req.ChannelID:
		c.say(ctx, out, "This command must be run in the designated channel.")
		return b, ErrNotInDesignatedChannel
	case b.SheetID == "":
		c.say(ctx, out, "This server has no spreadsheet yet. Run /setup again.")
		return b, ErrNotConfigured
	}
	return b, nil
}

func (c *Controller) open(ctx context.Context, out Sender, sheetID string) (Backend, error) {
	wb, err := c.backends.Open(ctx, sheetID)
	if err != nil {
		return nil, c.backendFailure(ctx, out, "open spreadsheet", err)
	}
	return wb, nil
}

// backendFailure reports a spreadsheet error verbatim to the user.
func (c *Controller) backendFailure(ctx context.Context, out Sender, op string, err error) error {
	berr := &BackendError{Op: op, Err: err}
	c.say(ctx, out, "Spreadsheet error: "+berr.Error())
	return berr
}

// say sends text; delivery failures are logged only.
func (c *Controller) say(ctx context.Context, out Sender, text string) {
	if out == nil {
		return
	}
	if err := out.Send(ctx, text); err != nil {
		logging.Warn("send failed", logging.Fields{"error": err.Error()})
	}
}
