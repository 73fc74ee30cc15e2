package controller

import (
	"context"
	"strings"

	"podstats-discord-bot/internal/conversation"
	"podstats-discord-bot/internal/logging"
)

// AddRoster asks for new player or commander names and appends them to the
// guild's validation lists.
func (c *Controller) AddRoster(ctx context.Context, req Request, kind conversation.RosterKind, t conversation.Transport) error {
	fields := req.fields("add" + kind.String() + "s")
	b, err := c.designated(ctx, req, t)
	if err != nil {
		return err
	}
	wb, err := c.open(ctx, t, b.SheetID)
	if err != nil {
		return err
	}

	state, effects := conversation.NewRosterAdd(kind, c.timeouts.Roster)
	final, err := conversation.Drive(ctx, t, state, effects, conversation.AdvanceRosterAdd)
	if err != nil {
		return err
	}
	switch final.Step {
	case conversation.Cancelled:
		return ErrCancelled
	case conversation.TimedOut:
		return ErrTimedOut
	}

	add := wb.AddPlayers
	if kind == conversation.CommanderNames {
		add = wb.AddCommanders
	}
	if err := add(ctx, final.Names); err != nil {
		return c.backendFailure(ctx, t, "add "+kind.String()+"s", err)
	}
	names := strings.Join(final.Names, ", ")
	c.say(ctx, t, "Added "+kind.String()+"(s) "+names+" to spreadsheet")
	fields["names"] = names
	logging.Info("roster extended", fields)
	return nil
}
