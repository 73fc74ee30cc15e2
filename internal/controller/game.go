package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"podstats-discord-bot/internal/conversation"
	"podstats-discord-bot/internal/ledger"
	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/panel"
	"podstats-discord-bot/internal/session"
)

const (
	finishFirstMsg = "Use /finishgame to put in the results of previous game before starting a new game!"
	pendingMsg     = "A game is already being set up in this server. Finish or cancel it first."
	emptyRosterMsg = "Please add some players and commanders first!"
	noGameMsg      = "No active game found."
)

// StartGame runs the add-game conversation over t and, once confirmed,
// appends the line-up to the guild's spreadsheet and makes it the guild's
// active game. The guild is reserved for the whole conversation.
func (c *Controller) StartGame(ctx context.Context, req Request, t conversation.Transport) error {
	fields := req.fields("addgame")
	if c.sessions.Active(req.GuildID) {
		c.say(ctx, t, finishFirstMsg)
		return ErrGameAlreadyActive
	}
	b, err := c.designated(ctx, req, t)
	if err != nil {
		return err
	}
	if err := c.sessions.TryCreate(req.GuildID); err != nil {
		if errors.Is(err, session.ErrPending) {
			c.say(ctx, t, pendingMsg)
			return ErrSetupPending
		}
		c.say(ctx, t, finishFirstMsg)
		return ErrGameAlreadyActive
	}
	activated := false
	defer func() {
		if !activated {
			c.sessions.Release(req.GuildID)
		}
	}()

	wb, err := c.open(ctx, t, b.SheetID)
	if err != nil {
		return err
	}
	players, err := wb.ListKnownPlayers(ctx)
	if err != nil {
		return c.backendFailure(ctx, t, "read player roster", err)
	}
	commanders, err := wb.ListKnownCommanders(ctx)
	if err != nil {
		return c.backendFailure(ctx, t, "read commander roster", err)
	}
	if len(players) == 0 || len(commanders) == 0 {
		c.say(ctx, t, emptyRosterMsg)
		return ErrEmptyRoster
	}

	setup, effects := conversation.NewGameSetup(
		conversation.Roster{Players: players, Commanders: commanders},
		c.resolver, c.timeouts)
	final, err := conversation.Drive(ctx, t, setup, effects, conversation.AdvanceGameSetup)
	if err != nil {
		return err
	}
	switch final.Step {
	case conversation.Cancelled:
		logging.Info("game setup cancelled", fields)
		return ErrCancelled
	case conversation.TimedOut:
		logging.Info("game setup timed out", fields)
		return ErrTimedOut
	}

	number, err := c.ledger.AppendGame(ctx, wb, final.Players, final.Commanders)
	if err != nil {
		return c.backendFailure(ctx, t, "add game", err)
	}
	if err := c.sessions.Activate(session.Game{
		GuildID:    req.GuildID,
		Players:    final.Players,
		Commanders: final.Commanders,
		Number:     number,
		StartedAt:  c.now(),
	}); err != nil {
		return err
	}
	activated = true

	fields["game"] = number
	fields["players"] = strings.Join(final.Players, ", ")
	logging.Info("game started", fields)
	return nil
}

// FinishGame opens a selection panel over the active game's players. The
// caller renders the panel and routes presses to Press.
func (c *Controller) FinishGame(ctx context.Context, req Request, out Sender) (*panel.Panel, error) {
	if _, err := c.designated(ctx, req, out); err != nil {
		return nil, err
	}
	game, ok := c.sessions.Get(req.GuildID)
	if !ok {
		c.say(ctx, out, noGameMsg)
		return nil, ErrNoActiveGame
	}
	p := c.panels.Open(req.GuildID, game.Players)
	logging.Info("selection panel opened", logging.Fields{"guild": req.GuildID, "panel": p.ID, "game": game.Number})
	return p, nil
}

// PressResult is what a button press changed.
type PressResult struct {
	panel.Result
	Buttons [][]panel.Button
	// Summary is set on the press that completed the panel.
	Summary string
	// Err is the failure to record a completed panel; the game is gone
	// from the session store either way.
	Err error
}

// Press applies one button press. The press that completes a panel ends
// the guild's game and writes its outcomes.
func (c *Controller) Press(ctx context.Context, panelID string, cat panel.Category, player int) (PressResult, error) {
	p, res, err := c.panels.OnPress(panelID, cat, player)
	if err != nil {
		return PressResult{}, err
	}
	out := PressResult{Result: res, Buttons: p.Buttons()}
	if !res.Complete {
		return out, nil
	}

	c.panels.CloseGuild(p.GuildID)
	game, ok := c.sessions.Remove(p.GuildID)
	if !ok {
		out.Err = ErrNoActiveGame
		out.Summary = noGameMsg
		return out, nil
	}
	fields := logging.Fields{"guild": p.GuildID, "game": game.Number}
	if err := c.recordOutcomes(ctx, p.GuildID, res.Winners); err != nil {
		out.Err = err
		out.Summary = "Spreadsheet error: " + err.Error()
		logging.Error("recording outcomes failed", err, fields)
		return out, nil
	}
	out.Summary = Summary(res.Winners)
	logging.Info("game finished", fields)
	return out, nil
}

func (c *Controller) recordOutcomes(ctx context.Context, guildID string, w panel.Winners) error {
	b, err := c.bindings.Get(ctx, guildID)
	if err != nil {
		return &BackendError{Op: "load guild binding", Err: err}
	}
	wb, err := c.backends.Open(ctx, b.SheetID)
	if err != nil {
		return &BackendError{Op: "open spreadsheet", Err: err}
	}
	err = c.ledger.RecordOutcomes(ctx, wb, ledger.Outcomes{
		OutFirst:   w.OutFirst,
		Winner:     w.Winner,
		FirstBlood: w.FirstBlood,
	})
	if err != nil {
		return &BackendError{Op: "record results", Err: err}
	}
	return nil
}

// Summary is posted once every category of a game has been decided.
func Summary(w panel.Winners) string {
	return fmt.Sprintf("Your selection:\nplayer that got out first: %s,\nplayer that won: %s,\nplayer that got first blood: %s\n\nFinishing game!",
		w.OutFirst, w.Winner, w.FirstBlood)
}
