package controller

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"podstats-discord-bot/internal/guilds"
	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/sheets"
)

// WelcomeMessage is posted when the bot joins a guild.
const WelcomeMessage = "To set me up, please do /setup in the channel I will be in!"

// Setup binds the invoking channel and provisions the guild's spreadsheet.
// A guild whose spreadsheet already exists is left alone.
func (c *Controller) Setup(ctx context.Context, req Request, out Sender) error {
	fields := req.fields("setup")
	b, err := c.bindings.Get(ctx, req.GuildID)
	switch {
	case err == nil && b.SheetID != "":
		c.say(ctx, out, "setup has already been completed.")
		return nil
	case err != nil && !errors.Is(err, guilds.ErrNotFound):
		return err
	}

	if err := c.bindings.BindChannel(ctx, req.GuildID, req.ChannelID); err != nil {
		return err
	}
	c.say(ctx, out, "This channel has been set for the bot! use other slash (/) commands to use the bot\n"+
		"Making a stat tracking spreadsheet. . .")

	id, err := c.backends.Provision(ctx, req.GuildName)
	if id == "" {
		if err == nil {
			err = eris.New("provisioning returned no spreadsheet id")
		}
		return c.backendFailure(ctx, out, "create spreadsheet", err)
	}
	if berr := c.bindings.BindSheet(ctx, req.GuildID, id); berr != nil {
		return berr
	}
	if err != nil {
		// The copy exists and is bound; only sharing failed.
		logging.Warn("spreadsheet not shared", logging.Fields{"guild": req.GuildID, "sheet": id, "error": err.Error()})
		c.say(ctx, out, "Spreadsheet error: "+err.Error())
	}
	c.say(ctx, out, "Here's the link: "+sheets.EditLink(id)+"\nOpen the link to start stat tracking!")
	fields["sheet"] = id
	logging.Info("guild set up", fields)
	return nil
}

// Link posts the share link of the guild's spreadsheet.
func (c *Controller) Link(ctx context.Context, req Request, out Sender) error {
	b, err := c.designated(ctx, req, out)
	if err != nil {
		return err
	}
	c.say(ctx, out, sheets.ShareLink(b.SheetID))
	return nil
}

// Help lists the commands.
func Help() string {
	return "**Pod stats commands**\n" +
		"- `/setup` : bind this channel and create the stats spreadsheet\n" +
		"- `/link` : post the spreadsheet link\n" +
		"- `/addplayers` : add players to the roster (comma separated)\n" +
		"- `/addcommanders` : add commanders to the roster (pipe separated)\n" +
		"- `/addgame` : start a game, then pick players and commanders and confirm\n" +
		"- `/finishgame` : record first out, the winner and first blood\n" +
		"- `/tableplayer` : show the player stats table\n" +
		"- `/tablecommander` : show the commander stats table\n\n" +
		"Reply `cancel` at any prompt to stop."
}
