// Package bot connects the game session controller to Discord: slash
// commands start the controller's flows, channel messages feed the waiting
// conversations and button presses drive the selection panels.
package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"
	"github.com/samber/lo"

	"podstats-discord-bot/internal/controller"
	"podstats-discord-bot/internal/conversation"
	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/panel"
	"podstats-discord-bot/internal/table"
)

// joinWindow separates a fresh guild join from the GuildCreate events
// replayed on every connect.
const joinWindow = 2 * time.Minute

// Bot is the Discord front end.
type Bot struct {
	dg        *discordgo.Session
	ctl       *controller.Controller
	replies   *Router
	connected atomic.Bool
	ctx       context.Context
}

// New creates a session for token and registers the event handlers.
func New(token string, ctl *controller.Controller) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, eris.Wrap(err, "create discord session")
	}
	b := &Bot{dg: dg, ctl: ctl, replies: NewRouter(), ctx: context.Background()}
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onDisconnect)
	dg.AddHandler(b.onResumed)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	return b, nil
}

// Run connects, registers the slash commands and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.dg.Open(); err != nil {
		return eris.Wrap(err, "open discord session")
	}
	defer b.dg.Close()

	for _, cmd := range slashCommands() {
		if _, err := b.dg.ApplicationCommandCreate(b.dg.State.User.ID, "", cmd); err != nil {
			logging.Error("cannot create command", err, logging.Fields{"command": cmd.Name})
		}
	}
	logging.Info("pod stats bot is running", nil)
	<-ctx.Done()
	return nil
}

// Connected reports whether the gateway session is up.
func (b *Bot) Connected() bool {
	return b.connected.Load()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.connected.Store(true)
	logging.Info("connected to gateway", logging.Fields{"user": r.User.Username, "guilds": len(r.Guilds)})
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.connected.Store(false)
	logging.Warn("disconnected from gateway", nil)
}

func (b *Bot) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.connected.Store(true)
}

// onGuildCreate greets a guild the bot has just joined.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable || !recentlyJoined(g.JoinedAt, time.Now()) {
		return
	}
	for _, ch := range g.Channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		perms, err := s.State.UserChannelPermissions(s.State.User.ID, ch.ID)
		if err != nil || perms&discordgo.PermissionSendMessages == 0 {
			continue
		}
		if _, err := s.ChannelMessageSend(ch.ID, controller.WelcomeMessage); err != nil {
			logging.Warn("welcome failed", logging.Fields{"guild": g.ID, "channel": ch.ID, "error": err.Error()})
		}
		return
	}
}

func recentlyJoined(joinedAt, now time.Time) bool {
	return !joinedAt.IsZero() && now.Sub(joinedAt) < joinWindow
}

// onMessageCreate feeds replies to open conversations.
func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	b.replies.Deliver(m.ChannelID, m.Author.ID, m.Content)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handlePress(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := b.ctx
	name := i.ApplicationCommandData().Name
	if i.GuildID == "" {
		b.respond(s, i, "Commands only work inside a server.", true)
		return
	}
	if name == cmdHelp {
		b.respond(s, i, controller.Help(), false)
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logging.Error("defer interaction", err, logging.Fields{"command": name})
		return
	}

	req := requestFrom(s, i.Interaction)
	out := &followups{s: s, i: i.Interaction}
	switch name {
	case cmdSetup:
		err = b.ctl.Setup(ctx, req, out)
	case cmdLink:
		err = b.ctl.Link(ctx, req, out)
	case cmdAddPlayers:
		err = b.converse(ctx, req, out, func(t conversation.Transport) error {
			return b.ctl.AddRoster(ctx, req, conversation.PlayerNames, t)
		})
	case cmdAddCommanders:
		err = b.converse(ctx, req, out, func(t conversation.Transport) error {
			return b.ctl.AddRoster(ctx, req, conversation.CommanderNames, t)
		})
	case cmdAddGame:
		err = b.converse(ctx, req, out, func(t conversation.Transport) error {
			return b.ctl.StartGame(ctx, req, t)
		})
	case cmdFinishGame:
		err = b.finishGame(ctx, req, out)
	case cmdTablePlayer:
		err = b.ctl.ShowTable(ctx, req, controller.PlayerTable, out)
	case cmdTableCommander:
		err = b.ctl.ShowTable(ctx, req, controller.CommanderTable, out)
	}
	report(name, req, err)
}

// converse gives fn a transport bound to the invoking user's replies.
func (b *Bot) converse(ctx context.Context, req controller.Request, out *followups, fn func(conversation.Transport) error) error {
	box, err := b.replies.Open(req.ChannelID, req.UserID)
	if err != nil {
		_ = out.Send(ctx, "Finish or cancel your open prompt first.")
		return err
	}
	defer box.Close()
	return fn(&followups{s: out.s, i: out.i, box: box})
}

func (b *Bot) finishGame(ctx context.Context, req controller.Request, out *followups) error {
	p, err := b.ctl.FinishGame(ctx, req, out)
	if err != nil {
		return err
	}
	grid := p.Buttons()
	for start := 0; start < len(grid); start += maxRows {
		content := ""
		if start == 0 {
			content = "Here are your buttons:"
		}
		_, err := out.s.FollowupMessageCreate(out.i, true, &discordgo.WebhookParams{
			Content:    content,
			Components: panelComponents(p.ID, grid[start:min(start+maxRows, len(grid))]),
		}, discordgo.WithContext(ctx))
		if err != nil {
			return eris.Wrap(err, "send selection panel")
		}
	}
	return nil
}

func (b *Bot) handlePress(s *discordgo.Session, i *discordgo.InteractionCreate) {
	btn, err := parseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	ctx := b.ctx
	res, err := b.ctl.Press(ctx, btn.PanelID, btn.Category, btn.Player)
	switch {
	case errors.Is(err, panel.ErrUnknownPanel):
		b.respond(s, i, "This game has already been finished.", true)
		return
	case err != nil:
		b.respond(s, i, "Could not record that: "+err.Error(), true)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    res.Notice(),
			Components: panelComponents(btn.PanelID, pageOf(res.Buttons, btn.Player)),
		},
	})
	if err != nil {
		logging.Error("update panel", err, logging.Fields{"panel": btn.PanelID})
	}
	if !res.Complete {
		return
	}
	out := &followups{s: s, i: i.Interaction}
	if err := out.Send(ctx, res.Summary); err != nil {
		logging.Error("send game summary", err, logging.Fields{"panel": btn.PanelID})
	}
	if res.Err != nil {
		logging.Error("finish game", res.Err, logging.Fields{"guild": i.GuildID, "panel": btn.PanelID})
	}
}

// pageOf returns the rows rendered on the same message as player's row.
func pageOf(grid [][]panel.Button, player int) [][]panel.Button {
	start := (player / maxRows) * maxRows
	if start >= len(grid) {
		return nil
	}
	return grid[start:min(start+maxRows, len(grid))]
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, text string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: text}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logging.Error("respond to interaction", err, nil)
	}
}

func requestFrom(s *discordgo.Session, i *discordgo.Interaction) controller.Request {
	req := controller.Request{GuildID: i.GuildID, GuildName: i.GuildID, ChannelID: i.ChannelID}
	switch {
	case i.Member != nil && i.Member.User != nil:
		req.UserID = i.Member.User.ID
	case i.User != nil:
		req.UserID = i.User.ID
	}
	if s != nil && s.State != nil {
		if g, err := s.State.Guild(i.GuildID); err == nil && g.Name != "" {
			req.GuildName = g.Name
		}
	}
	return req
}

// report logs how a command ended. Rejections were already shown to the
// user and are not failures of the bot.
func report(command string, req controller.Request, err error) {
	fields := logging.Fields{"command": command, "guild": req.GuildID, "user": req.UserID}
	switch {
	case err == nil:
		logging.Debug("command done", fields)
	case isRejection(err):
		fields["reason"] = err.Error()
		logging.Info("command rejected", fields)
	default:
		logging.Error("command failed", err, fields)
	}
}

var rejections = []error{
	controller.ErrNotInDesignatedChannel,
	controller.ErrNotConfigured,
	controller.ErrGameAlreadyActive,
	controller.ErrSetupPending,
	controller.ErrNoActiveGame,
	controller.ErrEmptyRoster,
	controller.ErrCancelled,
	controller.ErrTimedOut,
	ErrPromptOpen,
}

func isRejection(err error) bool {
	return lo.ContainsBy(rejections, func(target error) bool { return errors.Is(err, target) })
}

// followups posts interaction follow-up messages and, inside a
// conversation, reads the invoking user's replies.
type followups struct {
	s   *discordgo.Session
	i   *discordgo.Interaction
	box *Mailbox
}

func (f *followups) Send(ctx context.Context, text string) error {
	for _, chunk := range table.Chunks(text, table.MessageLimit) {
		_, err := f.s.FollowupMessageCreate(f.i, true, &discordgo.WebhookParams{Content: chunk}, discordgo.WithContext(ctx))
		if err != nil {
			return eris.Wrap(err, "send follow-up")
		}
	}
	return nil
}

func (f *followups) Await(ctx context.Context, timeout time.Duration) (string, error) {
	if f.box == nil {
		return "", conversation.ErrNoReply
	}
	return f.box.Await(ctx, timeout)
}
