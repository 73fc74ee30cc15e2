package bot

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podstats-discord-bot/internal/controller"
	"podstats-discord-bot/internal/conversation"
	"podstats-discord-bot/internal/panel"
)

func TestRouterDeliversToOpenMailbox(t *testing.T) {
	r := NewRouter()
	assert.False(t, r.Deliver("c1", "u1", "ignored"))

	box, err := r.Open("c1", "u1")
	require.NoError(t, err)
	_, err = r.Open("c1", "u1")
	assert.ErrorIs(t, err, ErrPromptOpen)

	assert.False(t, r.Deliver("c1", "u2", "someone else"))
	assert.False(t, r.Deliver("c2", "u1", "other channel"))
	assert.True(t, r.Deliver("c1", "u1", "alice, bob"))

	got, err := box.Await(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "alice, bob", got)

	box.Close()
	box.Close()
	assert.Zero(t, r.Len())
	assert.False(t, r.Deliver("c1", "u1", "late"))
}

func TestMailboxTimesOut(t *testing.T) {
	box, err := NewRouter().Open("c1", "u1")
	require.NoError(t, err)
	defer box.Close()

	_, err = box.Await(context.Background(), 10*time.Millisecond)
	assert.ErrorIs(t, err, conversation.ErrNoReply)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = box.Await(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMailboxDropsOverflow(t *testing.T) {
	r := NewRouter()
	box, err := r.Open("c1", "u1")
	require.NoError(t, err)
	defer box.Close()
	for i := 0; i < mailboxSize+3; i++ {
		assert.True(t, r.Deliver("c1", "u1", "msg"))
	}
	assert.Len(t, box.ch, mailboxSize)
}

func TestCustomIDRoundTrip(t *testing.T) {
	id := customID("abc-123", panel.FirstBlood, 3)
	assert.Equal(t, "panel:abc-123:2:3", id)

	btn, err := parseCustomID(id)
	require.NoError(t, err)
	assert.Equal(t, panelButton{PanelID: "abc-123", Category: panel.FirstBlood, Player: 3}, btn)
}

func TestParseCustomIDRejectsForeignIDs(t *testing.T) {
	for _, id := range []string{
		"",
		"character:sheet_refresh:42",
		"panel::0:0",
		"panel:abc:9:0",
		"panel:abc:x:0",
		"panel:abc:0:-1",
		"panel:abc:0:1:extra",
	} {
		_, err := parseCustomID(id)
		assert.ErrorIs(t, err, errBadCustomID, id)
	}
}

func TestPanelComponents(t *testing.T) {
	p := panel.New("g1", []string{"Alice", "Bob"})
	_, err := p.Press(panel.Winner, 1)
	require.NoError(t, err)

	rows := panelComponents(p.ID, p.Buttons())
	require.Len(t, rows, 2)
	first := rows[0].(discordgo.ActionsRow).Components
	require.Len(t, first, 3)

	out := first[0].(discordgo.Button)
	assert.Equal(t, "first out Alice", out.Label)
	assert.Equal(t, discordgo.DangerButton, out.Style)
	assert.False(t, out.Disabled)
	assert.Equal(t, customID(p.ID, panel.OutFirst, 0), out.CustomID)

	won := first[1].(discordgo.Button)
	assert.Equal(t, discordgo.SuccessButton, won.Style)
	assert.True(t, won.Disabled)
	assert.Equal(t, discordgo.PrimaryButton, first[2].(discordgo.Button).Style)
}

func TestPageOf(t *testing.T) {
	players := []string{"A", "B", "C", "D", "E", "F", "G"}
	grid := panel.New("g1", players).Buttons()
	assert.Len(t, pageOf(grid, 0), maxRows)
	assert.Len(t, pageOf(grid, 4), maxRows)
	page := pageOf(grid, 6)
	require.Len(t, page, 2)
	assert.Equal(t, 5, page[0][0].Player)
	assert.Nil(t, pageOf(grid, 10))
}

func TestRecentlyJoined(t *testing.T) {
	now := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)
	assert.True(t, recentlyJoined(now.Add(-10*time.Second), now))
	assert.False(t, recentlyJoined(now.Add(-time.Hour), now))
	assert.False(t, recentlyJoined(time.Time{}, now))
}

func TestRequestFrom(t *testing.T) {
	i := &discordgo.Interaction{
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
	}
	assert.Equal(t, controller.Request{GuildID: "g1", GuildName: "g1", ChannelID: "c1", UserID: "u1"}, requestFrom(nil, i))

	i.Member = nil
	i.User = &discordgo.User{ID: "u2"}
	assert.Equal(t, "u2", requestFrom(nil, i).UserID)
}

func TestIsRejection(t *testing.T) {
	assert.True(t, isRejection(controller.ErrTimedOut))
	assert.True(t, isRejection(eris.Wrap(controller.ErrNoActiveGame, "finish")))
	assert.True(t, isRejection(ErrPromptOpen))
	assert.False(t, isRejection(&controller.BackendError{Op: "add game", Err: eris.New("quota")}))
	assert.False(t, isRejection(eris.New("boom")))
}
