package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podstats-discord-bot/internal/roster"
)

var testRoster = Roster{
	Players:    []string{"Alice", "Bob", "Cara", "Dee"},
	Commanders: []string{"Krenko", "Atraxa", "Edgar", "Meren"},
}

// scripted replays replies in order and times out once they run out.
type scripted struct {
	replies []string
	sent    []string
	waits   []time.Duration
	err     error
}

func (s *scripted) Send(_ context.Context, text string) error {
	s.sent = append(s.sent, text)
	return nil
}

func (s *scripted) Await(_ context.Context, timeout time.Duration) (string, error) {
	s.waits = append(s.waits, timeout)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", ErrNoReply
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func newSetup() (GameSetup, []Effect) {
	return NewGameSetup(testRoster, roster.NewResolver(roster.DefaultCutoff), DefaultTimeouts())
}

func TestGameSetupHappyPath(t *testing.T) {
	s, effects := newSetup()
	require.Equal(t, AwaitingPlayers, s.Step)
	require.Len(t, effects, 2)
	assert.Contains(t, effects[0].Text, "Alice\nBob\nCara\nDee")
	assert.Equal(t, Effect{Kind: Await, Timeout: 60 * time.Second}, effects[1])

	s, effects = AdvanceGameSetup(s, Reply("alise,bob,cara,dee"))
	require.Equal(t, AwaitingCommanders, s.Step)
	assert.Equal(t, "alise,bob,cara,dee", s.RawPlayers)
	assert.Nil(t, s.Players, "players stay unresolved until commanders arrive")
	assert.Contains(t, effects[0].Text, "Krenko\nAtraxa\nEdgar\nMeren")
	assert.Equal(t, 60*time.Second, effects[1].Timeout)

	s, effects = AdvanceGameSetup(s, Reply("krenko | atraxa | edgar | meren"))
	require.Equal(t, AwaitingConfirmation, s.Step)
	assert.Equal(t, []string{"Alice", "Bob", "Cara", "Dee"}, s.Players)
	assert.Equal(t, []string{"Krenko", "Atraxa", "Edgar", "Meren"}, s.Commanders)
	assert.Contains(t, effects[0].Text, "Alice playing Krenko\nBob playing Atraxa")
	assert.Equal(t, 30*time.Second, effects[1].Timeout)

	s, effects = AdvanceGameSetup(s, Reply("Yes please"))
	assert.Equal(t, Committed, s.Step)
	require.Len(t, effects, 1)
	assert.Equal(t, Send, effects[0].Kind)
}

func TestGameSetupCancelAtPlayers(t *testing.T) {
	s, _ := newSetup()
	s, effects := AdvanceGameSetup(s, Reply("CANCEL"))
	assert.Equal(t, Cancelled, s.Step)
	assert.Equal(t, []Effect{{Kind: Send, Text: cancelNotice}}, effects)
	assert.Nil(t, s.Players)
}

func TestGameSetupCancelAtCommanders(t *testing.T) {
	s, _ := newSetup()
	s, _ = AdvanceGameSetup(s, Reply("alice,bob"))
	s, _ = AdvanceGameSetup(s, Reply("cancel"))
	assert.Equal(t, Cancelled, s.Step)
}

func TestGameSetupTimeoutFromEveryWaitingStep(t *testing.T) {
	replies := [][]string{nil, {"alice"}, {"alice", "krenko"}}
	for _, prefix := range replies {
		s, _ := newSetup()
		for _, r := range prefix {
			s, _ = AdvanceGameSetup(s, Reply(r))
		}
		s, effects := AdvanceGameSetup(s, Timeout())
		assert.Equal(t, TimedOut, s.Step)
		assert.Equal(t, []Effect{{Kind: Send, Text: timeoutNotice}}, effects)
	}
}

func TestGameSetupDeclineAndUnrelatedReplies(t *testing.T) {
	s, _ := newSetup()
	s, _ = AdvanceGameSetup(s, Reply("alice,bob"))
	s, _ = AdvanceGameSetup(s, Reply("krenko|atraxa"))

	s, effects := AdvanceGameSetup(s, Reply("maybe?"))
	assert.Equal(t, AwaitingConfirmation, s.Step)
	assert.Empty(t, effects)

	s, _ = AdvanceGameSetup(s, Reply("nope"))
	assert.Equal(t, Cancelled, s.Step)
}

func TestGameSetupPairsToShorterList(t *testing.T) {
	s, _ := newSetup()
	s, _ = AdvanceGameSetup(s, Reply("alice, bob, cara"))
	s, _ = AdvanceGameSetup(s, Reply("krenko"))
	assert.Equal(t, []string{"Alice"}, s.Players)
	assert.Equal(t, []string{"Krenko"}, s.Commanders)
	assert.Equal(t, []string{"Alice playing Krenko"}, s.Lines())
}

func TestGameSetupIgnoresEventsWhenTerminal(t *testing.T) {
	s, _ := newSetup()
	s, _ = AdvanceGameSetup(s, Reply("cancel"))
	s, effects := AdvanceGameSetup(s, Reply("alice"))
	assert.Equal(t, Cancelled, s.Step)
	assert.Empty(t, effects)
}

func TestRosterAdd(t *testing.T) {
	s, effects := NewRosterAdd(PlayerNames, 90*time.Second)
	require.Len(t, effects, 2)
	assert.Contains(t, effects[0].Text, "player(s)")
	assert.Equal(t, 90*time.Second, effects[1].Timeout)

	s, _ = AdvanceRosterAdd(s, Reply("erin, frank"))
	assert.Equal(t, Committed, s.Step)
	assert.Equal(t, []string{"Erin", "Frank"}, s.Names)

	c, _ := NewRosterAdd(CommanderNames, time.Second)
	c, _ = AdvanceRosterAdd(c, Reply("krenko, mob boss|yuriko"))
	assert.Equal(t, []string{"Krenko, mob boss", "Yuriko"}, c.Names)

	x, _ := NewRosterAdd(CommanderNames, time.Second)
	x, _ = AdvanceRosterAdd(x, Reply("Cancel"))
	assert.Equal(t, Cancelled, x.Step)
	assert.Nil(t, x.Names)
}

func TestDriveCommits(t *testing.T) {
	tr := &scripted{replies: []string{"alise,bob,cara,dee", "krenko|atraxa|edgar|meren", "what", "y"}}
	s, effects := newSetup()

	final, err := Drive(context.Background(), tr, s, effects, AdvanceGameSetup)
	require.NoError(t, err)
	assert.Equal(t, Committed, final.Step)
	assert.Equal(t, []string{"Alice", "Bob", "Cara", "Dee"}, final.Players)
	assert.Len(t, tr.sent, 4)
	require.Len(t, tr.waits, 4)
	assert.LessOrEqual(t, tr.waits[3], 30*time.Second, "an unrelated reply must not extend the confirmation deadline")
}

func TestDriveTimesOut(t *testing.T) {
	tr := &scripted{replies: []string{"alice"}}
	s, effects := newSetup()

	final, err := Drive(context.Background(), tr, s, effects, AdvanceGameSetup)
	require.NoError(t, err)
	assert.Equal(t, TimedOut, final.Step)
	assert.Equal(t, timeoutNotice, tr.sent[len(tr.sent)-1])
}

func TestDriveAbortsOnTransportError(t *testing.T) {
	boom := errors.New("gateway closed")
	tr := &scripted{err: boom}
	s, effects := NewRosterAdd(PlayerNames, time.Second)

	final, err := Drive(context.Background(), tr, s, effects, AdvanceRosterAdd)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, AwaitingNames, final.Step)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "awaiting_players", AwaitingPlayers.String())
	assert.Equal(t, "timed_out", TimedOut.String())
	assert.Equal(t, "step(99)", Step(99).String())
}
