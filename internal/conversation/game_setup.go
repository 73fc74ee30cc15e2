package conversation

import (
	"fmt"
	"strings"

	"podstats-discord-bot/internal/roster"
)

// Roster is the snapshot of known names a game setup corrects against.
type Roster struct {
	Players    []string
	Commanders []string
}

// GameSetup collects the line-up of a new game: players, then commanders,
// then a yes/no confirmation of the corrected pairs.
type GameSetup struct {
	Step          Step
	Roster        Roster
	RawPlayers    string
	RawCommanders string
	// Players and Commanders are the corrected, index-aligned line-up. They
	// are set once both replies are in.
	Players    []string
	Commanders []string

	resolver roster.Resolver
	timeouts Timeouts
}

// NewGameSetup starts a setup conversation by presenting the known players.
func NewGameSetup(r Roster, resolver roster.Resolver, t Timeouts) (GameSetup, []Effect) {
	s := GameSetup{
		Step:     AwaitingPlayers,
		Roster:   r,
		resolver: resolver,
		timeouts: t,
	}
	return s, []Effect{
		send("Please choose players:\n%s\nSend a message with player names followed by a comma (or cancel):",
			strings.Join(r.Players, "\n")),
		await(t.Collect),
	}
}

// Terminal reports whether the setup is over.
func (s GameSetup) Terminal() bool {
	return s.Step.Terminal()
}

// Lines renders the line-up as "<player> playing <commander>".
func (s GameSetup) Lines() []string {
	lines := make([]string, len(s.Players))
	for i := range s.Players {
		lines[i] = fmt.Sprintf("%s playing %s", s.Players[i], s.Commanders[i])
	}
	return lines
}

// AdvanceGameSetup applies ev to s.
func AdvanceGameSetup(s GameSetup, ev Event) (GameSetup, []Effect) {
	if s.Terminal() {
		return s, nil
	}
	if ev.Timeout {
		s.Step = TimedOut
		return s, []Effect{send(timeoutNotice)}
	}

	switch s.Step {
	case AwaitingPlayers:
		if isCancel(ev.Text) {
			s.Step = Cancelled
			return s, []Effect{send(cancelNotice)}
		}
		s.RawPlayers = ev.Text
		s.Step = AwaitingCommanders
		return s, []Effect{
			send("You selected: %s\n\nPlease choose commanders:\n%s\nSend a message with commander names followed by a pipe ( | ):",
				ev.Text, strings.Join(s.Roster.Commanders, "\n")),
			await(s.timeouts.Collect),
		}

	case AwaitingCommanders:
		if isCancel(ev.Text) {
			s.Step = Cancelled
			return s, []Effect{send(cancelNotice)}
		}
		s.RawCommanders = ev.Text
		s.pair()
		s.Step = AwaitingConfirmation
		return s, []Effect{
			send("You selected: %s\n--------------------------\n%s\n--------------------------\nAre both players and commanders correct? (y/n)",
				ev.Text, strings.Join(s.Lines(), "\n")),
			await(s.timeouts.Confirm),
		}

	case AwaitingConfirmation:
		answer := strings.ToLower(strings.TrimSpace(ev.Text))
		switch {
		case strings.HasPrefix(answer, "y"):
			s.Step = Committed
			return s, []Effect{send("Adding game to spreadsheet.")}
		case strings.HasPrefix(answer, "n"):
			s.Step = Cancelled
			return s, []Effect{send("Ending transaction. Restart the command.")}
		}
		// Anything else keeps waiting on the same deadline.
		return s, nil
	}
	return s, nil
}

// pair resolves both raw lists once and truncates them to the shorter one.
func (s *GameSetup) pair() {
	players := s.resolver.Resolve(roster.SplitPlayers(s.RawPlayers), s.Roster.Players)
	commanders := s.resolver.Resolve(roster.SplitCommanders(s.RawCommanders), s.Roster.Commanders)
	n := min(len(players), len(commanders))
	s.Players = players[:n]
	s.Commanders = commanders[:n]
}
