package conversation

import (
	"time"

	"github.com/samber/lo"

	"podstats-discord-bot/internal/roster"
)

// RosterKind selects which roster column a RosterAdd feeds.
type RosterKind int

const (
	PlayerNames RosterKind = iota
	CommanderNames
)

func (k RosterKind) String() string {
	if k == CommanderNames {
		return "commander"
	}
	return "player"
}

// RosterAdd collects new roster names in a single reply.
type RosterAdd struct {
	Step  Step
	Kind  RosterKind
	Names []string
}

// NewRosterAdd prompts for names of the given kind.
func NewRosterAdd(kind RosterKind, timeout time.Duration) (RosterAdd, []Effect) {
	hint := "use commas in between names"
	if kind == CommanderNames {
		hint = "use pipes ( | ) in between names"
	}
	return RosterAdd{Step: AwaitingNames, Kind: kind}, []Effect{
		send("Send the name of the %s(s) you want to add to the spreadsheet\n(%s) or enter cancel to ignore command", kind, hint),
		await(timeout),
	}
}

// Terminal reports whether the exchange is over.
func (s RosterAdd) Terminal() bool {
	return s.Step.Terminal()
}

// AdvanceRosterAdd applies ev to s.
func AdvanceRosterAdd(s RosterAdd, ev Event) (RosterAdd, []Effect) {
	if s.Terminal() {
		return s, nil
	}
	switch {
	case ev.Timeout:
		s.Step = TimedOut
		return s, []Effect{send(timeoutNotice)}
	case isCancel(ev.Text):
		s.Step = Cancelled
		return s, []Effect{send(cancelNotice)}
	}

	split := roster.SplitPlayers
	if s.Kind == CommanderNames {
		split = roster.SplitCommanders
	}
	s.Names = lo.Map(split(ev.Text), func(n string, _ int) string { return roster.Capitalize(n) })
	s.Step = Committed
	return s, nil
}
