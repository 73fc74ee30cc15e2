// Package conversation models the prompt/reply exchanges the bot holds with
// one user in one channel as explicit state machines.
//
// A machine never blocks. Advancing it with an Event yields the next state
// and the Effects to carry out (messages to send, how long to wait for the
// next reply). Drive executes those effects against a Transport until the
// machine reaches a terminal step.
package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Step is the position of a conversation.
type Step int

const (
	AwaitingPlayers Step = iota
	AwaitingCommanders
	AwaitingConfirmation
	AwaitingNames
	Committed
	Cancelled
	TimedOut
)

var stepNames = map[Step]string{
	AwaitingPlayers:      "awaiting_players",
	AwaitingCommanders:   "awaiting_commanders",
	AwaitingConfirmation: "awaiting_confirmation",
	AwaitingNames:        "awaiting_names",
	Committed:            "committed",
	Cancelled:            "cancelled",
	TimedOut:             "timed_out",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Terminal reports whether no further event changes the conversation.
func (s Step) Terminal() bool {
	return s == Committed || s == Cancelled || s == TimedOut
}

// Event is something that happened while a conversation was waiting.
type Event struct {
	Timeout bool
	Text    string
}

// Reply is a message from the conversing user.
func Reply(text string) Event {
	return Event{Text: text}
}

// Timeout is the wait deadline passing without a reply.
func Timeout() Event {
	return Event{Timeout: true}
}

// EffectKind tells Drive what to do with an Effect.
type EffectKind int

const (
	// Send posts Text to the conversation channel.
	Send EffectKind = iota
	// Await starts a new reply deadline of Timeout from now.
	Await
)

// Effect is an instruction emitted by a state transition.
type Effect struct {
	Kind    EffectKind
	Text    string
	Timeout time.Duration
}

func send(format string, args ...any) Effect {
	return Effect{Kind: Send, Text: fmt.Sprintf(format, args...)}
}

func await(d time.Duration) Effect {
	return Effect{Kind: Await, Timeout: d}
}

// Timeouts are the per-step reply ceilings.
type Timeouts struct {
	Roster  time.Duration
	Collect time.Duration
	Confirm time.Duration
}

// DefaultTimeouts returns the stock ceilings.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Roster:  90 * time.Second,
		Collect: 60 * time.Second,
		Confirm: 30 * time.Second,
	}
}

const (
	cancelWord    = "cancel"
	cancelNotice  = "Canceling . . ."
	timeoutNotice = "You took too long to reply!"
)

func isCancel(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), cancelWord)
}
