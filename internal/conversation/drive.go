package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"podstats-discord-bot/internal/logging"
)

// ErrNoReply is returned by Transport.Await when the wait runs out.
var ErrNoReply = eris.New("no reply before deadline")

// Transport carries a conversation between the bot and one user in one
// channel.
type Transport interface {
	Send(ctx context.Context, text string) error
	// Await blocks until the user replies, the timeout passes (ErrNoReply)
	// or ctx ends.
	Await(ctx context.Context, timeout time.Duration) (string, error)
}

// Machine is a conversation state.
type Machine interface {
	Terminal() bool
}

// Drive runs a machine from its initial state and effects to a terminal
// state. Failed sends are logged and skipped; only a transport failure while
// waiting aborts the run.
func Drive[S Machine](ctx context.Context, t Transport, s S, effects []Effect, advance func(S, Event) (S, []Effect)) (S, error) {
	var deadline time.Time
	for {
		for _, e := range effects {
			switch e.Kind {
			case Send:
				if err := t.Send(ctx, e.Text); err != nil {
					logging.Warn("conversation send failed", logging.Fields{"error": err.Error()})
				}
			case Await:
				deadline = time.Now().Add(e.Timeout)
			}
		}
		if s.Terminal() {
			return s, nil
		}

		ev := Timeout()
		if remaining := time.Until(deadline); remaining > 0 {
			text, err := t.Await(ctx, remaining)
			switch {
			case err == nil:
				ev = Reply(text)
			case errors.Is(err, ErrNoReply):
			default:
				return s, eris.Wrap(err, "await reply")
			}
		}
		s, effects = advance(s, ev)
	}
}
