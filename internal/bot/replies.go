package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"podstats-discord-bot/internal/conversation"
)

// ErrPromptOpen is returned when the user already has a conversation open
// in the channel.
var ErrPromptOpen = eris.New("prompt already open for this user and channel")

const mailboxSize = 8

type replyKey struct {
	channelID string
	userID    string
}

// Router hands channel messages to the conversation waiting on their
// author.
type Router struct {
	mu    sync.Mutex
	boxes map[replyKey]*Mailbox
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{boxes: map[replyKey]*Mailbox{}}
}

// Open registers a mailbox for the user's replies in the channel. Close it
// when the conversation ends.
func (r *Router) Open(channelID, userID string) (*Mailbox, error) {
	k := replyKey{channelID, userID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boxes[k]; ok {
		return nil, ErrPromptOpen
	}
	m := &Mailbox{router: r, key: k, ch: make(chan string, mailboxSize)}
	r.boxes[k] = m
	return m, nil
}

// Deliver passes a message to the waiting conversation, if any. Messages
// beyond the mailbox capacity are dropped.
func (r *Router) Deliver(channelID, userID, text string) bool {
	r.mu.Lock()
	m, ok := r.boxes[replyKey{channelID, userID}]
	r.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case m.ch <- text:
	default:
	}
	return true
}

// Len counts open mailboxes.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boxes)
}

// Mailbox buffers one user's replies in one channel.
type Mailbox struct {
	router *Router
	key    replyKey
	ch     chan string
	once   sync.Once
}

// Await returns the next reply, or conversation.ErrNoReply once timeout
// passes.
func (m *Mailbox) Await(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case text := <-m.ch:
		return text, nil
	case <-timer.C:
		return "", conversation.ErrNoReply
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close unregisters the mailbox.
func (m *Mailbox) Close() {
	m.once.Do(func() {
		m.router.mu.Lock()
		delete(m.router.boxes, m.key)
		m.router.mu.Unlock()
	})
}
