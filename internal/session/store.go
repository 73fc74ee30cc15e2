// Package session keeps the in-progress game of every guild in memory.
//
// A guild moves through two stages: a start-game conversation first
// reserves the guild, then either activates the reservation with the
// collected line-up or releases it. At most one reservation or game exists
// per guild at any time. Nothing here survives a restart.
package session

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

var (
	// ErrActive is returned when the guild already has a game in progress.
	ErrActive = eris.New("game already active")
	// ErrPending is returned while another start-game conversation holds the
	// guild's reservation.
	ErrPending = eris.New("game setup already in progress")
	// ErrNotReserved is returned by Activate without a prior TryCreate.
	ErrNotReserved = eris.New("guild has no pending reservation")
)

// Game is the line-up of an unfinished game. Players[i] plays Commanders[i].
type Game struct {
	GuildID    string
	Players    []string
	Commanders []string
	Number     int
	StartedAt  time.Time
}

type entry struct {
	game    *Game
	pending bool
}

// Store maps guild ids to their single game.
type Store struct {
	mu     sync.Mutex
	guilds map[string]*entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{guilds: map[string]*entry{}}
}

// TryCreate reserves the guild for a new game. The check and the
// reservation happen under one lock.
func (s *Store) TryCreate(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.guilds[guildID]; ok {
		if e.pending {
			return ErrPending
		}
		return ErrActive
	}
	s.guilds[guildID] = &entry{pending: true}
	return nil
}

// Activate turns the guild's reservation into an active game.
func (s *Store) Activate(g Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.guilds[g.GuildID]
	if !ok || !e.pending {
		return ErrNotReserved
	}
	g.Players = append([]string(nil), g.Players...)
	g.Commanders = append([]string(nil), g.Commanders...)
	e.game = &g
	e.pending = false
	return nil
}

// Release drops a pending reservation. Active games are left alone.
func (s *Store) Release(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.guilds[guildID]; ok && e.pending {
		delete(s.guilds, guildID)
	}
}

// Active reports whether the guild has an activated game.
func (s *Store) Active(guildID string) bool {
	_, ok := s.Get(guildID)
	return ok
}

// Get returns a copy of the guild's active game.
func (s *Store) Get(guildID string) (Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.guilds[guildID]
	if !ok || e.pending {
		return Game{}, false
	}
	return e.game.clone(), true
}

// Remove deletes the guild's active game and returns it. Only the first of
// several concurrent callers gets ok == true.
func (s *Store) Remove(guildID string) (Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.guilds[guildID]
	if !ok || e.pending {
		return Game{}, false
	}
	delete(s.guilds, guildID)
	return *e.game, true
}

// Len counts active games.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.guilds {
		if !e.pending {
			n++
		}
	}
	return n
}

func (g *Game) clone() Game {
	c := *g
	c.Players = append([]string(nil), g.Players...)
	c.Commanders = append([]string(nil), g.Commanders...)
	return c
}
