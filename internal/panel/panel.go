// Package panel implements the button grid used to close out a game: one
// button per (category, player), where the first press in a category
// records that category's player and disables the rest of the category.
package panel

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Category is one of the outcomes recorded per game.
type Category int

const (
	OutFirst Category = iota
	Winner
	FirstBlood
	numCategories
)

// Categories lists every category in column order.
var Categories = []Category{OutFirst, Winner, FirstBlood}

// Label is the button text prefix.
func (c Category) Label() string {
	switch c {
	case OutFirst:
		return "first out"
	case Winner:
		return "won"
	case FirstBlood:
		return "first blood"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Describe completes "You selected: <player> for ...".
func (c Category) Describe() string {
	switch c {
	case OutFirst:
		return "first out"
	case Winner:
		return "winning the game"
	case FirstBlood:
		return "first blood"
	}
	return c.Label()
}

// Valid reports whether c names a real category.
func (c Category) Valid() bool {
	return c >= OutFirst && c < numCategories
}

var (
	ErrUnknownPanel    = eris.New("panel not found")
	ErrInvalidCategory = eris.New("invalid category")
	ErrInvalidPlayer   = eris.New("invalid player")
)

// Outcome is what a press did.
type Outcome int

const (
	// Locked: the press recorded its player and locked the category.
	Locked Outcome = iota
	// AlreadyLocked: the category had been decided; only the pressed
	// button was disabled.
	AlreadyLocked
)

// Winners holds the player recorded for each category.
type Winners struct {
	OutFirst   string
	Winner     string
	FirstBlood string
}

func (w *Winners) set(c Category, player string) {
	switch c {
	case OutFirst:
		w.OutFirst = player
	case Winner:
		w.Winner = player
	case FirstBlood:
		w.FirstBlood = player
	}
}

// Get returns the player recorded for c.
func (w Winners) Get(c Category) string {
	switch c {
	case OutFirst:
		return w.OutFirst
	case Winner:
		return w.Winner
	case FirstBlood:
		return w.FirstBlood
	}
	return ""
}

// Result describes one press.
type Result struct {
	Outcome  Outcome
	Category Category
	// Player is the player recorded for Category, which differs from the
	// pressed player when Outcome is AlreadyLocked.
	Player string
	// Complete is true only for the press that locked the last category.
	Complete bool
	Winners  Winners
}

// Notice is the confirmation text for a press.
func (r Result) Notice() string {
	return fmt.Sprintf("You selected: %s for %s", r.Player, r.Category.Describe())
}

// Button is the render state of one grid item.
type Button struct {
	Category Category
	Player   int
	Label    string
	Disabled bool
}

// Panel is the selection state for one finish-game request.
type Panel struct {
	ID      string
	GuildID string

	mu       sync.Mutex
	players  []string
	locked   [numCategories]bool
	winners  Winners
	disabled [numCategories][]bool
	complete bool
}

// New builds a 3×N grid for the given players.
func New(guildID string, players []string) *Panel {
	p := &Panel{
		ID:      uuid.NewString(),
		GuildID: guildID,
		players: append([]string(nil), players...),
	}
	for c := range p.disabled {
		p.disabled[c] = make([]bool, len(players))
	}
	return p
}

// Players returns the grid's players in row order.
func (p *Panel) Players() []string {
	return append([]string(nil), p.players...)
}

// Press applies a press of the (c, player) button. The lock check and the
// lock itself happen under the panel's mutex, so of two racing presses in
// one category exactly one records its player.
func (p *Panel) Press(c Category, player int) (Result, error) {
	if !c.Valid() {
		return Result{}, ErrInvalidCategory
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if player < 0 || player >= len(p.players) {
		return Result{}, ErrInvalidPlayer
	}

	res := Result{Category: c}
	if p.locked[c] {
		p.disabled[c][player] = true
		res.Outcome = AlreadyLocked
	} else {
		p.locked[c] = true
		p.winners.set(c, p.players[player])
		for i := range p.disabled[c] {
			p.disabled[c][i] = true
		}
		res.Outcome = Locked
		if !p.complete && p.allLocked() {
			p.complete = true
			res.Complete = true
		}
	}
	res.Player = p.winners.Get(c)
	res.Winners = p.winners
	return res, nil
}

// Buttons returns the grid row by row: for each player, one button per
// category.
func (p *Panel) Buttons() [][]Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows := make([][]Button, len(p.players))
	for i, name := range p.players {
		row := make([]Button, 0, numCategories)
		for _, c := range Categories {
			row = append(row, Button{
				Category: c,
				Player:   i,
				Label:    c.Label() + " " + name,
				Disabled: p.disabled[c][i],
			})
		}
		rows[i] = row
	}
	return rows
}

func (p *Panel) allLocked() bool {
	for _, l := range p.locked {
		if !l {
			return false
		}
	}
	return true
}
