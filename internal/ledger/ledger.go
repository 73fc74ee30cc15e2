// Package ledger maps games onto the raw-data sheet of a pod-stats
// workbook.
//
// The sheet has a header row followed by one row per player slot:
//
//	A game# | B player | C commander | D out first | E won | F first blood | G date
//
// Every game occupies a block of PodSize consecutive rows.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the date format of column G.
const DateLayout = "01/02/2006"

// Column indexes, 1-based like the sheet.
const (
	ColumnGameNumber = 1
	ColumnPlayer     = 2
)

// flagged is the cell value marking an outcome.
const flagged = "1"

var ErrNoGameRows = eris.New("raw data sheet has no game rows")

// GameRow is one player slot of a game.
type GameRow struct {
	Number    int
	Player    string
	Commander string
	Date      time.Time
}

// Sheet is the Record Writer over the raw-data sheet. Range references use
// A1 notation without a sheet name.
type Sheet interface {
	AppendGameRow(ctx context.Context, row GameRow) error
	ReadColumn(ctx context.Context, index int) ([]string, error)
	ReadRange(ctx context.Context, ref string) ([][]string, error)
	UpdateRange(ctx context.Context, ref string, rows [][]string) error
}

// Outcomes are the three players recorded by a finished selection panel.
type Outcomes struct {
	OutFirst   string
	Winner     string
	FirstBlood string
}

func (o Outcomes) ordered() []string {
	return []string{o.OutFirst, o.Winner, o.FirstBlood}
}

// Ledger applies the block accounting for a given pod size.
type Ledger struct {
	PodSize int
	Now     func() time.Time
}

// New returns a ledger for pods of podSize players.
func New(podSize int) Ledger {
	return Ledger{PodSize: podSize, Now: time.Now}
}

// NextGameNumber derives the number of the game about to be appended from
// the filled length of the game-number column, header included.
func NextGameNumber(columnLen, podSize int) int {
	return (columnLen + podSize - 1) / podSize
}

// LastBlockStart is the first row of the most recent block given the filled
// length of the player column.
func LastBlockStart(columnLen, podSize int) int {
	return columnLen - (podSize - 1)
}

// AppendGame writes one row per player and returns the game number used.
func (l Ledger) AppendGame(ctx context.Context, s Sheet, players, commanders []string) (int, error) {
	if len(players) != len(commanders) {
		return 0, eris.Errorf("line-up mismatch: %d players, %d commanders", len(players), len(commanders))
	}
	col, err := s.ReadColumn(ctx, ColumnGameNumber)
	if err != nil {
		return 0, eris.Wrap(err, "read game numbers")
	}
	number := NextGameNumber(len(col), l.PodSize)
	date := l.now()
	for i := range players {
		row := GameRow{Number: number, Player: players[i], Commander: commanders[i], Date: date}
		if err := s.AppendGameRow(ctx, row); err != nil {
			return number, eris.Wrapf(err, "append row for %s", players[i])
		}
	}
	return number, nil
}

// RecordOutcomes flags the outcome columns of the most recent block. A
// player row gets a flag in every category it won; other rows are left as
// they are. A first game shorter than the pod size pulls the header row into
// the block; it never matches a player and is written back unchanged.
func (l Ledger) RecordOutcomes(ctx context.Context, s Sheet, o Outcomes) error {
	col, err := s.ReadColumn(ctx, ColumnPlayer)
	if err != nil {
		return eris.Wrap(err, "read player column")
	}
	if len(col) <= 1 {
		return ErrNoGameRows
	}
	start := max(LastBlockStart(len(col), l.PodSize), 1)
	end := start + l.PodSize - 1

	rows, err := s.ReadRange(ctx, blockRef(start, end))
	if err != nil {
		return eris.Wrap(err, "read last game block")
	}
	if len(rows) == 0 {
		return ErrNoGameRows
	}
	names := o.ordered()
	for r, row := range rows {
		row = pad(row, 2+len(names))
		for i, name := range names {
			if name != "" && row[0] == name {
				row[i+2] = flagged
			}
		}
		rows[r] = row
	}
	if err := s.UpdateRange(ctx, blockRef(start, start+len(rows)-1), rows); err != nil {
		return eris.Wrap(err, "update last game block")
	}
	return nil
}

// Row renders a GameRow as sheet cells A..G.
func (r GameRow) Row() []string {
	return []string{strconv.Itoa(r.Number), r.Player, r.Commander, "0", "0", "0", r.Date.Format(DateLayout)}
}

func (l Ledger) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func blockRef(start, end int) string {
	return fmt.Sprintf("B%d:F%d", start, end)
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
