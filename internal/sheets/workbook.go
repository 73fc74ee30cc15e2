package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"
	gsheets "google.golang.org/api/sheets/v4"

	"podstats-discord-bot/internal/ledger"
	"podstats-discord-bot/internal/roster"
)

const (
	// validation sheet columns holding the rosters
	commanderColumn = 1
	playerColumn    = 4

	userEntered = "USER_ENTERED"
)

// Workbook is one guild's pod-stats spreadsheet.
type Workbook struct {
	values *gsheets.SpreadsheetsValuesService
	id     string

	tables      string
	rawData     string
	validations string
}

var _ ledger.Sheet = (*Workbook)(nil)

// AppendGameRow appends one player slot to the raw data sheet.
func (w *Workbook) AppendGameRow(ctx context.Context, row ledger.GameRow) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(row.Row())}}
	_, err := w.values.Append(w.id, qualify(w.rawData, "A1"), vr).
		ValueInputOption(userEntered).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "append game %d row", row.Number)
	}
	return nil
}

// ReadColumn returns the raw data column at the 1-based index, up to its
// last filled cell.
func (w *Workbook) ReadColumn(ctx context.Context, index int) ([]string, error) {
	col := columnName(index)
	rows, err := w.get(ctx, qualify(w.rawData, col+":"+col))
	if err != nil {
		return nil, err
	}
	return firstCells(rows), nil
}

// ReadRange reads an A1 range of the raw data sheet.
func (w *Workbook) ReadRange(ctx context.Context, ref string) ([][]string, error) {
	return w.get(ctx, qualify(w.rawData, ref))
}

// UpdateRange overwrites an A1 range of the raw data sheet.
func (w *Workbook) UpdateRange(ctx context.Context, ref string, rows [][]string) error {
	return w.put(ctx, qualify(w.rawData, ref), rows)
}

// ListKnownPlayers returns the player roster, capitalized and sorted.
func (w *Workbook) ListKnownPlayers(ctx context.Context) ([]string, error) {
	players, _, err := w.rosters(ctx)
	return players, err
}

// ListKnownCommanders returns the commander roster, capitalized and sorted.
func (w *Workbook) ListKnownCommanders(ctx context.Context) ([]string, error) {
	_, commanders, err := w.rosters(ctx)
	return commanders, err
}

// AddPlayers writes names under the last filled player roster cell.
func (w *Workbook) AddPlayers(ctx context.Context, names []string) error {
	return w.appendToColumn(ctx, playerColumn, names)
}

// AddCommanders writes names under the last filled commander roster cell.
func (w *Workbook) AddCommanders(ctx context.Context, names []string) error {
	return w.appendToColumn(ctx, commanderColumn, names)
}

// TableValues returns every cell of the stats tables sheet.
func (w *Workbook) TableValues(ctx context.Context) ([][]string, error) {
	return w.get(ctx, qualify(w.tables, "A:Z"))
}

func (w *Workbook) rosters(ctx context.Context) ([]string, []string, error) {
	rows, err := w.get(ctx, qualify(w.validations, "A:D"))
	if err != nil {
		return nil, nil, err
	}
	players, commanders := rosterColumns(rows)
	return players, commanders, nil
}

func (w *Workbook) appendToColumn(ctx context.Context, index int, names []string) error {
	if len(names) == 0 {
		return nil
	}
	col := columnName(index)
	rows, err := w.get(ctx, qualify(w.validations, col+":"+col))
	if err != nil {
		return err
	}
	first := len(rows) + 1
	ref := fmt.Sprintf("%s%d:%s%d", col, first, col, first+len(names)-1)
	cells := lo.Map(names, func(n string, _ int) []string { return []string{roster.Capitalize(n)} })
	return w.put(ctx, qualify(w.validations, ref), cells)
}

func (w *Workbook) get(ctx context.Context, rng string) ([][]string, error) {
	vr, err := w.values.Get(w.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", rng)
	}
	return fromCells(vr.Values), nil
}

func (w *Workbook) put(ctx context.Context, rng string, rows [][]string) error {
	vr := &gsheets.ValueRange{Values: lo.Map(rows, func(r []string, _ int) []interface{} { return toCells(r) })}
	_, err := w.values.Update(w.id, rng, vr).ValueInputOption(userEntered).Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "update %s", rng)
	}
	return nil
}

// rosterColumns extracts the commander (A) and player (D) lists from the
// validation sheet: blanks dropped, header dropped, capitalized, sorted.
func rosterColumns(rows [][]string) (players, commanders []string) {
	for _, row := range rows {
		if len(row) > commanderColumn-1 && row[commanderColumn-1] != "" {
			commanders = append(commanders, roster.Capitalize(row[commanderColumn-1]))
		}
		if len(row) > playerColumn-1 && row[playerColumn-1] != "" {
			players = append(players, roster.Capitalize(row[playerColumn-1]))
		}
	}
	players = dropHeader(players)
	commanders = dropHeader(commanders)
	sort.Strings(players)
	sort.Strings(commanders)
	return players, commanders
}

func dropHeader(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return s[1:]
}

func qualify(sheet, ref string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), ref)
}

// columnName converts a 1-based index to A1 letters.
func columnName(index int) string {
	name := ""
	for index > 0 {
		index--
		name = string(rune('A'+index%26)) + name
		index /= 26
	}
	return name
}

func firstCells(rows [][]string) []string {
	return lo.Map(rows, func(r []string, _ int) string {
		if len(r) == 0 {
			return ""
		}
		return r[0]
	})
}

func toCells(row []string) []interface{} {
	return lo.Map(row, func(s string, _ int) interface{} { return s })
}

func fromCells(values [][]interface{}) [][]string {
	return lo.Map(values, func(r []interface{}, _ int) []string {
		return lo.Map(r, func(v interface{}, _ int) string { return fmt.Sprint(v) })
	})
}
