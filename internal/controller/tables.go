package controller

import (
	"context"

	"golang.org/x/time/rate"

	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/table"
)

// TableKind selects one of the stats tables.
type TableKind int

const (
	PlayerTable TableKind = iota
	CommanderTable
)

// tableBounds are the columns of each table on the tables sheet and the
// column whose filled length gives the table height.
var tableBounds = map[TableKind]struct{ key, start, end int }{
	PlayerTable:    {key: 1, start: 1, end: 8},
	CommanderTable: {key: 11, start: 11, end: 20},
}

func (k TableKind) String() string {
	if k == CommanderTable {
		return "commander"
	}
	return "player"
}

// ShowTable posts a stats table as code-block pages, paced so long tables
// stay under the channel rate limit.
func (c *Controller) ShowTable(ctx context.Context, req Request, kind TableKind, out Sender) error {
	b, err := c.designated(ctx, req, out)
	if err != nil {
		return err
	}
	wb, err := c.open(ctx, out, b.SheetID)
	if err != nil {
		return err
	}
	values, err := wb.TableValues(ctx)
	if err != nil {
		return c.backendFailure(ctx, out, "read "+kind.String()+" table", err)
	}

	bounds := tableBounds[kind]
	rows := table.Slice(values, filledLen(values, bounds.key), bounds.start, bounds.end)
	if len(rows) == 0 {
		c.say(ctx, out, "No "+kind.String()+" stats yet.")
		return nil
	}

	limit := rate.Inf
	if c.tableInterval > 0 {
		limit = rate.Every(c.tableInterval)
	}
	pacer := rate.NewLimiter(limit, 1)
	pages := table.Pages(rows, table.MessageLimit)
	for _, page := range pages {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		if err := out.Send(ctx, page); err != nil {
			return err
		}
	}
	logging.Debug("table posted", logging.Fields{"guild": req.GuildID, "table": kind.String(), "pages": len(pages)})
	return nil
}

// filledLen is the number of rows up to the last non-empty cell of col.
func filledLen(values [][]string, col int) int {
	for r := len(values) - 1; r >= 0; r-- {
		if col < len(values[r]) && values[r][col] != "" {
			return r + 1
		}
	}
	return 0
}
