// Package table renders spreadsheet ranges as monospace text for chat
// messages.
package table

import (
	"strings"
	"unicode/utf8"
)

// MessageLimit is the longest message Discord accepts.
const MessageLimit = 2000

const fence = "```"

// Slice cuts a sub-table out of sheet values: rows [0, rowEnd) and columns
// [colStart, colEnd). Short rows are padded with empty cells.
func Slice(values [][]string, rowEnd, colStart, colEnd int) [][]string {
	rowEnd = min(rowEnd, len(values))
	out := make([][]string, 0, max(rowEnd, 0))
	for r := 0; r < rowEnd; r++ {
		row := make([]string, colEnd-colStart)
		for c := colStart; c < colEnd; c++ {
			if c < len(values[r]) {
				row[c-colStart] = values[r][c]
			}
		}
		out = append(out, row)
	}
	return out
}

// Lines left-aligns every column to its widest cell and joins cells with
// " | ".
func Lines(rows [][]string) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	lines := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
		}
		lines[r] = strings.TrimRight(strings.Join(cells, " | "), " ")
	}
	return lines
}

// Pages renders rows into code-block messages that each fit in limit.
// A single line longer than a page is hard-cut.
func Pages(rows [][]string, limit int) []string {
	return pack(Lines(rows), limit-2*len(fence)-2, func(body string) string {
		return fence + "\n" + body + "\n" + fence
	})
}

// Chunks splits plain text on line boundaries into pieces of at most limit
// bytes.
func Chunks(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	return pack(strings.Split(text, "\n"), limit, func(body string) string { return body })
}

func pack(lines []string, limit int, wrap func(string) string) []string {
	if limit < 1 {
		limit = 1
	}
	var (
		pages []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			pages = append(pages, wrap(cur.String()))
			cur.Reset()
		}
	}
	for _, line := range lines {
		for len(line) > limit {
			flush()
			cut := cutAt(line, limit)
			pages = append(pages, wrap(line[:cut]))
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return pages
}

// cutAt backs off to a rune boundary at or before n.
func cutAt(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	if n == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return n
}
