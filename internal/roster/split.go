package roster

import "strings"

// SplitPlayers splits a comma separated reply. ", " wins over "," when the
// reply contains it anywhere.
func SplitPlayers(reply string) []string {
	return splitPreferring(reply, ", ", ",")
}

// SplitCommanders splits a pipe separated reply. Commander names routinely
// contain commas, hence the different separator.
func SplitCommanders(reply string) []string {
	return splitPreferring(reply, " | ", "|")
}

func splitPreferring(s, spaced, bare string) []string {
	if strings.Contains(s, spaced) {
		return strings.Split(s, spaced)
	}
	return strings.Split(s, bare)
}
