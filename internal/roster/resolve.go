// Package roster corrects free-text player and commander names against the
// names already known to a guild's spreadsheet.
package roster

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
)

// DefaultCutoff is the minimum similarity ratio a known name needs to
// replace the typed one.
const DefaultCutoff = 0.4

// Capitalize upper-cases the first letter and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Ratio is the similarity of a and b on a 0..1 scale, computed over their
// character sequences.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// Resolver maps typed names onto known ones.
type Resolver struct {
	Cutoff float64
}

// NewResolver returns a resolver with the given threshold.
func NewResolver(cutoff float64) Resolver {
	return Resolver{Cutoff: cutoff}
}

// Resolve returns, for every input token, the closest known name or the
// capitalized token itself when nothing is close enough. The output has the
// same length and order as inputs. Ties go to the known name listed first.
func (r Resolver) Resolve(inputs, known []string) []string {
	return lo.Map(inputs, func(in string, _ int) string {
		return r.best(Capitalize(in), known)
	})
}

// Resolve uses DefaultCutoff.
func Resolve(inputs, known []string) []string {
	return NewResolver(DefaultCutoff).Resolve(inputs, known)
}

func (r Resolver) best(word string, known []string) string {
	if len(known) == 0 {
		return word
	}
	m := difflib.NewMatcher(nil, chars(word))
	match, score := "", -1.0
	for _, candidate := range known {
		m.SetSeq1(chars(candidate))
		if m.RealQuickRatio() < r.Cutoff || m.QuickRatio() < r.Cutoff {
			continue
		}
		ratio := m.Ratio()
		if ratio >= r.Cutoff && ratio > score {
			match, score = candidate, ratio
		}
	}
	if score < 0 {
		return word
	}
	return match
}

func chars(s string) []string {
	return strings.Split(s, "")
}
