package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s used for case-insensitive
// search. Folding handles Cyrillic as well as Latin text.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// FoldJoin folds and joins the non-empty parts with a single space.
func FoldJoin(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return Fold(strings.Join(kept, " "))
}

// LikeEscape is the escape character used by LikePattern. SQLite has no
// default LIKE escape, so queries must spell it out: LIKE ? ESCAPE '!'.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// LikePattern builds a "contains" LIKE pattern for q with the LIKE wildcards
// escaped by LikeEscape.
func LikePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
