// Package roster turns pasted player lists and draw sheets into clean name
// lists and joins them against downloaded rankings.
package roster

import (
	"strings"
	"unicode"

	"github.com/court-tools/rankpull/internal/extract"
)

// matchColumns is the fixed output schema for ranking matches. Columns the
// rankings table does not carry stay empty.
var matchColumns = []string{"Name", "Rank", "Singles Points", "Doubles Points", "County", "Age group"}

// ParsePlayers pulls player names out of text pasted from an entries page or
// a draw sheet. A header line containing "player" fixes the name column; a
// draw position label in that column ("Maindraw 1", "Q2") shifts the name one
// cell right. Lines that fit neither shape fall back to text-before-the-
// numbers heuristics. Names are trimmed and deduplicated in first-seen order.
func ParsePlayers(raw string) []string {
	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	headerIdx := -1
	playerCol := -1
	for idx, ln := range lines {
		if !strings.Contains(strings.ToLower(ln), "player") {
			continue
		}
		headerIdx = idx
		for colI, col := range splitCells(ln) {
			if strings.Contains(strings.ToLower(col), "player") {
				playerCol = colI
				break
			}
		}
		break
	}

	var names []string
	seen := make(map[string]bool)

	for idx, ln := range lines {
		if idx == headerIdx {
			continue
		}

		var name string

		if playerCol >= 0 {
			parts := splitCells(ln)
			if len(parts) > playerCol {
				candidate := parts[playerCol]
				if looksLikePositionLabel(candidate) && len(parts) > playerCol+1 {
					candidate = parts[playerCol+1]
				}
				name = candidate
			}
		}

		if name == "" {
			name = fallbackName(ln)
		}
		if name == "" {
			continue
		}

		switch strings.ToLower(name) {
		case "players", "player", "name":
			continue
		}

		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}

// Match joins names against a rankings table on the Player column and
// returns one row per input name with ranking details attached. The join is
// case-insensitive after trimming; unmatched names keep empty cells.
func Match(names []string, rankings extract.Table) extract.Table {
	index := make(map[string]extract.Row, rankings.Len())
	for _, row := range rankings.Rows {
		key := matchKey(row["Player"])
		if key == "" {
			continue
		}
		if _, ok := index[key]; !ok {
			index[key] = row
		}
	}

	out := extract.Table{Columns: append([]string(nil), matchColumns...)}
	for _, name := range names {
		row := extract.Row{"Name": name}
		if src, ok := index[matchKey(name)]; ok {
			for _, col := range matchColumns[1:] {
				if v, ok := src[col]; ok {
					row[col] = v
				}
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// NamesTable wraps a name list as a single-column table for the sinks.
func NamesTable(names []string) extract.Table {
	t := extract.Table{Columns: []string{"Name"}}
	for _, n := range names {
		t.Rows = append(t.Rows, extract.Row{"Name": n})
	}
	return t
}

// looksLikePositionLabel reports whether a cell reads like a draw position
// ("Maindraw 1", "Qualifying 3", "Q2") rather than a player name.
func looksLikePositionLabel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	return hasDigit(t) ||
		strings.HasPrefix(t, "maindraw") ||
		strings.HasPrefix(t, "main draw") ||
		strings.HasPrefix(t, "qualifying") ||
		strings.HasPrefix(t, "q ") ||
		strings.HasPrefix(t, "q-")
}

// splitCells splits a line on tabs when present, otherwise on whitespace,
// dropping empty cells.
func splitCells(ln string) []string {
	if !strings.Contains(ln, "\t") {
		return strings.Fields(ln)
	}
	var parts []string
	for _, p := range strings.Split(ln, "\t") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// fallbackName guesses a name from an unstructured line: the text before the
// first tab, or the tokens before the first digit-bearing token.
func fallbackName(ln string) string {
	if strings.Contains(ln, "\t") {
		return strings.TrimSpace(strings.SplitN(ln, "\t", 2)[0])
	}
	var tokens []string
	for _, tok := range strings.Fields(ln) {
		if hasDigit(tok) {
			break
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return strings.TrimSpace(ln)
	}
	return strings.Join(tokens, " ")
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func matchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
