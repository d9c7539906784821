package merge

import (
	"path/filepath"
	"strings"
)

// Strategy names the builder that produced a marked file.
type Strategy string

const (
	StrategyLine Strategy = "line"
	StrategyJSON Strategy = "json"
)

// IsJSONPath reports whether path should be reconciled structurally.
// Classification uses the extension only.
func IsJSONPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	default:
		return false
	}
}

// Marked is the outcome of Mark.
type Marked struct {
	Text     string
	Strategy Strategy

	// ConflictPaths lists the JSON paths that disagreed, e.g. `$.server.port`.
	// Empty for line markers.
	ConflictPaths []string
}

// Mark produces the conflict-marked text for relPath. JSON-typed paths use
// the structural builder when both sides parse; everything else, including
// JSON that fails to parse, goes through the line builder.
func Mark(relPath string, current, shelved []byte, label string) Marked {
	currentText, shelvedText := string(current), string(shelved)
	eol := DetectEOL(currentText, shelvedText)

	if IsJSONPath(relPath) {
		cur, errCur := ParseJSON(current)
		shv, errShv := ParseJSON(shelved)
		if errCur == nil && errShv == nil {
			conflicts := FindConflicts(cur, shv)
			paths := make([]string, 0, conflicts.Len())
			for _, p := range conflicts.Paths() {
				paths = append(paths, p.String())
			}
			return Marked{
				Text:          BuildJSONMarkers(currentText, cur, shv, conflicts, label, eol),
				Strategy:      StrategyJSON,
				ConflictPaths: paths,
			}
		}
	}

	return Marked{
		Text:     BuildLineMarkers(DiffLines(currentText, shelvedText), label, eol),
		Strategy: StrategyLine,
	}
}
