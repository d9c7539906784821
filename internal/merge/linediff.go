package merge

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op tags a diff segment.
type Op int

const (
	// OpUnchanged marks text present in both versions.
	OpUnchanged Op = iota
	// OpAdded marks text present only in the shelved version.
	OpAdded
	// OpRemoved marks text present only in the current version.
	OpRemoved
)

func (o Op) String() string {
	switch o {
	case OpUnchanged:
		return "unchanged"
	case OpAdded:
		return "added"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Segment is a run of whole lines sharing one Op.
type Segment struct {
	Op   Op
	Text string
}

// DiffLines computes the line-level difference from current to shelved.
//
// Dropping every OpAdded segment and concatenating the rest yields current;
// dropping every OpRemoved segment yields shelved. Lines are compared as
// opaque units, so a one-character edit replaces the whole line.
func DiffLines(current, shelved string) []Segment {
	dmp := diffmatchpatch.New()
	// A deadline would make the result depend on machine speed.
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(current, shelved)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		op := mapOperation(d.Type)
		if n := len(segments); n > 0 && segments[n-1].Op == op {
			segments[n-1].Text += d.Text
			continue
		}
		segments = append(segments, Segment{Op: op, Text: d.Text})
	}

	return segments
}

func mapOperation(t diffmatchpatch.Operation) Op {
	switch t {
	case diffmatchpatch.DiffInsert:
		return OpAdded
	case diffmatchpatch.DiffDelete:
		return OpRemoved
	default:
		return OpUnchanged
	}
}

// Reconstruct concatenates segments, skipping those tagged drop.
func Reconstruct(segments []Segment, drop Op) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Op != drop {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// LineStats counts lines added and removed across segments.
func LineStats(segments []Segment) (added, removed int) {
	for _, s := range segments {
		switch s.Op {
		case OpAdded:
			added += countLines(s.Text)
		case OpRemoved:
			removed += countLines(s.Text)
		}
	}
	return added, removed
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			n++
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			n++
		}
	}
	if !endsWithTerminator(text) {
		n++
	}
	return n
}
