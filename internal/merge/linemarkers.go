package merge

import (
	"runtime"
	"strings"
)

// Conflict block delimiters.
const (
	MarkerCurrent     = "<<<<<<< Current Workspace"
	MarkerSeparator   = "======="
	MarkerShelfPrefix = ">>>>>>> Shelf: "

	// DeletedSentinel stands in for a side that has no value at a path.
	DeletedSentinel = "(deleted)"
)

// NativeEOL is the host line terminator used when no input has one.
func NativeEOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// DetectEOL returns the first line terminator found scanning texts in
// order, or NativeEOL when none contains one.
func DetectEOL(texts ...string) string {
	for _, text := range texts {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			continue
		}
		if text[i] == '\n' {
			return "\n"
		}
		if i+1 < len(text) && text[i+1] == '\n' {
			return "\r\n"
		}
		return "\r"
	}
	return NativeEOL()
}

// MarkLines diffs current against shelved and returns current with a
// conflict block around every disagreeing run.
func MarkLines(current, shelved, label string) string {
	return BuildLineMarkers(DiffLines(current, shelved), label, DetectEOL(current, shelved))
}

// BuildLineMarkers renders segments as text with conflict blocks.
//
// Removed runs are held back until the next added run, which closes a block
// with both sides, or the next unchanged run (or end of input), which closes
// a block with an empty shelved side.
func BuildLineMarkers(segments []Segment, label, eol string) string {
	var (
		b       strings.Builder
		pending strings.Builder
	)

	flush := func(right string) {
		writeBlock(&b, "", pending.String(), right, label, eol)
		pending.Reset()
	}

	for _, seg := range segments {
		switch seg.Op {
		case OpRemoved:
			pending.WriteString(seg.Text)
		case OpAdded:
			flush(seg.Text)
		default:
			if pending.Len() > 0 {
				flush("")
			}
			b.WriteString(seg.Text)
		}
	}
	if pending.Len() > 0 {
		flush("")
	}

	return b.String()
}

// writeBlock writes one conflict block. Every line of the block, markers
// included, is prefixed with indent.
func writeBlock(b *strings.Builder, indent, left, right, label, eol string) {
	b.WriteString(indent + MarkerCurrent + eol)
	writeSide(b, left, eol)
	b.WriteString(indent + MarkerSeparator + eol)
	writeSide(b, right, eol)
	b.WriteString(indent + MarkerShelfPrefix + label + eol)
}

// writeSide writes a side terminated by a line ending. Empty sides write
// nothing.
func writeSide(b *strings.Builder, side, eol string) {
	if side == "" {
		return
	}
	b.WriteString(side)
	if !endsWithTerminator(side) {
		b.WriteString(eol)
	}
}

func endsWithTerminator(text string) bool {
	return strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\r")
}
