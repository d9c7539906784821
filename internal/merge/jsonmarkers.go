package merge

import "strings"

// BuildJSONMarkers re-renders current with a conflict block at every path in
// conflicts. Each block shows the current and shelved sub-values, or
// DeletedSentinel for a side that lacks the path, indented to the depth of
// that path. Everything else is rendered as two-space indented JSON.
//
// With no conflicts currentText is returned untouched.
func BuildJSONMarkers(currentText string, current, shelved *Value, conflicts *ConflictSet, label, eol string) string {
	if conflicts.Len() == 0 {
		return currentText
	}

	r := &jsonRenderer{conflicts: conflicts, label: label, eol: eol}

	var b strings.Builder
	root := Path{}
	if conflicts.Has(root) {
		r.writeConflict(&b, current, shelved, 0, nil, false)
		return b.String()
	}

	r.writeNode(&b, current, shelved, root, 0)
	b.WriteString(eol)
	return b.String()
}

type jsonRenderer struct {
	conflicts *ConflictSet
	label     string
	eol       string
}

// writeNode writes a non-conflicting node starting at the cursor. Children
// are visited over the union of both sides so conflicts below a node the
// current side shares with the shelved side are still found.
func (r *jsonRenderer) writeNode(b *strings.Builder, current, shelved *Value, path Path, depth int) {
	if current == nil {
		current, shelved = shelved, nil
	}
	if shelved == nil || shelved.Kind != current.Kind || current.IsPrimitive() {
		writePretty(b, current, depth, r.eol)
		return
	}

	switch current.Kind {
	case KindArray:
		n := unionLen(current, shelved)
		if n == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[" + r.eol)
		for i := 0; i < n; i++ {
			c, _ := current.Item(i)
			s, _ := shelved.Item(i)
			r.writeChild(b, c, s, path.With(IndexElem(i)), depth+1, nil, i < n-1)
		}
		b.WriteString(indent(depth) + "]")
	case KindObject:
		keys := unionKeys(current, shelved)
		if len(keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{" + r.eol)
		for i, key := range keys {
			c, _ := current.Field(key)
			s, _ := shelved.Field(key)
			k := key
			r.writeChild(b, c, s, path.With(KeyElem(key)), depth+1, &k, i < len(keys)-1)
		}
		b.WriteString(indent(depth) + "}")
	}
}

// writeChild writes one array element or object member as complete lines.
func (r *jsonRenderer) writeChild(b *strings.Builder, current, shelved *Value, path Path, depth int, key *string, comma bool) {
	if r.conflicts.Has(path) {
		r.writeConflict(b, current, shelved, depth, key, comma)
		return
	}

	b.WriteString(indent(depth))
	if key != nil {
		b.WriteString(quote(*key) + ": ")
	}
	r.writeNode(b, current, shelved, path, depth)
	if comma {
		b.WriteString(",")
	}
	b.WriteString(r.eol)
}

func (r *jsonRenderer) writeConflict(b *strings.Builder, current, shelved *Value, depth int, key *string, comma bool) {
	left := r.side(current, depth, key, comma)
	right := r.side(shelved, depth, key, comma)
	writeBlock(b, indent(depth), left, right, r.label, r.eol)
}

func (r *jsonRenderer) side(v *Value, depth int, key *string, comma bool) string {
	if v == nil {
		return indent(depth) + DeletedSentinel
	}

	var b strings.Builder
	b.WriteString(indent(depth))
	if key != nil {
		b.WriteString(quote(*key) + ": ")
	}
	b.WriteString(pretty(v, depth, r.eol))
	if comma {
		b.WriteString(",")
	}
	return b.String()
}
