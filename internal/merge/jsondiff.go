package merge

import (
	"strconv"
	"strings"
)

// PathElem is one step into a JSON document: an object key or an array
// index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeyElem returns an object-key step.
func KeyElem(key string) PathElem {
	return PathElem{Key: key}
}

// IndexElem returns an array-index step.
func IndexElem(i int) PathElem {
	return PathElem{Index: i, IsIndex: true}
}

// Path locates a node from the document root. The empty path is the root.
type Path []PathElem

// With returns a new path extended by e. p is not modified.
func (p Path) With(e PathElem) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, e)
}

// String renders the path in a jq-like form, e.g. `$.compilerOptions.paths[0]`.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, e := range p {
		if e.IsIndex {
			b.WriteString("[" + strconv.Itoa(e.Index) + "]")
			continue
		}
		if isIdentifier(e.Key) {
			b.WriteString("." + e.Key)
		} else {
			b.WriteString("[" + quote(e.Key) + "]")
		}
	}
	return b.String()
}

// key is an encoding of p in which distinct paths never collide: the key
// "0" and the index 0 differ, and quoting keeps separators in keys apart.
func (p Path) key() string {
	var b strings.Builder
	for _, e := range p {
		if e.IsIndex {
			b.WriteString("i" + strconv.Itoa(e.Index) + "/")
		} else {
			b.WriteString("k" + strconv.Quote(e.Key) + "/")
		}
	}
	return b.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ConflictSet holds the paths where two documents disagree, each at most
// once, in discovery order.
type ConflictSet struct {
	index map[string]struct{}
	paths []Path
}

// NewConflictSet returns an empty set.
func NewConflictSet() *ConflictSet {
	return &ConflictSet{index: map[string]struct{}{}}
}

// Add inserts p unless an equal path is already present.
func (s *ConflictSet) Add(p Path) {
	k := p.key()
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = struct{}{}
	s.paths = append(s.paths, p)
}

// Has reports whether p is in the set.
func (s *ConflictSet) Has(p Path) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[p.key()]
	return ok
}

// Len returns the number of conflicting paths.
func (s *ConflictSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns the conflicting paths in discovery order.
func (s *ConflictSet) Paths() []Path {
	if s == nil {
		return []Path{}
	}
	out := make([]Path, len(s.paths))
	copy(out, s.paths)
	return out
}

// FindConflicts walks current and shelved together and returns every path
// where they disagree. A path whose two sides have different kinds is
// reported once and not descended into.
func FindConflicts(current, shelved *Value) *ConflictSet {
	set := NewConflictSet()
	collectConflicts(current, shelved, Path{}, set)
	return set
}

func collectConflicts(current, shelved *Value, path Path, set *ConflictSet) {
	if current.Kind != shelved.Kind {
		set.Add(path)
		return
	}

	switch current.Kind {
	case KindArray:
		n := max(len(current.Items), len(shelved.Items))
		for i := 0; i < n; i++ {
			childPath := path.With(IndexElem(i))
			c, okC := current.Item(i)
			s, okS := shelved.Item(i)
			if !okC || !okS {
				set.Add(childPath)
				continue
			}
			collectConflicts(c, s, childPath, set)
		}
	case KindObject:
		for _, key := range unionKeys(current, shelved) {
			childPath := path.With(KeyElem(key))
			c, okC := current.Field(key)
			s, okS := shelved.Field(key)
			if !okC || !okS {
				set.Add(childPath)
				continue
			}
			collectConflicts(c, s, childPath, set)
		}
	default:
		if !primitiveEqual(current, shelved) {
			set.Add(path)
		}
	}
}

// unionKeys returns the keys of current in order followed by the keys only
// shelved has, in shelved's order. Either side may be nil or a non-object.
func unionKeys(current, shelved *Value) []string {
	var keys []string
	seen := map[string]struct{}{}
	for _, v := range []*Value{current, shelved} {
		if v == nil || v.Kind != KindObject {
			continue
		}
		for _, k := range v.Keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// unionLen returns the longer of the two array lengths.
func unionLen(current, shelved *Value) int {
	n := 0
	if current != nil && current.Kind == KindArray {
		n = len(current.Items)
	}
	if shelved != nil && shelved.Kind == KindArray && len(shelved.Items) > n {
		n = len(shelved.Items)
	}
	return n
}
