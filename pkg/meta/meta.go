// Package meta implements the ordered metadata tree attached to column
// headers and envelopes.
//
// A Meta is a list of entries kept in insertion order. Each entry is either
// a string leaf or a nested Meta. Entries are addressed with dot-separated
// paths, so "column.0.name" names the leaf "name" inside the node "0" inside
// the node "column". Indexed enumerates the children of a node whose keys are
// positions, which is how the text codec stores per-column descriptors.
//
// Read methods are safe on a nil *Meta, which behaves as an empty tree.
package meta

import (
	"strings"
)

// Separator splits path segments
const Separator = "."

// Meta is an ordered key/value tree with string leaves
type Meta struct {
	keys  []string
	items map[string]*entry
}

type entry struct {
	value string
	child *Meta
}

// Item is a read-only view of one entry
type Item struct {
	Key   string
	Value string
	Meta  *Meta
}

// IsNode reports whether the item is a nested tree rather than a leaf
func (i Item) IsNode() bool { return i.Meta != nil }

// New returns an empty tree
func New() *Meta {
	return &Meta{items: make(map[string]*entry)}
}

func split(path string) []string {
	return strings.Split(path, Separator)
}

// node walks to the node holding the last segment, creating intermediate
// nodes. Intermediate leaves are replaced by nodes.
func (m *Meta) node(segments []string) *Meta {
	cur := m
	for _, seg := range segments {
		e, ok := cur.items[seg]
		if !ok {
			e = &entry{child: New()}
			cur.put(seg, e)
		} else if e.child == nil {
			e.child = New()
			e.value = ""
		}
		cur = e.child
	}
	return cur
}

func (m *Meta) put(key string, e *entry) {
	if m.items == nil {
		m.items = make(map[string]*entry)
	}
	if _, exists := m.items[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.items[key] = e
}

// Set stores a string leaf at path, replacing whatever was there while
// keeping the entry's original position
func (m *Meta) Set(path, value string) *Meta {
	segments := split(path)
	parent := m.node(segments[:len(segments)-1])
	parent.put(segments[len(segments)-1], &entry{value: value})
	return m
}

// SetMeta stores a copy of child at path. An empty child still creates the
// node.
func (m *Meta) SetMeta(path string, child *Meta) *Meta {
	segments := split(path)
	parent := m.node(segments[:len(segments)-1])
	parent.put(segments[len(segments)-1], &entry{child: child.Clone()})
	return m
}

// Remove deletes the entry at path if it exists
func (m *Meta) Remove(path string) {
	if m == nil {
		return
	}
	segments := split(path)
	parent := m
	for _, seg := range segments[:len(segments)-1] {
		e, ok := parent.items[seg]
		if !ok || e.child == nil {
			return
		}
		parent = e.child
	}
	last := segments[len(segments)-1]
	if _, ok := parent.items[last]; !ok {
		return
	}
	delete(parent.items, last)
	for i, k := range parent.keys {
		if k == last {
			parent.keys = append(parent.keys[:i:i], parent.keys[i+1:]...)
			break
		}
	}
}

func (m *Meta) lookup(path string) (*entry, bool) {
	if m == nil {
		return nil, false
	}
	cur := m
	segments := split(path)
	for i, seg := range segments {
		e, ok := cur.items[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return e, true
		}
		if e.child == nil {
			return nil, false
		}
		cur = e.child
	}
	return nil, false
}

// Get returns the entry at path
func (m *Meta) Get(path string) (Item, bool) {
	e, ok := m.lookup(path)
	if !ok {
		return Item{}, false
	}
	segments := split(path)
	return Item{Key: segments[len(segments)-1], Value: e.value, Meta: e.child}, true
}

// String returns the leaf value at path. Nodes do not count as strings.
func (m *Meta) String(path string) (string, bool) {
	e, ok := m.lookup(path)
	if !ok || e.child != nil {
		return "", false
	}
	return e.value, true
}

// Child returns the nested tree at path
func (m *Meta) Child(path string) (*Meta, bool) {
	e, ok := m.lookup(path)
	if !ok || e.child == nil {
		return nil, false
	}
	return e.child, true
}

// Keys returns the top-level keys in insertion order
func (m *Meta) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Items returns the top-level entries in insertion order
func (m *Meta) Items() []Item {
	if m == nil {
		return nil
	}
	items := make([]Item, 0, len(m.keys))
	for _, k := range m.keys {
		e := m.items[k]
		items = append(items, Item{Key: k, Value: e.value, Meta: e.child})
	}
	return items
}

// Len returns the number of top-level entries
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// IsEmpty reports whether the tree has no entries
func (m *Meta) IsEmpty() bool {
	return m.Len() == 0
}

// Indexed returns the children of the node at prefix in insertion order.
// Each item's Key is the index token, i.e. the part after "<prefix>.".
// Callers that need positional order must sort by the parsed key.
func (m *Meta) Indexed(prefix string) []Item {
	node, ok := m.Child(prefix)
	if !ok {
		return nil
	}
	return node.Items()
}

// Clone returns a deep copy. Cloning nil yields an empty tree.
func (m *Meta) Clone() *Meta {
	c := New()
	if m == nil {
		return c
	}
	for _, k := range m.keys {
		e := m.items[k]
		if e.child != nil {
			c.put(k, &entry{child: e.child.Clone()})
		} else {
			c.put(k, &entry{value: e.value})
		}
	}
	return c
}

// Equal reports whether both trees hold the same entries in the same order.
// nil and empty trees are equal.
func (m *Meta) Equal(o *Meta) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		a, b := m.items[k], o.items[k]
		if (a.child == nil) != (b.child == nil) {
			return false
		}
		if a.child != nil {
			if !a.child.Equal(b.child) {
				return false
			}
		} else if a.value != b.value {
			return false
		}
	}
	return true
}
