// Package vdf reads and writes Valve's text KeyValues format ("VDF"),
// the format Steam uses for localconfig.vdf, libraryfolders.vdf and
// appmanifest_*.acf files.
//
// A document is a tree of nodes. Every node is either a leaf holding a
// single string value or an object holding an ordered set of uniquely
// keyed children. Parsing and serializing preserve key order so that a
// read-modify-write cycle only changes what was explicitly modified.
package vdf

import "fmt"

// Kind identifies the form of a Node.
type Kind uint8

const (
	// LeafKind is a terminal node holding one string value.
	LeafKind Kind = iota
	// ObjectKind is a node holding ordered, uniquely keyed children.
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case LeafKind:
		return "leaf"
	case ObjectKind:
		return "object"
	default:
		return "unknown"
	}
}

// Node is a VDF value. The zero value is an empty leaf.
type Node struct {
	kind  Kind
	value string
	raw   string // value as written in the source, "" when set in code

	entries []Entry
	index   map[string]int
}

// Entry is a key and its child node inside an object.
type Entry struct {
	Key  string
	Node *Node

	raw string // key as written in the source
}

// NewLeaf returns a leaf node holding v. v is stored un-escaped.
func NewLeaf(v string) *Node {
	return &Node{kind: LeafKind, value: v}
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: ObjectKind, index: make(map[string]int)}
}

// Kind reports whether n is a leaf or an object.
func (n *Node) Kind() Kind { return n.kind }

// IsLeaf reports whether n is a non-nil leaf.
func (n *Node) IsLeaf() bool { return n != nil && n.kind == LeafKind }

// IsObject reports whether n is a non-nil object.
func (n *Node) IsObject() bool { return n != nil && n.kind == ObjectKind }

// Value returns the leaf value, or "" for objects.
func (n *Node) Value() string {
	if n.kind != LeafKind {
		return ""
	}
	return n.value
}

// SetValue replaces the value of a leaf. It panics on objects, since a
// node never changes kind. Setting the value a leaf already holds keeps
// its original spelling in the output.
func (n *Node) SetValue(v string) {
	if n.kind != LeafKind {
		panic("vdf: SetValue on object node")
	}
	if v == n.value {
		return
	}
	n.value = v
	n.raw = ""
}

// Len returns the number of entries of an object, or 0 for leaves.
func (n *Node) Len() int {
	return len(n.entries)
}

// Keys returns the keys of an object in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries of an object in insertion order.
// The child nodes are shared with the tree.
func (n *Node) Entries() []Entry {
	out := make([]Entry, len(n.entries))
	copy(out, n.entries)
	return out
}

// Child returns the child stored under key, or nil when n is a leaf or
// has no such key.
func (n *Node) Child(key string) *Node {
	if n.kind != ObjectKind {
		return nil
	}
	i, ok := n.index[key]
	if !ok {
		return nil
	}
	return n.entries[i].Node
}

// Add appends child under key. It fails with a *DuplicateKeyError when
// the key is already present.
func (n *Node) Add(key string, child *Node) error {
	return n.add(key, "", child)
}

// add is Add with the key's source spelling.
func (n *Node) add(key, raw string, child *Node) error {
	if n.kind != ObjectKind {
		return fmt.Errorf("vdf: cannot add %q to a %s node", key, n.kind)
	}
	if child == nil {
		return fmt.Errorf("vdf: nil child for key %q", key)
	}
	if _, ok := n.index[key]; ok {
		return &DuplicateKeyError{Key: key}
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	n.index[key] = len(n.entries)
	n.entries = append(n.entries, Entry{Key: key, Node: child, raw: raw})
	return nil
}

// Equal reports whether n and o have the same kind, the same leaf value
// and the same entries in the same order.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	if n.kind == LeafKind {
		return n.value == o.value
	}
	if len(n.entries) != len(o.entries) {
		return false
	}
	for i := range n.entries {
		if n.entries[i].Key != o.entries[i].Key {
			return false
		}
		if !n.entries[i].Node.Equal(o.entries[i].Node) {
			return false
		}
	}
	return true
}
