package ast

import (
	"fmt"

	"lectern/pkg/nametable"
)

// Tree owns a root node and the name table its Variable nodes index into.
type Tree struct {
	Root  *Node
	Names *nametable.Table
}

// NewTree returns an empty tree owning names. A nil table is replaced by a
// fresh one.
func NewTree(names *nametable.Table) *Tree {
	if names == nil {
		names = nametable.New()
	}
	return &Tree{Names: names}
}

// VarName resolves the name of a Variable node, or "" for any other node.
func (t *Tree) VarName(n *Node) string {
	idx, ok := n.NameIndex()
	if !ok {
		return ""
	}
	return t.Names.Name(idx)
}

// Equal reports whether two trees have identical structure and name tables.
func (t *Tree) Equal(o *Tree) bool {
	if !Equal(t.Root, o.Root) || t.Names.Len() != o.Names.Len() {
		return false
	}
	for i := 0; i < t.Names.Len(); i++ {
		if t.Names.Name(i) != o.Names.Name(i) {
			return false
		}
		n1, ok1 := t.Names.ParameterCount(i)
		n2, ok2 := o.Names.ParameterCount(i)
		if n1 != n2 || ok1 != ok2 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the tree and its name table.
func (t *Tree) Clone() *Tree {
	return &Tree{Root: Clone(t.Root), Names: t.Names.Copy()}
}

// Validate checks the invariants every consumer relies on: leaves have no
// children and every Variable indexes a live name-table slot.
func (t *Tree) Validate() error {
	var err error
	Walk(t.Root, func(n *Node, depth int) bool {
		if err != nil {
			return false
		}
		if n.kind.IsLeaf() && (n.Left != nil || n.Right != nil) {
			err = fmt.Errorf("depth %d: %s leaf %s has children", depth, n.kind, n)
			return false
		}
		if idx, ok := n.NameIndex(); ok && (idx < 0 || idx >= t.Names.Len()) {
			err = fmt.Errorf("depth %d: variable index %d outside name table of %d", depth, idx, t.Names.Len())
			return false
		}
		return true
	})
	return err
}
