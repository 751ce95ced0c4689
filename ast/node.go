// Package ast wraps the tree-sitter concrete syntax tree consumed by this
// engine behind the small node interface the evaluator actually needs:
// symbol/kind lookup, named-child iteration, field lookup, and byte-range
// text extraction. The parser that produces the tree is out of scope for
// this engine; this package only gives it a typed face.
package ast

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/minibash/minibash/registry"
)

// Node is an AST node together with the source buffer it borrows byte
// offsets into and the registry used to classify it. Nodes are cheap to
// copy, like the tree-sitter nodes they wrap.
type Node struct {
	raw *sitter.Node
	src []byte
	reg *registry.Registry
}

// New wraps a raw tree-sitter node for traversal.
func New(raw *sitter.Node, src []byte, reg *registry.Registry) Node {
	return Node{raw: raw, src: src, reg: reg}
}

// IsNull reports whether the node is absent (e.g. a missing optional
// field).
func (n Node) IsNull() bool {
	return n.raw == nil
}

// Kind returns the node's registered grammar symbol, or the empty Kind for
// a null node.
func (n Node) Kind() registry.Kind {
	if n.IsNull() {
		return ""
	}
	return n.reg.KindOf(n.raw)
}

// Text returns the literal source slice spanned by the node.
func (n Node) Text() string {
	if n.IsNull() {
		return ""
	}
	return n.raw.Content(n.src)
}

// StartByte returns the node's start offset into the source buffer.
func (n Node) StartByte() int {
	return int(n.raw.StartByte())
}

// EndByte returns the node's end offset into the source buffer.
func (n Node) EndByte() int {
	return int(n.raw.EndByte())
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() int {
	if n.IsNull() {
		return 0
	}
	return int(n.raw.NamedChildCount())
}

// NamedChild returns the i'th named child.
func (n Node) NamedChild(i int) Node {
	if n.IsNull() {
		return Node{}
	}
	return Node{raw: n.raw.NamedChild(i), src: n.src, reg: n.reg}
}

// NamedChildren returns all named children in source order.
func (n Node) NamedChildren() []Node {
	count := n.NamedChildCount()
	out := make([]Node, count)
	for i := 0; i < count; i++ {
		out[i] = n.NamedChild(i)
	}
	return out
}

// ChildByField returns the node's child registered under the given field
// name, or a null Node if the field is absent.
func (n Node) ChildByField(f registry.Field) Node {
	if n.IsNull() {
		return Node{}
	}
	return Node{raw: n.raw.ChildByFieldName(string(f)), src: n.src, reg: n.reg}
}

// Slice returns the source bytes in [start, end), clamped to the buffer's
// bounds. Used to inspect raw text between two sibling nodes when the
// grammar does not expose an explicit field for what lies between them
// (spec §4.5.1's operator-discovery fallback).
func (n Node) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(n.src) {
		end = len(n.src)
	}
	if start >= end {
		return ""
	}
	return string(n.src[start:end])
}

// Equal reports whether two nodes refer to the same tree position.
func (n Node) Equal(o Node) bool {
	if n.IsNull() || o.IsNull() {
		return n.IsNull() == o.IsNull()
	}
	return n.raw.Equal(o.raw)
}
