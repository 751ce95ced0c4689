package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/expand"
	"github.com/minibash/minibash/registry"
)

// ioBundle is the concrete set of streams a statement or pipeline stage
// should use, plus whether stdin/stdout were already pinned by an
// enclosing redirected_statement. The *Redirected flags implement §4.3's
// closing rule: a redirection on the enclosing statement takes precedence
// over one on an inner command, because the statement's redirection is
// applied in the parent and the inner command merely inherits it.
type ioBundle struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	stdinRedirected  bool
	stdoutRedirected bool
}

func (e *Engine) ioBundle() ioBundle {
	return ioBundle{stdin: e.stdin, stdout: e.stdout, stderr: e.stderr}
}

// evalTopLevel walks the program root's named children in source order.
// tree-sitter-bash groups an explicit &&/|| junction into a single list
// (or and_or/binary_expression) node; a plain top-level sequence of
// semicolon- or newline-terminated statements instead appears as
// individually adjacent children, which this loop simply runs in order —
// exactly the unconditional ";" behavior of §4.5.1.
func (e *Engine) evalTopLevel(ctx context.Context, root ast.Node) {
	for _, stmt := range root.NamedChildren() {
		e.evalStatement(ctx, stmt)
	}
}

// evalStatement dispatches on node kind per the table in §4.5.
func (e *Engine) evalStatement(ctx context.Context, n ast.Node) {
	switch n.Kind() {
	case registry.KindComment:
		// no-op
	case registry.KindVariableAssignment:
		e.evalAssignment(n)
	case registry.KindCommand:
		e.lastStatus = e.runCommand(ctx, n, e.ioBundle(), nil)
	case registry.KindPipeline:
		e.lastStatus = e.runPipeline(ctx, n, e.ioBundle())
	case registry.KindRedirectedStatement:
		e.lastStatus = e.runRedirectedStatement(ctx, n, e.ioBundle())
	case registry.KindList, registry.KindAndOr, registry.KindBinaryExpression:
		e.evalList(ctx, n)
	default:
		e.logUnimplemented(n)
	}
}

// evalAssignment handles a NAME=VALUE statement per §4.5's table: the
// right-hand value is expanded (a bare word is permitted; an absent value
// expands to the empty string), the ambient environment is mutated, and
// last_status is reset to 0.
func (e *Engine) evalAssignment(n ast.Node) {
	name := n.ChildByField(registry.FieldName).Text()
	valueNode := n.ChildByField(registry.FieldValue)
	value := ""
	if !valueNode.IsNull() {
		v, err := expand.Expand(valueNode, e.expandContext())
		if err != nil {
			e.lastStatus = 1
			return
		}
		value = v
	}
	os.Setenv(name, value)
	e.lastStatus = 0
}

// evalList evaluates a list/and_or/binary_expression node's left and right
// operands with the short-circuit semantics of §4.5.1.
func (e *Engine) evalList(ctx context.Context, n ast.Node) {
	left := n.ChildByField(registry.FieldLeft)
	right := n.ChildByField(registry.FieldRight)
	if left.IsNull() || right.IsNull() {
		// tree-sitter-bash's list node has no left/right fields: its
		// operands are its first and last named children.
		count := n.NamedChildCount()
		if count < 2 {
			e.logUnimplemented(n)
			return
		}
		left, right = n.NamedChild(0), n.NamedChild(count-1)
	}
	op := e.operatorBetween(n, left, right)
	e.evalStatement(ctx, left)
	switch op {
	case "&&":
		if e.lastStatus == 0 {
			e.evalStatement(ctx, right)
		}
	case "||":
		if e.lastStatus != 0 {
			e.evalStatement(ctx, right)
		}
	default: // ";", "&", or undiscoverable: always run right, per §4.5.1
		e.evalStatement(ctx, right)
	}
}

// operatorBetween implements §4.5.1's operator discovery: prefer an
// explicit operator field if the grammar exposes one; otherwise scan the
// raw source bytes between the two operands for the first occurrence of,
// in priority order, &&, ||, ;, &.
func (e *Engine) operatorBetween(n, left, right ast.Node) string {
	if opNode := n.ChildByField(registry.FieldOperator); !opNode.IsNull() {
		return opNode.Text()
	}
	between := left.Slice(left.EndByte(), right.StartByte())
	switch {
	case strings.Contains(between, "&&"):
		return "&&"
	case strings.Contains(between, "||"):
		return "||"
	case strings.Contains(between, ";"):
		return ";"
	case strings.Contains(between, "&"):
		return "&"
	default:
		return ""
	}
}

func (e *Engine) logUnimplemented(n ast.Node) {
	fmt.Fprintf(e.stderr, "minibash: unimplemented: %s\n", n.Kind())
}
