// Package expand turns argument-like AST nodes into concrete byte strings:
// bare words, quoted strings (with embedded expansions), $VAR/${VAR}, $?,
// $$, and $(...) command substitution. See spec §4.2.
package expand

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/registry"
)

// CommandRunner runs script text as a nested script and returns its
// captured standard output, for $(...) substitution. The runner package
// implements this by re-entering its own evaluator, per the engine's
// preferred (non-degraded) command-substitution strategy.
type CommandRunner interface {
	RunCaptured(script string) ([]byte, error)
}

// Context carries the state a single expansion call needs.
type Context struct {
	// LastStatus backs $? expansion.
	LastStatus int
	// PID backs $$ expansion.
	PID int
	// Runner executes $(...) substitutions. A nil Runner makes every
	// command substitution expand to the empty string.
	Runner CommandRunner
}

// ErrOOM would signal that an expansion sub-result's allocation failed, per
// spec §4.2.1's "Expansion never returns a null result; on allocation
// failure it returns the empty string and signals OOM to the caller."
// The Go runtime does not expose allocation failure as a recoverable error
// (an actual out-of-memory condition is a fatal, unrecoverable runtime
// error), so this value exists for API parity with the spec and is never
// returned by this package.
var ErrOOM = fmt.Errorf("expand: allocation failure")

// Expand converts an argument-like node to its expanded byte string,
// dispatching on node kind per §4.2.1. Unknown argument-like kinds fall
// back to the node's literal source slice, the forward-compatible default
// named throughout §4.2.
func Expand(n ast.Node, ctx Context) (string, error) {
	switch n.Kind() {
	case registry.KindWord:
		return n.Text(), nil
	case registry.KindRawString:
		return unquote(n.Text(), '\''), nil
	case registry.KindString:
		return expandString(n, ctx)
	case registry.KindSimpleExpansion:
		return expandSimple(n, ctx), nil
	case registry.KindExpansion:
		return expandBraced(n), nil
	case registry.KindCommandSubstitution:
		return expandCommandSubstitution(n, ctx)
	default:
		return n.Text(), nil
	}
}

// unquote strips a single matching leading/trailing q byte from s. If s is
// not enclosed by that pair, it is returned verbatim, per §4.2.1's raw_string
// case.
func unquote(s string, q byte) string {
	if len(s) >= 2 && s[0] == q && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}

// expandString renders a double-quoted string node per §4.2.2.
func expandString(n ast.Node, ctx Context) (string, error) {
	children := n.NamedChildren()
	if len(children) == 0 {
		return unquote(n.Text(), '"'), nil
	}
	var b strings.Builder
	for _, c := range children {
		switch c.Kind() {
		case registry.KindStringContent:
			b.WriteString(c.Text())
		case registry.KindExpansion, registry.KindSimpleExpansion, registry.KindCommandSubstitution:
			v, err := Expand(c, ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		default:
			// Forward-compatible fallback: literal bytes of any other kind.
			b.WriteString(c.Text())
		}
	}
	return b.String(), nil
}

// expandSimple expands $NAME, $?, or $$.
func expandSimple(n ast.Node, ctx Context) string {
	lit := n.Text()
	switch lit {
	case "$?":
		return strconv.Itoa(ctx.LastStatus)
	case "$$":
		return strconv.Itoa(ctx.PID)
	}
	if name := firstVariableName(n); name != "" {
		return os.Getenv(name)
	}
	return lit
}

// expandBraced expands ${NAME}. No modifiers are honored: any form other
// than a bare variable_name falls back to the node's literal slice, per
// §4.2.1 and the open-question decision in DESIGN.md.
func expandBraced(n ast.Node) string {
	varNode := n.ChildByField(registry.FieldVariable)
	if varNode.IsNull() && n.NamedChildCount() > 0 {
		varNode = n.NamedChild(0)
	}
	if varNode.IsNull() || varNode.Kind() != registry.KindVariableName || n.Text() != "${"+varNode.Text()+"}" {
		return n.Text()
	}
	return os.Getenv(varNode.Text())
}

func firstVariableName(n ast.Node) string {
	if n.NamedChildCount() == 0 {
		return ""
	}
	return n.NamedChild(0).Text()
}

// expandCommandSubstitution evaluates $(...) per §4.2.3: the inner text is
// submitted to a subshell, its stdout captured to EOF, and all trailing
// newlines stripped (no interior trimming).
func expandCommandSubstitution(n ast.Node, ctx Context) (string, error) {
	inner := innerCommandSubstitution(n.Text())
	if ctx.Runner == nil {
		return "", nil
	}
	out, err := ctx.Runner.RunCaptured(inner)
	if err != nil {
		// Spec §7: a command-substitution spawn failure yields the empty
		// string for the expansion; the caller sets last_status = 1.
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func innerCommandSubstitution(lit string) string {
	s := strings.TrimPrefix(lit, "$(")
	return strings.TrimSuffix(s, ")")
}
