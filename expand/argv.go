package expand

import (
	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/registry"
)

// BuildArgv assembles the argv for a command node per §4.2.4: it locates
// the program-name node (preferring the text inside an explicit
// command_name child), expands every top-level argument-like child that is
// neither inside command_name nor skippable, and preserves empty strings
// positionally.
//
// A nil, nil return means the command node carries no program name at all
// (e.g. a bare assignment-only line misclassified as a command); callers
// treat that as an expansion failure per §4.4.1 step 1.
func BuildArgv(cmd ast.Node, reg *registry.Registry, ctx Context) ([]string, error) {
	children := cmd.NamedChildren()

	programNode, ok := findProgramNode(children, reg)
	if !ok {
		return nil, nil
	}

	progStr, err := Expand(programNode, ctx)
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, len(children)+1)
	argv = append(argv, progStr)

	for _, c := range children {
		if c.Kind() == registry.KindCommandName {
			continue
		}
		if reg.IsSkippableForArgv(c.Kind()) {
			continue
		}
		if !reg.IsArgumentLike(c.Kind()) {
			continue
		}
		if c.Equal(programNode) {
			continue
		}
		v, err := Expand(c, ctx)
		if err != nil {
			return nil, err
		}
		argv = append(argv, v)
	}
	return argv, nil
}

// findProgramNode implements §4.2.4 step 1.
func findProgramNode(children []ast.Node, reg *registry.Registry) (ast.Node, bool) {
	for _, c := range children {
		if c.Kind() == registry.KindCommandName {
			if desc, found := firstArgumentLikeDescendant(c, reg); found {
				return desc, true
			}
			break
		}
	}
	for _, c := range children {
		if reg.IsSkippableForArgv(c.Kind()) {
			continue
		}
		if reg.IsArgumentLike(c.Kind()) {
			return c, true
		}
	}
	return ast.Node{}, false
}

func firstArgumentLikeDescendant(n ast.Node, reg *registry.Registry) (ast.Node, bool) {
	if reg.IsArgumentLike(n.Kind()) {
		return n, true
	}
	for _, c := range n.NamedChildren() {
		if desc, found := firstArgumentLikeDescendant(c, reg); found {
			return desc, true
		}
	}
	return ast.Node{}, false
}
