// Package registry resolves the tree-sitter-bash grammar's node kinds and
// field names once at startup and exposes typed predicates over them, so the
// rest of the engine never has to compare raw strings against the grammar.
package registry

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Kind is a grammar symbol name, cached at startup instead of being
// re-derived from a node on every dispatch.
type Kind string

// Node kinds consumed by this engine, per the AST contract it depends on.
const (
	KindProgram             Kind = "program"
	KindComment             Kind = "comment"
	KindCommand             Kind = "command"
	KindCommandName         Kind = "command_name"
	KindWord                Kind = "word"
	KindRawString           Kind = "raw_string"
	KindString              Kind = "string"
	KindStringContent       Kind = "string_content"
	KindSimpleExpansion     Kind = "simple_expansion"
	KindExpansion           Kind = "expansion"
	KindVariableName        Kind = "variable_name"
	KindCommandSubstitution Kind = "command_substitution"
	KindFileRedirect        Kind = "file_redirect"
	KindVariableAssignment  Kind = "variable_assignment"
	KindPipeline            Kind = "pipeline"
	KindRedirectedStatement Kind = "redirected_statement"
	KindList                Kind = "list"
	KindAndOr               Kind = "and_or"
	KindBinaryExpression    Kind = "binary_expression"
	KindSubshell            Kind = "subshell"
)

// Field is a grammar field name.
type Field string

// Fields consumed by this engine.
const (
	FieldName        Field = "name"
	FieldValue       Field = "value"
	FieldVariable    Field = "variable"
	FieldBody        Field = "body"
	FieldDestination Field = "destination"
	FieldOperator    Field = "operator"
	FieldLeft        Field = "left"
	FieldRight       Field = "right"
	FieldRedirect    Field = "redirect"
	FieldCondition   Field = "condition"
)

// argumentyKinds are the node kinds that may contribute to an argv, per the
// argument-like node definition in the glossary.
var argumentyKinds = map[Kind]bool{
	KindWord:               true,
	KindRawString:          true,
	KindString:             true,
	KindSimpleExpansion:    true,
	KindExpansion:          true,
	KindCommandSubstitution: true,
}

// skippableKinds are node kinds that appear as named children of a command
// but never contribute an argv element themselves.
var skippableKinds = map[Kind]bool{
	KindFileRedirect:       true,
	KindVariableAssignment: true,
}

// Registry resolves a tree-sitter Language's symbol table once, so that
// dispatch elsewhere in the engine compares against a Kind the grammar is
// known to support rather than a hand-typed string literal.
//
// The underlying go-tree-sitter bindings resolve fields by name rather than
// by a numeric id exposed to Go callers, so Field plays the role the spec's
// "field id" does: a value cached once and reused, even though its
// representation here is the grammar name itself.
type Registry struct {
	lang       *sitter.Language
	knownKinds map[Kind]bool
}

// New builds a Registry for lang by indexing every symbol name the grammar
// defines, so Supports can answer for any Kind. It does not check that the
// Kinds and Fields this engine depends on are present in the grammar.
func New(lang *sitter.Language) *Registry {
	r := &Registry{lang: lang, knownKinds: make(map[Kind]bool)}
	count := int(lang.SymbolCount())
	for id := 0; id < count; id++ {
		name := lang.SymbolName(sitter.Symbol(id))
		r.knownKinds[Kind(name)] = true
	}
	return r
}

// Supports reports whether the grammar this registry was built from defines
// the given node kind. Unknown kinds are not necessarily an error — the
// evaluator's catch-all dispatch arm logs them as unimplemented rather than
// aborting, per the error-handling design.
func (r *Registry) Supports(k Kind) bool {
	return r.knownKinds[k]
}

// KindOf returns the registered Kind of a node's grammar symbol, falling
// back to the node's raw type string if the registry did not index it
// (forward-compatible with grammar node kinds this engine does not dispatch
// on by name).
func (r *Registry) KindOf(n *sitter.Node) Kind {
	if n == nil {
		return ""
	}
	k := Kind(n.Type())
	if r.knownKinds[k] {
		return k
	}
	return k
}

// IsArgumentLike reports whether a node of kind k may contribute a word to
// an argv: word, raw_string, string, simple_expansion, expansion, or
// command_substitution.
func (r *Registry) IsArgumentLike(k Kind) bool {
	return argumentyKinds[k]
}

// IsSkippableForArgv reports whether a node of kind k is a named child of a
// command that never itself contributes an argv element: file_redirect or
// variable_assignment.
func (r *Registry) IsSkippableForArgv(k Kind) bool {
	return skippableKinds[k]
}
