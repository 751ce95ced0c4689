package expand

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/registry"
)

// parseFirstArg parses src as a single command and returns the first
// named child that is not the command name, for exercising Expand
// against real tree-sitter-bash nodes.
func parseFirstArg(t *testing.T, src string) ast.Node {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(bash.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	reg := registry.New(bash.GetLanguage())
	b := []byte(src)
	root := ast.New(tree.RootNode(), b, reg)
	cmd := root.NamedChild(0)
	for _, c := range cmd.NamedChildren() {
		if c.Kind() == registry.KindCommandName {
			continue
		}
		return c
	}
	t.Fatalf("no argument-like child found in %q", src)
	return ast.Node{}
}

func TestExpandWord(t *testing.T) {
	n := parseFirstArg(t, "echo hello")
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("Expand(word) = %q, want %q", got, "hello")
	}
}

func TestExpandRawString(t *testing.T) {
	n := parseFirstArg(t, `echo 'a b'`)
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a b" {
		t.Errorf("Expand(raw_string) = %q, want %q", got, "a b")
	}
}

func TestExpandLastStatus(t *testing.T) {
	n := parseFirstArg(t, "echo $?")
	got, err := Expand(n, Context{LastStatus: 7})
	if err != nil {
		t.Fatal(err)
	}
	if got != "7" {
		t.Errorf("Expand($?) = %q, want %q", got, "7")
	}
}

func TestExpandPID(t *testing.T) {
	n := parseFirstArg(t, "echo $$")
	got, err := Expand(n, Context{PID: 1234})
	if err != nil {
		t.Fatal(err)
	}
	if got != "1234" {
		t.Errorf("Expand($$) = %q, want %q", got, "1234")
	}
}

func TestExpandSimpleVariable(t *testing.T) {
	t.Setenv("MINIBASH_TEST_VAR", "value")
	n := parseFirstArg(t, "echo $MINIBASH_TEST_VAR")
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "value" {
		t.Errorf("Expand($VAR) = %q, want %q", got, "value")
	}
}

func TestExpandBracedVariable(t *testing.T) {
	t.Setenv("MINIBASH_TEST_BRACED", "braced-value")
	n := parseFirstArg(t, "echo ${MINIBASH_TEST_BRACED}")
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "braced-value" {
		t.Errorf("Expand(${VAR}) = %q, want %q", got, "braced-value")
	}
}

func TestExpandUnsetVariableIsEmpty(t *testing.T) {
	n := parseFirstArg(t, "echo $MINIBASH_DEFINITELY_UNSET_VAR")
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Expand(unset $VAR) = %q, want empty", got)
	}
}

func TestExpandDoubleQuotedWithEmbeddedExpansion(t *testing.T) {
	t.Setenv("MINIBASH_TEST_NAME", "world")
	n := parseFirstArg(t, `echo "hello $MINIBASH_TEST_NAME"`)
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Errorf("Expand(double-quoted) = %q, want %q", got, "hello world")
	}
}

type fakeRunner struct {
	out []byte
	err error
}

func (f fakeRunner) RunCaptured(script string) ([]byte, error) {
	return f.out, f.err
}

func TestExpandCommandSubstitution(t *testing.T) {
	n := parseFirstArg(t, "echo $(true)")
	got, err := Expand(n, Context{Runner: fakeRunner{out: []byte("captured\n\n")}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "captured" {
		t.Errorf("Expand($(...)) = %q, want %q (trailing newlines stripped)", got, "captured")
	}
}

func TestExpandCommandSubstitutionNilRunner(t *testing.T) {
	n := parseFirstArg(t, "echo $(true)")
	got, err := Expand(n, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Expand($(...)) with nil Runner = %q, want empty", got)
	}
}

func TestExpandCommandSubstitutionPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	n := parseFirstArg(t, "echo $(true)")
	_, err := Expand(n, Context{Runner: fakeRunner{err: wantErr}})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expand($(...)) error = %v, want %v", err, wantErr)
	}
}
