package expand

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/registry"
)

func parseCommand(t *testing.T, src string) (ast.Node, *registry.Registry) {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(bash.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	reg := registry.New(bash.GetLanguage())
	root := ast.New(tree.RootNode(), []byte(src), reg)
	return root.NamedChild(0), reg
}

func TestBuildArgvSimple(t *testing.T) {
	cmd, reg := parseCommand(t, "echo one two three")
	argv, err := BuildArgv(cmd, reg, Context{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"echo", "one", "two", "three"}
	if len(argv) != len(want) {
		t.Fatalf("BuildArgv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestBuildArgvPreservesEmptyString(t *testing.T) {
	cmd, reg := parseCommand(t, `echo '' a`)
	argv, err := BuildArgv(cmd, reg, Context{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"echo", "", "a"}
	if len(argv) != len(want) {
		t.Fatalf("BuildArgv = %#v, want %#v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestBuildArgvVariableAsProgramName(t *testing.T) {
	t.Setenv("MINIBASH_TEST_PROG", "echo")
	cmd, reg := parseCommand(t, "$MINIBASH_TEST_PROG hi")
	argv, err := BuildArgv(cmd, reg, Context{})
	if err != nil {
		t.Fatal(err)
	}
	if len(argv) != 2 || argv[0] != "echo" || argv[1] != "hi" {
		t.Errorf("BuildArgv = %#v, want [echo hi]", argv)
	}
}
