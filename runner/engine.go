// Package runner implements the Process Runner (C4) and Statement
// Evaluator (C5): it walks the AST produced by an external tree-sitter
// parse, expands and spawns commands, wires pipes and redirections, and
// maintains last_status per spec §§4.4–4.5.
package runner

import (
	"context"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/expand"
	"github.com/minibash/minibash/registry"
	"github.com/minibash/minibash/signalcoord"
)

// Engine is the evaluator context spec §9 asks for in place of the
// mutable globals ("current script buffer" and "last exit code") the
// original design threaded implicitly: every entry point here takes or
// owns an *Engine instead.
type Engine struct {
	parser *sitter.Parser
	lang   *sitter.Language
	reg    *registry.Registry

	pid        int
	lastStatus int

	stdin  *os.File
	stdout *os.File
	stderr *os.File

	signals *signalcoord.Coordinator
}

// New builds an Engine for the given tree-sitter language (the bash
// grammar, per spec §6.2), wired to the real process's standard streams.
func New(lang *sitter.Language) *Engine {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Engine{
		parser:  p,
		lang:    lang,
		reg:     registry.New(lang),
		pid:     os.Getpid(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		signals: signalcoord.New(),
	}
}

// SetIO overrides the engine's foreground standard streams, e.g. for the
// non-interactive stdin-slurp mode of §6.1.
func (e *Engine) SetIO(stdin, stdout, stderr *os.File) {
	e.stdin, e.stdout, e.stderr = stdin, stdout, stderr
}

// LastStatus returns the shell status maintained per spec §3.
func (e *Engine) LastStatus() int {
	return e.lastStatus
}

// Signals exposes the C6 coordinator, mainly so the REPL loop can assert
// (or rely on) the unblocked-between-statements invariant of §4.6.
func (e *Engine) Signals() *signalcoord.Coordinator {
	return e.signals
}

// Close releases the engine's signal handler.
func (e *Engine) Close() {
	e.signals.Close()
}

// Run parses src as a complete script and evaluates its top-level
// statements in source order, per §2's data flow.
func (e *Engine) Run(ctx context.Context, src []byte) error {
	tree, err := e.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	root := ast.New(tree.RootNode(), src, e.reg)
	e.evalTopLevel(ctx, root)
	return nil
}

// RunCaptured implements expand.CommandRunner for $(...) substitution: it
// re-enters the evaluator on a child Engine sharing this engine's registry
// and pid, with stdout captured instead of inherited. This is the
// non-degraded path spec §4.2.3/§9 prefer over shelling out to /bin/sh: it
// preserves fidelity for shell-internal state such as variables a nested
// command sets, because a subshell here is just a nested call in the same
// process rather than a fork.
//
// Per §5, a pipeline's N stages run concurrently, and any of them may
// itself contain a command substitution — so this can be called from
// several goroutines of the same *Engine at once. A *sitter.Parser is not
// safe for concurrent use, so the sub-Engine gets its own rather than
// reusing e.parser.
func (e *Engine) RunCaptured(script string) ([]byte, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(e.lang)
	sub := &Engine{
		parser:  p,
		lang:    e.lang,
		reg:     e.reg,
		pid:     e.pid,
		stdin:   e.stdin,
		stdout:  w,
		stderr:  e.stderr,
		signals: e.signals,
	}
	out := make(chan []byte, 1)
	go func() {
		buf := readAll(r)
		out <- buf
	}()
	runErr := sub.Run(context.Background(), []byte(script))
	w.Close()
	captured := <-out
	r.Close()
	return captured, runErr
}

var _ expand.CommandRunner = (*Engine)(nil)

func (e *Engine) expandContext() expand.Context {
	return expand.Context{
		LastStatus: e.lastStatus,
		PID:        e.pid,
		Runner:     e,
	}
}
