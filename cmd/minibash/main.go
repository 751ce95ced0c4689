// Command minibash is an interpreter for a practical subset of the POSIX
// shell command language, per spec §6.1.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/smacker/go-tree-sitter/bash"
	"golang.org/x/term"

	"github.com/minibash/minibash/runner"
)

func main() {
	flag.Usage = usage
	help := flag.Bool("h", false, "print usage and exit")
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	lang := bash.GetLanguage()
	e := runner.New(lang)
	defer e.Close()

	ctx := context.Background()

	var err error
	switch {
	case flag.NArg() > 0:
		err = runPath(ctx, e, flag.Arg(0))
	case term.IsTerminal(int(os.Stdin.Fd())):
		err = runInteractive(ctx, e)
	default:
		err = runReader(ctx, e, os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "minibash:", err)
	}
	os.Exit(e.LastStatus())
}

func usage() {
	fmt.Fprintln(os.Stdout, "usage: minibash [-h] [script]")
}

func runPath(ctx context.Context, e *runner.Engine, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.Run(ctx, src)
}

func runReader(ctx context.Context, e *runner.Engine, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return e.Run(ctx, src)
}

// runInteractive implements the fixed "minibash> " prompt and line-editing
// facility of §6.1. Each line read is evaluated as its own complete script,
// matching the teacher's own interactive loop (cmd/gosh/main.go), which
// hands one line (or one accumulated statement) to the evaluator at a time.
func runInteractive(ctx context.Context, e *runner.Engine) error {
	rl, err := readline.New("minibash> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	// Between statements — specifically, while reading input — SIGCHLD
	// must be unblocked; assert that invariant here, per §4.6.
	if e.Signals().IsBlocked() {
		panic("minibash: internal invariant violation: blocked while reading input")
	}

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.Run(ctx, []byte(line)); err != nil {
			fmt.Fprintln(os.Stderr, "minibash:", err)
		}
	}
}
