package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/expand"
	"github.com/minibash/minibash/redirect"
	"github.com/minibash/minibash/registry"
)

// runCommand executes a single `command` node per §4.4.1: build argv,
// dispatch to a builtin or fork+exec an external program, and report the
// resulting status. afterStart, when non-nil, is invoked once the process
// (or, for a builtin, the synchronous "stage") has taken over its assigned
// descriptors — pipeline callers use it to close their own copies of pipe
// endpoints so downstream readers see EOF instead of hanging, per §4.4.2
// step 3/4 and §5's fd-ownership rule.
func (e *Engine) runCommand(ctx context.Context, cmdNode ast.Node, io_ ioBundle, afterStart func()) int {
	plan := redirect.Scan(cmdNode, e.reg)
	opened, err := redirect.Apply(plan)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		if afterStart != nil {
			afterStart()
		}
		return 1
	}
	defer opened.Close()

	stage := io_
	if opened.Stdin != nil && !stage.stdinRedirected {
		stage.stdin = opened.Stdin
	}
	if opened.Stdout != nil && !stage.stdoutRedirected {
		stage.stdout = opened.Stdout
	}

	argv, err := expand.BuildArgv(cmdNode, e.reg, e.expandContext())
	if err != nil || len(argv) == 0 {
		if afterStart != nil {
			afterStart()
		}
		return 1
	}

	if argv[0] == "echo" {
		// Write before releasing the caller's copy of the pipe endpoint:
		// for a non-final pipeline stage, stage.stdout is the exact fd
		// afterStart (the pipeline's closeOwn) closes, per §4.4.4 — this
		// builtin must dupe its output the same way an exec'd child would
		// before that fd goes away.
		writeEcho(stage.stdout, argv[1:])
		if afterStart != nil {
			afterStart()
		}
		return 0
	}

	return e.execExternal(ctx, argv, stage, afterStart)
}

// execExternal forks and execs an external program, per §4.4.1 steps 3–4.
func (e *Engine) execExternal(ctx context.Context, argv []string, io_ ioBundle, afterStart func()) int {
	path, err := lookPath(argv[0])
	if err != nil {
		fmt.Fprintf(io_.stderr, "minibash: %s: not found\n", argv[0])
		if afterStart != nil {
			afterStart()
		}
		return 127
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   argv,
		Env:    os.Environ(),
		Stdin:  io_.stdin,
		Stdout: io_.stdout,
		Stderr: io_.stderr,
	}

	end := e.signals.Begin()
	defer end()

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(io_.stderr, "minibash: %s: %v\n", argv[0], err)
		if afterStart != nil {
			afterStart()
		}
		return 127
	}
	if afterStart != nil {
		afterStart()
	}

	return exitCodeFromWaitErr(cmd.Wait())
}

// exitCodeFromWaitErr maps a process's wait error to last_status per §3:
// normal exit keeps the exit code, death by signal s maps to 128+s.
func exitCodeFromWaitErr(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	// The process started but wait failed for a reason other than a
	// reported exit/signal (e.g. an I/O error copying a non-file stream):
	// an internal shell failure per §7, not an exec/signal outcome.
	return 1
}

// lookPath resolves argv[0] per §4.4.1 step 3: a direct path check when the
// name contains a slash, PATH search otherwise. Grounded on the teacher's
// own findExecutable/checkStat split (interp/handler.go), trimmed to the
// POSIX case this spec covers (no Windows extension search).
func lookPath(name string) (string, error) {
	if strings.Contains(name, "/") {
		if err := checkExecutable(name); err != nil {
			return "", err
		}
		return name, nil
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if checkExecutable(candidate) == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("not found")
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("permission denied")
	}
	return nil
}

// pipe is a single anonymous pipe between two pipeline stages.
type pipe struct {
	r *os.File
	w *os.File
}

// runPipeline executes an N-stage pipeline per §4.4.2. Each stage runs
// concurrently (a goroutine wrapping either a forked external process or
// an in-process builtin); last_status is taken from the final stage.
func (e *Engine) runPipeline(ctx context.Context, pipeNode ast.Node, outer ioBundle) int {
	stages := pipelineCommands(pipeNode, e.reg)
	n := len(stages)
	if n == 0 {
		return 1
	}
	if n == 1 {
		return e.runCommand(ctx, stages[0], outer, nil)
	}

	pipes := make([]*pipe, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			for j := 0; j < i; j++ {
				pipes[j].r.Close()
				pipes[j].w.Close()
			}
			fmt.Fprintln(e.stderr, "minibash: pipe:", err)
			return 1
		}
		pipes[i] = &pipe{r: r, w: w}
	}

	// Each stage is reaped independently via os/exec's own Wait, so nothing
	// here can fail in a way the group needs to propagate; errgroup is used
	// purely as the wait/reap barrier across the concurrent stages, in
	// place of a bare sync.WaitGroup, so a future stage that does need to
	// report a launch failure can do so without changing this join point.
	results := make([]int, n)
	var g errgroup.Group
	for i, stage := range stages {
		i, stage := i, stage
		stageIO := outer
		if i > 0 {
			stageIO.stdin = pipes[i-1].r
			stageIO.stdinRedirected = false
		}
		if i < n-1 {
			stageIO.stdout = pipes[i].w
			stageIO.stdoutRedirected = false
		}

		closeOwn := func() {
			if i > 0 {
				pipes[i-1].r.Close()
			}
			if i < n-1 {
				pipes[i].w.Close()
			}
		}

		g.Go(func() error {
			results[i] = e.runCommand(ctx, stage, stageIO, closeOwn)
			return nil
		})
	}
	g.Wait()
	return results[n-1]
}

// pipelineCommands returns the pipeline's `command` children in source
// order, per §4.4.2 step 1.
func pipelineCommands(n ast.Node, reg *registry.Registry) []ast.Node {
	var out []ast.Node
	for _, c := range n.NamedChildren() {
		if c.Kind() == registry.KindCommand {
			out = append(out, c)
		}
	}
	return out
}

// runRedirectedStatement executes a redirected_statement per §4.4.3: open
// the statement's own redirection plan, then run the wrapped command or
// pipeline with those descriptors as the externally supplied in/out.
func (e *Engine) runRedirectedStatement(ctx context.Context, n ast.Node, outer ioBundle) int {
	plan := redirect.Scan(n, e.reg)
	opened, err := redirect.Apply(plan)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	defer opened.Close()

	io_ := outer
	if opened.Stdin != nil {
		io_.stdin = opened.Stdin
		io_.stdinRedirected = true
	}
	if opened.Stdout != nil {
		io_.stdout = opened.Stdout
		io_.stdoutRedirected = true
	}

	inner := wrappedTarget(n, e.reg)
	switch inner.Kind() {
	case registry.KindCommand:
		return e.runCommand(ctx, inner, io_, nil)
	case registry.KindPipeline:
		return e.runPipeline(ctx, inner, io_)
	default:
		e.logUnimplemented(n)
		return 1
	}
}

func wrappedTarget(n ast.Node, reg *registry.Registry) ast.Node {
	for _, c := range n.NamedChildren() {
		switch c.Kind() {
		case registry.KindCommand, registry.KindPipeline:
			return c
		}
	}
	return ast.Node{}
}
