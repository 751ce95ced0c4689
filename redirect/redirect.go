// Package redirect scans file_redirect clauses and turns them into an
// ordered plan of descriptor actions, then opens the files that plan names.
// See spec §3 and §4.3.
package redirect

import (
	"fmt"
	"os"
	"strings"

	"github.com/minibash/minibash/ast"
	"github.com/minibash/minibash/registry"
)

// Action is the direction of a single redirection.
type Action int

const (
	// Input opens a path read-only and targets fd 0.
	Input Action = iota
	// Output opens a path write-only (creating it) and targets fd 1.
	Output
)

// Entry is one fd action in a redirection plan.
type Entry struct {
	Action Action
	// Path is the destination's literal text; it is not expanded, per
	// DESIGN.md's open-question decision.
	Path string
	// Truncate is only meaningful for Output: true for ">", false for
	// ">>".
	Truncate bool
}

// Plan is the ordered sequence of fd actions produced by scanning a
// command's or redirected_statement's file_redirect children. If multiple
// entries target the same fd, later entries override earlier ones in the
// final dup order, per §3.
type Plan []Entry

// Scan collects the redirection plan for the file_redirect named children
// of n, per §4.3.
func Scan(n ast.Node, reg *registry.Registry) Plan {
	var plan Plan
	for _, c := range n.NamedChildren() {
		if c.Kind() != registry.KindFileRedirect {
			continue
		}
		if entry, ok := parseRedirect(c); ok {
			plan = append(plan, entry)
		}
	}
	return plan
}

// parseRedirect classifies a file_redirect node by the operator at the
// start of its textual slice. &>, <<, <<-, and n> forms are out of scope
// and are skipped, per §4.3.
func parseRedirect(n ast.Node) (Entry, bool) {
	text := strings.TrimLeft(n.Text(), " \t")
	path := n.ChildByField(registry.FieldDestination).Text()
	switch {
	case strings.HasPrefix(text, ">>"):
		return Entry{Action: Output, Path: path, Truncate: false}, true
	case strings.HasPrefix(text, ">"):
		return Entry{Action: Output, Path: path, Truncate: true}, true
	case strings.HasPrefix(text, "<"):
		return Entry{Action: Input, Path: path}, true
	default:
		return Entry{}, false
	}
}

// OpenError is the diagnostic of spec §7: "minibash: cannot open for
// <input|output>: <path>".
type OpenError struct {
	Direction string
	Path      string
	Err       error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("minibash: cannot open for %s: %s", e.Direction, e.Path)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Opened holds the files a Plan caused to be opened. Stdin/Stdout are the
// final descriptors the plan resolved to (later entries win); Close must be
// called once the command the plan was applied to has been waited on.
type Opened struct {
	Stdin  *os.File
	Stdout *os.File

	opened []*os.File
}

// Close closes every file this Plan opened, including ones a later entry
// overrode.
func (o *Opened) Close() {
	if o == nil {
		return
	}
	for _, f := range o.opened {
		f.Close()
	}
}

// Apply opens the files named by plan, in order, applying the "open each,
// later wins" rule described in §3. When it fails partway, Apply closes
// every file it had already opened and returns a nil *Opened alongside the
// error, mirroring §7's redirection-failure contract (the statement is not
// executed).
func Apply(plan Plan) (*Opened, error) {
	o := &Opened{}
	for _, e := range plan {
		switch e.Action {
		case Input:
			f, err := os.OpenFile(e.Path, os.O_RDONLY, 0)
			if err != nil {
				o.Close()
				return nil, &OpenError{Direction: "input", Path: e.Path, Err: err}
			}
			o.opened = append(o.opened, f)
			o.Stdin = f
		case Output:
			flag := os.O_WRONLY | os.O_CREATE
			if e.Truncate {
				flag |= os.O_TRUNC
			} else {
				flag |= os.O_APPEND
			}
			f, err := os.OpenFile(e.Path, flag, 0o666)
			if err != nil {
				o.Close()
				return nil, &OpenError{Direction: "output", Path: e.Path, Err: err}
			}
			o.opened = append(o.opened, f)
			o.Stdout = f
		}
	}
	return o, nil
}
