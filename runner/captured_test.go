package runner

import (
	"context"
	"testing"

	"github.com/smacker/go-tree-sitter/bash"
)

func TestRunCapturedReturnsStdout(t *testing.T) {
	e := New(bash.GetLanguage())
	defer e.Close()

	out, err := e.RunCaptured("echo from sub-evaluator")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "from sub-evaluator\n" {
		t.Errorf("RunCaptured output = %q, want %q", out, "from sub-evaluator\n")
	}
}

func TestRunCapturedIsReentrant(t *testing.T) {
	e := New(bash.GetLanguage())
	defer e.Close()

	if err := e.Run(context.Background(), []byte("echo outer $(echo nested)")); err != nil {
		t.Fatal(err)
	}
}

// TestConcurrentCommandSubstitutionsInAPipeline guards against pipeline
// stages racing on a single shared *sitter.Parser: per §5 all stages run
// concurrently, and here both stages perform their own $(...) substitution
// via RunCaptured at the same time.
func TestConcurrentCommandSubstitutionsInAPipeline(t *testing.T) {
	got, status := runScript(t, "echo $(echo left) | echo $(echo right)")
	if got != "right\n" {
		t.Errorf("stdout = %q, want %q (the pipeline's own last stage)", got, "right\n")
	}
	if status != 0 {
		t.Errorf("last_status = %d, want 0", status)
	}
}
