package runner

import (
	"fmt"
	"io"
	"strings"
)

// writeEcho implements the echo builtin per §4.4.4: the expanded arguments
// joined by a single space, followed by a newline, no flags recognized.
// echo always yields a zero exit status, so its caller never inspects a
// return value here.
func writeEcho(w io.Writer, args []string) {
	fmt.Fprintln(w, strings.Join(args, " "))
}
