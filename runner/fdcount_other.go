//go:build !unix

package runner

import "errors"

func openFDCount() (int, error) {
	return 0, errors.New("runner: openFDCount unsupported on this platform")
}
