package runner

import "io"

func readAll(r io.Reader) []byte {
	buf, _ := io.ReadAll(r)
	return buf
}
