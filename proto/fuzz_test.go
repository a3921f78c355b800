package proto

import (
	"bufio"
	"strings"
	"testing"
)

func FuzzReadResponse(f *testing.F) {
	f.Add("250 OK\r\n")
	f.Add("250-abc\r\n250-def\r\n250 ghi\r\n")
	f.Add("250+data\r\nbody\r\n.\r\n250 OK\r\n")
	f.Add("")
	f.Add("not a response")

	f.Fuzz(func(t *testing.T, input string) {
		r := bufio.NewReader(strings.NewReader(input))
		// Must never panic regardless of input shape.
		_, _ = ReadResponse(r)
	})
}
