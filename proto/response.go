package proto

import (
	"bufio"
	"io"

	"github.com/cvsouth/torctl/ctrlerr"
)

// Response is one logical reply: a single status code shared by every
// line, and the payload formed by joining each line's payload with a
// trailing CRLF (per §4.2).
type Response struct {
	Code int
	Data string
}

// ReadResponse reads frames from r until an end-sigil ('\s') line,
// enforcing that every frame shares the first frame's status code.
// A code mismatch across continuation lines is a fatal Protocol error,
// never a panic; the caller (Session) treats it as terminal.
func ReadResponse(r *bufio.Reader) (Response, error) {
	var resp Response
	first := true

	for {
		f, err := readFrame(r)
		if err != nil {
			return Response{}, err
		}
		if first {
			resp.Code = f.code
			first = false
		} else if f.code != resp.Code {
			return Response{}, &ctrlerr.Protocol{
				Msg: "status code changed within one response",
			}
		}
		resp.Data += f.payload + "\r\n"
		if f.sig == sigilEnd {
			return resp, nil
		}
	}
}

// NewReader wraps an io.Reader with the buffering ReadResponse expects.
func NewReader(r io.Reader) *bufio.Reader {
	return bufio.NewReader(r)
}
