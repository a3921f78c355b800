// Package proto implements the line-oriented framing of the control
// protocol: reading CRLF-terminated lines off a buffered reader and
// assembling them into logical Responses per the three continuation
// sigils ('-', '+', ' ').
package proto

import (
	"bufio"
	"strconv"

	"github.com/cvsouth/torctl/ctrlerr"
)

// sigil discriminates how a single protocol line continues (or ends) the
// logical Response it belongs to.
type sigil byte

const (
	sigilMore     sigil = '-' // intermediate, single-line payload
	sigilDotted   sigil = '+' // intermediate, dot-terminated multi-line body
	sigilEnd      sigil = ' ' // end of reply
)

// frame is one parsed protocol line (plus, for a dotted frame, its
// embedded multi-line body already folded in).
type frame struct {
	code    int
	sig     sigil
	payload string
}

// readFrame reads one logical frame from r: a status line, and for a '+'
// sigil, the dot-terminated body that follows it. Returns a
// ctrlerr.Protocol on malformed lines (including a line ended by a bare
// LF) and a ctrlerr.Io when the read fails or hits EOF before a line's LF.
func readFrame(r *bufio.Reader) (frame, error) {
	line, err := readCRLFLine(r)
	if err != nil {
		return frame{}, err
	}
	if len(line) < 4 {
		return frame{}, &ctrlerr.Protocol{Msg: "line too short to contain a status code: " + quoteForLog(line)}
	}
	codeStr := line[:3]
	code, convErr := strconv.Atoi(codeStr)
	if convErr != nil || code < 100 || code > 699 {
		return frame{}, &ctrlerr.Protocol{Msg: "invalid status code: " + quoteForLog(codeStr)}
	}
	sig := sigil(line[3])
	payload := line[4:]

	switch sig {
	case sigilMore, sigilEnd:
		return frame{code: code, sig: sig, payload: payload}, nil
	case sigilDotted:
		body, err := readDottedBody(r)
		if err != nil {
			return frame{}, err
		}
		return frame{code: code, sig: sig, payload: payload + "\r\n" + body}, nil
	default:
		return frame{}, &ctrlerr.Protocol{Msg: "unknown continuation sigil: " + string(sig)}
	}
}

// readDottedBody reads raw lines until one equal to "." (the terminator),
// joining the preceding lines with CRLF. The terminator line itself is
// consumed but not included in the returned body.
func readDottedBody(r *bufio.Reader) (string, error) {
	var lines []string
	for {
		line, err := readCRLFLine(r)
		if err != nil {
			return "", err
		}
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	joined := ""
	for i, l := range lines {
		if i > 0 {
			joined += "\r\n"
		}
		joined += l
	}
	return joined, nil
}

// readCRLFLine reads bytes up to and including CRLF and returns the line
// with the CRLF stripped. The daemon's framing is defined strictly on
// CRLF; a bare LF is not treated as a line terminator.
func readCRLFLine(r *bufio.Reader) (string, error) {
	raw, err := r.ReadString('\n')
	if err != nil {
		return "", &ctrlerr.Io{Op: "read line", Err: err}
	}
	if len(raw) < 2 || raw[len(raw)-2] != '\r' {
		return "", &ctrlerr.Protocol{Msg: "line not terminated by CRLF: " + quoteForLog(raw)}
	}
	return raw[:len(raw)-2], nil
}

func quoteForLog(s string) string {
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return strconv.Quote(s)
}
