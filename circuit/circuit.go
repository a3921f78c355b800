package circuit

import (
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
)

// Circuit is the daemon's view of one circuit, as returned by
// GETINFO circuit-status (see Controller.Circuits).
type Circuit struct {
	ID         grammar.CircuitID
	Status     Status
	Path       Path
	BuildFlags BuildFlags

	Purpose        *Purpose
	HsState        *HsState
	RendQuery      *HsAddress
	TimeCreated    *grammar.Time
	Reason         *Reason
	SocksUsername  *string
	SocksPassword  *string
}

var optionalKeyOrder = []string{
	"BUILD_FLAGS", "PURPOSE", "HS_STATE", "REND_QUERY",
	"TIME_CREATED", "REASON", "SOCKS_USERNAME", "SOCKS_PASSWORD",
}

// Parse parses one Circuit line. A leading CRLF is tolerated (the daemon
// sometimes emits one as the first byte of a circuit-status reply).
func Parse(line string) (Circuit, error) {
	line = strings.TrimPrefix(line, "\r\n")
	line = strings.TrimRight(line, "\r\n")

	fields := splitRespectingQuotes(line)
	if len(fields) < 2 {
		return Circuit{}, ctrlerr.NewParsing(line, "circuit: expected at least id and status")
	}

	id, err := grammar.ParseCircuitID(fields[0])
	if err != nil {
		return Circuit{}, err
	}
	status, err := parseStatus(fields[1])
	if err != nil {
		return Circuit{}, err
	}

	c := Circuit{ID: id, Status: status}
	rest := fields[2:]

	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		p, err := ParsePath(rest[0])
		if err != nil {
			return Circuit{}, err
		}
		c.Path = p
		rest = rest[1:]
	}

	nextAllowed := 0
	for _, tok := range rest {
		key, value, ok := splitQuotedAwareKV(tok)
		if !ok {
			return Circuit{}, ctrlerr.NewParsing(tok, "circuit: expected KEY=VALUE")
		}
		idx := -1
		for i := nextAllowed; i < len(optionalKeyOrder); i++ {
			if optionalKeyOrder[i] == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Circuit{}, ctrlerr.NewParsing(tok, "circuit: unexpected or duplicate key "+key)
		}
		if err := c.setOptional(key, value); err != nil {
			return Circuit{}, err
		}
		nextAllowed = idx + 1
	}

	return c, nil
}

func (c *Circuit) setOptional(key, value string) error {
	switch key {
	case "BUILD_FLAGS":
		fl, err := parseBuildFlags(value)
		if err != nil {
			return err
		}
		c.BuildFlags = fl
	case "PURPOSE":
		p, err := parsePurpose(value)
		if err != nil {
			return err
		}
		c.Purpose = &p
	case "HS_STATE":
		s, err := parseHsState(value)
		if err != nil {
			return err
		}
		c.HsState = &s
	case "REND_QUERY":
		a, err := ParseHsAddress(value)
		if err != nil {
			return err
		}
		c.RendQuery = &a
	case "TIME_CREATED":
		t, err := grammar.ParseTime(value)
		if err != nil {
			return err
		}
		c.TimeCreated = &t
	case "REASON":
		r, err := parseReason(value)
		if err != nil {
			return err
		}
		c.Reason = &r
	case "SOCKS_USERNAME":
		u, err := grammar.QuotedString(value)
		if err != nil {
			return err
		}
		c.SocksUsername = &u
	case "SOCKS_PASSWORD":
		p, err := grammar.QuotedString(value)
		if err != nil {
			return err
		}
		c.SocksPassword = &p
	}
	return nil
}

// ParseAll parses zero or more Circuit lines from a circuit-status-shaped
// payload, one per line. Never errors on an empty payload.
func ParseAll(payload string) ([]Circuit, error) {
	payload = strings.TrimPrefix(payload, "\r\n")
	payload = strings.TrimSuffix(payload, "\r\n")
	if payload == "" {
		return nil, nil
	}
	var out []Circuit
	for _, line := range strings.Split(payload, "\r\n") {
		if line == "" {
			continue
		}
		c, err := Parse(line)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// splitRespectingQuotes splits on runs of whitespace, but never inside a
// double-quoted span (SOCKS_USERNAME/SOCKS_PASSWORD values may contain
// escaped quotes, never unescaped spaces outside of them in practice, but
// this keeps the quoted value intact as one field regardless).
func splitRespectingQuotes(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' && (i == 0 || s[i-1] != '\\'):
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case (c == ' ' || c == '\t') && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}

func splitQuotedAwareKV(tok string) (key, value string, ok bool) {
	idx := strings.IndexByte(tok, '=')
	if idx < 0 {
		return "", "", false
	}
	return tok[:idx], tok[idx+1:], true
}
