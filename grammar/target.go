package grammar

import (
	"net"
	"strconv"
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
)

// AddrKind discriminates Target's tagged union: either a hostname or a
// literal IP address (v4 or v6).
type AddrKind int

const (
	AddrKindHost AddrKind = iota
	AddrKindIP
)

// Target is (addr, port) where addr is a hostname or an IP literal.
type Target struct {
	Kind AddrKind
	Host string // set iff Kind == AddrKindHost
	IP   net.IP // set iff Kind == AddrKindIP
	Port uint16
}

// String renders the canonical wire form: HOST:PORT, V4:PORT, or
// [V6]:PORT.
func (t Target) String() string {
	port := strconv.FormatUint(uint64(t.Port), 10)
	if t.Kind == AddrKindHost {
		return t.Host + ":" + port
	}
	if t.IP.To4() != nil {
		return t.IP.String() + ":" + port
	}
	return "[" + t.IP.String() + "]:" + port
}

// ParseTarget parses HOST:PORT, V4:PORT, or [V6]:PORT. On input, either ':'
// or whitespace separates the address from the port.
func ParseTarget(s string) (Target, error) {
	var zero Target
	s = strings.TrimSpace(s)
	if s == "" {
		return zero, ctrlerr.NewParsing(s, "target: empty input")
	}

	var addrPart, portPart string
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return zero, ctrlerr.NewParsing(s, "target: unterminated '[' in IPv6 literal")
		}
		addrPart = s[1:end]
		rest := strings.TrimLeft(s[end+1:], " \t")
		rest = strings.TrimPrefix(rest, ":")
		portPart = strings.TrimSpace(rest)
	} else {
		idx := strings.IndexAny(s, " \t:")
		if idx < 0 {
			return zero, ctrlerr.NewParsing(s, "target: missing address/port separator")
		}
		addrPart = s[:idx]
		portPart = strings.TrimSpace(s[idx+1:])
	}

	if addrPart == "" || portPart == "" {
		return zero, ctrlerr.NewParsing(s, "target: empty address or port")
	}

	port, err := strconv.ParseUint(portPart, 10, 16)
	if err != nil {
		return zero, ctrlerr.NewParsing(s, "target: invalid port: "+err.Error())
	}

	if ip := net.ParseIP(addrPart); ip != nil {
		return Target{Kind: AddrKindIP, IP: ip, Port: uint16(port)}, nil
	}
	return Target{Kind: AddrKindHost, Host: addrPart, Port: uint16(port)}, nil
}
