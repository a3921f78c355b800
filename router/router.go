// Package router implements the OnionRouter record and its grammar: the
// 'r'/'a'/'s'/'w' line family the daemon emits for ns/id/<id> and
// ns/all consensus queries.
package router

import (
	"net"
	"strconv"
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
)

// OnionRouter is a relay advertised in the daemon's consensus view.
type OnionRouter struct {
	Nickname       string
	Identity       [20]byte
	Digest         [20]byte
	Publication    grammar.Time
	Target         grammar.Target
	DirectoryPort  *uint16 // nil when the wire value was 0 ("None")
	AdvertiseIPv6  *Advertised
	Flags          Flags
	Bandwidth      *uint32
}

// Advertised is the optional IPv6 address/port pair from an 'a' line.
type Advertised struct {
	Addr net.IP
	Port uint16
}

// Parse parses one OnionRouter from its 'r'/'a'/'s'/'w' line block, as
// returned by GETINFO ns/id/<id>. Exactly one router is expected; a
// payload holding zero or several records, or lines outside a record
// block, is a Parsing error.
func Parse(payload string) (OnionRouter, error) {
	routers, err := ParseAll(payload)
	if err != nil {
		return OnionRouter{}, err
	}
	if len(routers) != 1 {
		return OnionRouter{}, ctrlerr.NewParsing(payload, "expected exactly one onion router record")
	}
	return routers[0], nil
}

// ParseAll parses zero or more OnionRouter records from a ns/all-shaped
// payload: a sequence of 'r' line blocks, each followed by an optional
// 'a' line, a mandatory 's' line, and an optional 'w' line.
func ParseAll(payload string) ([]OnionRouter, error) {
	lines := splitLines(payload)
	var out []OnionRouter
	i := 0
	for i < len(lines) {
		if lines[i] == "" {
			i++
			continue
		}
		if !strings.HasPrefix(lines[i], "r ") {
			return nil, ctrlerr.NewParsing(lines[i], "expected 'r' line to start an onion router record")
		}
		or, next, err := parseOne(lines, i)
		if err != nil {
			return nil, err
		}
		out = append(out, or)
		i = next
	}
	return out, nil
}

func splitLines(payload string) []string {
	payload = strings.TrimSuffix(payload, "\r\n")
	if payload == "" {
		return nil
	}
	return strings.Split(payload, "\r\n")
}

func parseOne(lines []string, i int) (OnionRouter, int, error) {
	var or OnionRouter

	fields := strings.Fields(strings.TrimPrefix(lines[i], "r "))
	if len(fields) != 8 {
		return or, 0, ctrlerr.NewParsing(lines[i], "'r' line: expected 8 fields, got "+strconv.Itoa(len(fields)))
	}
	nick, idB64, digB64 := fields[0], fields[1], fields[2]
	date, timeOfDay, ip := fields[3], fields[4], fields[5]
	orPortStr, dirPortStr := fields[6], fields[7]

	identity, err := grammar.DecodeBase64Fixed(idB64, 20)
	if err != nil {
		return or, 0, err
	}
	digest, err := grammar.DecodeBase64Fixed(digB64, 20)
	if err != nil {
		return or, 0, err
	}
	pub, err := grammar.ParseTime(date + " " + timeOfDay)
	if err != nil {
		return or, 0, err
	}
	orPort, err := strconv.ParseUint(orPortStr, 10, 16)
	if err != nil {
		return or, 0, ctrlerr.NewParsing(lines[i], "'r' line: invalid or port: "+err.Error())
	}
	dirPort, err := strconv.ParseUint(dirPortStr, 10, 16)
	if err != nil {
		return or, 0, ctrlerr.NewParsing(lines[i], "'r' line: invalid dir port: "+err.Error())
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return or, 0, ctrlerr.NewParsing(lines[i], "'r' line: invalid IP address: "+ip)
	}

	or.Nickname = nick
	copy(or.Identity[:], identity)
	copy(or.Digest[:], digest)
	or.Publication = pub
	or.Target = grammar.Target{Kind: grammar.AddrKindIP, IP: parsedIP, Port: uint16(orPort)}
	if dirPort != 0 {
		p := uint16(dirPort)
		or.DirectoryPort = &p
	}

	j := i + 1
	if j < len(lines) && strings.HasPrefix(lines[j], "a ") {
		adv, err := parseAdvertised(lines[j])
		if err != nil {
			return or, 0, err
		}
		or.AdvertiseIPv6 = &adv
		j++
	}

	if j >= len(lines) || !strings.HasPrefix(lines[j], "s ") {
		return or, 0, ctrlerr.NewParsing(lines[i], "missing mandatory 's' line for router "+nick)
	}
	flags, err := ParseFlags(strings.TrimPrefix(lines[j], "s "))
	if err != nil {
		return or, 0, err
	}
	or.Flags = flags
	j++

	if j < len(lines) && strings.HasPrefix(lines[j], "w ") {
		bw, err := parseBandwidth(lines[j])
		if err != nil {
			return or, 0, err
		}
		or.Bandwidth = &bw
		j++
	}

	return or, j, nil
}

func parseAdvertised(line string) (Advertised, error) {
	rest := strings.TrimPrefix(line, "a ")
	t, err := grammar.ParseTarget(rest)
	if err != nil {
		return Advertised{}, err
	}
	if t.Kind != grammar.AddrKindIP {
		return Advertised{}, ctrlerr.NewParsing(line, "'a' line: expected an IP literal")
	}
	return Advertised{Addr: t.IP, Port: t.Port}, nil
}

func parseBandwidth(line string) (uint32, error) {
	rest := strings.TrimPrefix(line, "w ")
	for _, kv := range strings.Fields(rest) {
		k, v, ok := grammar.SplitKeyValue(kv)
		if !ok || k != "Bandwidth" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, ctrlerr.NewParsing(line, "'w' line: invalid Bandwidth: "+err.Error())
		}
		return uint32(n), nil
	}
	return 0, ctrlerr.NewParsing(line, "'w' line: missing Bandwidth key")
}
