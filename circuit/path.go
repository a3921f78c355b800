package circuit

import (
	"encoding/hex"
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
	"github.com/cvsouth/torctl/router"
)

// Step is one hop on a circuit path: a relay fingerprint and an optional
// nickname, as in "$8737307DE84C2621E6399E99123967A9590297F2~Tor0x800".
type Step struct {
	Fingerprint [20]byte
	Nickname    string // empty when absent
}

func (s Step) String() string {
	out := "$" + strings.ToUpper(hex.EncodeToString(s.Fingerprint[:]))
	if s.Nickname != "" {
		out += "~" + s.Nickname
	}
	return out
}

func parseStep(s string) (Step, error) {
	if !strings.HasPrefix(s, "$") {
		return Step{}, ctrlerr.NewParsing(s, "step: expected leading '$'")
	}
	rest := s[1:]
	var hexPart, nick string
	if idx := strings.IndexAny(rest, "~="); idx >= 0 {
		hexPart, nick = rest[:idx], rest[idx+1:]
	} else {
		hexPart = rest
	}
	fp, err := grammar.DecodeHexFixed(hexPart, 20)
	if err != nil {
		return Step{}, err
	}
	var step Step
	copy(step.Fingerprint[:], fp)
	step.Nickname = nick
	return step, nil
}

// Path is an ordered sequence of Steps, comma-joined on the wire. A Path
// with zero Steps is valid (an empty-string input parses to an empty
// Path); a Path whose wire form starts with a stray ',' is rejected.
type Path []Step

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, ",") {
		return nil, ctrlerr.NewParsing(s, "path: leading ',' with no preceding step")
	}
	var out Path
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			return nil, ctrlerr.NewParsing(s, "path: empty step between commas")
		}
		step, err := parseStep(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

// PathFromRouters builds a Path from a sequence of onion routers,
// formatting each as a Step. This saves callers from hand-building Step
// values out of an OnionRouter's Identity/Nickname fields; it is a plain
// record-list to Path formatter, not a path-selection algorithm: callers
// choose the routers.
func PathFromRouters(routers ...router.OnionRouter) Path {
	out := make(Path, len(routers))
	for i, r := range routers {
		out[i] = Step{Fingerprint: r.Identity, Nickname: r.Nickname}
	}
	return out
}
