package router

import (
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
)

// Flag is one bit of the closed OnionRouterFlag enum.
type Flag uint32

const (
	FlagAuthority Flag = 1 << iota
	FlagBadExit
	FlagExit
	FlagFast
	FlagGuard
	FlagHSDir
	FlagNoEdConsensus
	FlagStable
	FlagStaleDesc
	FlagRunning
	FlagValid
	FlagV2Dir
)

var flagTokens = []struct {
	tok string
	bit Flag
}{
	{"Authority", FlagAuthority},
	{"BadExit", FlagBadExit},
	{"Exit", FlagExit},
	{"Fast", FlagFast},
	{"Guard", FlagGuard},
	{"HSDir", FlagHSDir},
	{"NoEdConsensus", FlagNoEdConsensus},
	{"Stable", FlagStable},
	{"StaleDesc", FlagStaleDesc},
	{"Running", FlagRunning},
	{"Valid", FlagValid},
	{"V2Dir", FlagV2Dir},
}

func flagByToken(tok string) (Flag, bool) {
	for _, ft := range flagTokens {
		if ft.tok == tok {
			return ft.bit, true
		}
	}
	return 0, false
}

func (f Flag) String() string {
	for _, ft := range flagTokens {
		if ft.bit == f {
			return ft.tok
		}
	}
	return "Unknown"
}

// Flags is a 32-bit bitmask over the 12-value OnionRouterFlag enum.
type Flags uint32

func (f Flags) Set(bit Flag) Flags    { return f | Flags(bit) }
func (f Flags) Clear(bit Flag) Flags  { return f &^ Flags(bit) }
func (f Flags) IsSet(bit Flag) bool   { return f&Flags(bit) != 0 }
func (f Flags) Or(other Flags) Flags  { return f | other }
func (f Flags) And(other Flags) Flags { return f & other }

// String joins the set flags with '|', in enum declaration order.
func (f Flags) String() string {
	var parts []string
	for _, ft := range flagTokens {
		if f.IsSet(ft.bit) {
			parts = append(parts, ft.tok)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFlags parses the space-separated flag tokens of an 's' line.
// Per the strict path mandated until a lenient mode is wired (see
// DESIGN.md), an unrecognized token is a hard parse error.
func ParseFlags(s string) (Flags, error) {
	var fl Flags
	for _, tok := range strings.Fields(s) {
		bit, ok := flagByToken(tok)
		if !ok {
			return 0, ctrlerr.NewParsing(s, "unknown onion router flag: "+tok)
		}
		fl = fl.Set(bit)
	}
	return fl, nil
}
