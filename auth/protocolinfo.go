// Package auth implements the PROTOCOLINFO/AUTHCHALLENGE grammar and the
// Authenticator that drives the handshake (NULL or SAFECOOKIE) over a
// Session, transitioning it to Authenticated on success.
package auth

import (
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
)

// Method is the closed AuthMethod enum. HashedPassword and Cookie are
// intentionally unsupported by the Authenticator (see DESIGN.md); they
// still parse as valid tokens in a ProtocolInfo reply.
type Method int

const (
	MethodNull Method = iota
	MethodHashedPassword
	MethodCookie
	MethodSafeCookie
)

var methodTags = map[string]Method{
	"NULL":           MethodNull,
	"HASHEDPASSWORD": MethodHashedPassword,
	"COOKIE":         MethodCookie,
	"SAFECOOKIE":     MethodSafeCookie,
}

func (m Method) String() string {
	for tag, v := range methodTags {
		if v == m {
			return tag
		}
	}
	return "UNKNOWN"
}

// ProtocolInfo is the daemon's PROTOCOLINFO reply: supported auth
// methods, an optional cookie file path, and the daemon's version
// string.
type ProtocolInfo struct {
	AuthMethods []Method
	CookieFile  *string
	Version     string
}

func (p ProtocolInfo) Has(m Method) bool {
	for _, x := range p.AuthMethods {
		if x == m {
			return true
		}
	}
	return false
}

// ParseProtocolInfo parses a PROTOCOLINFO reply payload:
// "AUTH METHODS=<m,...> [COOKIEFILE=\"...\"]\r\nVERSION Tor=\"...\"\r\n".
func ParseProtocolInfo(payload string) (ProtocolInfo, error) {
	var pi ProtocolInfo
	payload = strings.TrimSuffix(payload, "\r\n")
	lines := strings.Split(payload, "\r\n")

	var authLine, versionLine string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "AUTH "):
			authLine = l
		case strings.HasPrefix(l, "VERSION "):
			versionLine = l
		}
	}
	if authLine == "" {
		return pi, ctrlerr.NewParsing(payload, "protocolinfo: missing AUTH line")
	}
	if versionLine == "" {
		return pi, ctrlerr.NewParsing(payload, "protocolinfo: missing VERSION line")
	}

	rest := strings.TrimPrefix(authLine, "AUTH ")
	if !strings.HasPrefix(rest, "METHODS=") {
		return pi, ctrlerr.NewParsing(authLine, "protocolinfo: expected METHODS=")
	}
	rest = strings.TrimPrefix(rest, "METHODS=")

	methodsTok := rest
	var cookieTok string
	if idx := strings.Index(rest, " COOKIEFILE="); idx >= 0 {
		methodsTok = rest[:idx]
		cookieTok = strings.TrimPrefix(rest[idx+1:], "COOKIEFILE=")
	}

	for _, tok := range strings.Split(methodsTok, ",") {
		m, ok := methodTags[tok]
		if !ok {
			return pi, ctrlerr.NewParsing(authLine, "protocolinfo: unknown auth method "+tok)
		}
		pi.AuthMethods = append(pi.AuthMethods, m)
	}
	if len(pi.AuthMethods) == 0 {
		return pi, ctrlerr.NewParsing(authLine, "protocolinfo: AUTH METHODS must list at least one method")
	}

	if cookieTok != "" {
		path, err := grammar.QuotedString(cookieTok)
		if err != nil {
			return pi, err
		}
		pi.CookieFile = &path
	}

	vRest := strings.TrimPrefix(versionLine, "VERSION ")
	if !strings.HasPrefix(vRest, "Tor=") {
		return pi, ctrlerr.NewParsing(versionLine, "protocolinfo: expected VERSION Tor=")
	}
	version, err := grammar.QuotedString(strings.TrimPrefix(vRest, "Tor="))
	if err != nil {
		return pi, err
	}
	pi.Version = version

	return pi, nil
}
