package auth

import (
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
)

// ChallengeResponse is the daemon's AUTHCHALLENGE reply.
type ChallengeResponse struct {
	ServerHash  [32]byte
	ServerNonce [32]byte
}

// ParseChallengeResponse parses
// "AUTHCHALLENGE SERVERHASH=<64 hex> SERVERNONCE=<64 hex>". Any non-hex
// character in either field is rejected as a decode error.
func ParseChallengeResponse(payload string) (ChallengeResponse, error) {
	var cr ChallengeResponse
	line := strings.TrimSuffix(payload, "\r\n")
	rest := strings.TrimPrefix(line, "AUTHCHALLENGE ")
	if rest == line {
		return cr, ctrlerr.NewParsing(payload, "authchallenge: expected leading 'AUTHCHALLENGE '")
	}

	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return cr, ctrlerr.NewParsing(payload, "authchallenge: expected SERVERHASH and SERVERNONCE fields")
	}

	hashTok, ok := strings.CutPrefix(fields[0], "SERVERHASH=")
	if !ok {
		return cr, ctrlerr.NewParsing(payload, "authchallenge: expected SERVERHASH=")
	}
	nonceTok, ok := strings.CutPrefix(fields[1], "SERVERNONCE=")
	if !ok {
		return cr, ctrlerr.NewParsing(payload, "authchallenge: expected SERVERNONCE=")
	}

	hash, err := grammar.DecodeHexFixed(hashTok, 32)
	if err != nil {
		return cr, err
	}
	nonce, err := grammar.DecodeHexFixed(nonceTok, 32)
	if err != nil {
		return cr, err
	}
	copy(cr.ServerHash[:], hash)
	copy(cr.ServerNonce[:], nonce)
	return cr, nil
}
