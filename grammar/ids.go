package grammar

import (
	"github.com/cvsouth/torctl/ctrlerr"
)

// CircuitID and StreamID are opaque alphanumeric identifiers, 1-16
// characters, compared and hashed as plain strings. The sentinel "0"
// denotes "unattached" in stream contexts (see Stream.CircuitID).
type CircuitID string
type StreamID string

// UnattachedCircuitID is the sentinel Stream.CircuitID value meaning the
// stream has not yet been attached to a circuit.
const UnattachedCircuitID CircuitID = "0"

func validIdentifier(s string) bool {
	if len(s) < 1 || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !isAlphaNum(r) {
			return false
		}
	}
	return true
}

func isAlphaNum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ParseCircuitID validates and wraps a circuit identifier token.
func ParseCircuitID(s string) (CircuitID, error) {
	if !validIdentifier(s) {
		return "", ctrlerr.NewParsing(s, "circuit id: expected 1-16 alphanumeric characters")
	}
	return CircuitID(s), nil
}

// ParseStreamID validates and wraps a stream identifier token.
func ParseStreamID(s string) (StreamID, error) {
	if !validIdentifier(s) {
		return "", ctrlerr.NewParsing(s, "stream id: expected 1-16 alphanumeric characters")
	}
	return StreamID(s), nil
}
