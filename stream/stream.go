// Package stream implements the Stream record and its StreamStatus enum:
// an application-layer connection multiplexed over a circuit, as
// reported by GETINFO stream-status.
package stream

import (
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
)

// Status is the closed 10-value StreamStatus enum.
type Status int

const (
	StatusNew Status = iota
	StatusNewResolve
	StatusRemap
	StatusSentConnect
	StatusSentResolve
	StatusSucceeded
	StatusFailed
	StatusClosed
	StatusDetached
	StatusControllerWait
)

var statusTags = map[string]Status{
	"NEW":             StatusNew,
	"NEWRESOLVE":      StatusNewResolve,
	"REMAP":           StatusRemap,
	"SENTCONNECT":     StatusSentConnect,
	"SENTRESOLVE":     StatusSentResolve,
	"SUCCEEDED":       StatusSucceeded,
	"FAILED":          StatusFailed,
	"CLOSED":          StatusClosed,
	"DETACHED":        StatusDetached,
	"CONTROLLER_WAIT": StatusControllerWait,
}

func (s Status) String() string {
	for tag, v := range statusTags {
		if v == s {
			return tag
		}
	}
	return "UNKNOWN"
}

func parseStatus(s string) (Status, error) {
	if v, ok := statusTags[s]; ok {
		return v, nil
	}
	return 0, ctrlerr.NewParsing(s, "unknown stream status")
}

// Stream is one application-layer stream multiplexed over a circuit.
// CircuitID equals grammar.UnattachedCircuitID ("0") when the stream has
// not yet been attached.
type Stream struct {
	ID        grammar.StreamID
	Status    Status
	CircuitID grammar.CircuitID
	Target    grammar.Target
}

// IsAttached reports whether the stream has been attached to a circuit,
// i.e. CircuitID is not the grammar.UnattachedCircuitID sentinel.
func (s Stream) IsAttached() bool {
	return s.CircuitID != grammar.UnattachedCircuitID
}

// Parse parses one "<id> <status> <circuit_id> <target>" line. A leading
// CRLF is tolerated, matching the daemon's circuit-status quirk.
func Parse(line string) (Stream, error) {
	line = strings.TrimPrefix(line, "\r\n")
	fields := strings.SplitN(strings.TrimSpace(line), " ", 4)
	if len(fields) != 4 {
		return Stream{}, ctrlerr.NewParsing(line, "stream: expected 4 fields (id status circuit_id target)")
	}

	id, err := grammar.ParseStreamID(fields[0])
	if err != nil {
		return Stream{}, err
	}
	status, err := parseStatus(fields[1])
	if err != nil {
		return Stream{}, err
	}
	circID, err := grammar.ParseCircuitID(fields[2])
	if err != nil {
		return Stream{}, err
	}
	target, err := grammar.ParseTarget(fields[3])
	if err != nil {
		return Stream{}, err
	}

	return Stream{ID: id, Status: status, CircuitID: circID, Target: target}, nil
}

// ParseAll parses zero or more Stream lines from a stream-status-shaped
// payload. Never errors on an empty payload.
func ParseAll(payload string) ([]Stream, error) {
	payload = strings.TrimPrefix(payload, "\r\n")
	payload = strings.TrimSuffix(payload, "\r\n")
	if payload == "" {
		return nil, nil
	}
	var out []Stream
	for _, line := range strings.Split(payload, "\r\n") {
		if line == "" {
			continue
		}
		s, err := Parse(line)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
