// Package session implements the control protocol's Session: a single
// serialized command/response channel over a Transport, with
// asynchronous event (650) frames demultiplexed into per-kind FIFO
// queues so they never corrupt a command's reply.
package session

import (
	"bufio"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/proto"
)

// State is the Session's position in Open(Unauthenticated) ->
// Open(Authenticated) -> Closed.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateClosed
)

// Session owns the transport and framer, and demultiplexes asynchronous
// events out of the command reply stream. Commands are strictly serial:
// mu guards the single-in-flight invariant across send+receive.
type Session struct {
	mu     sync.Mutex
	conn   net.Conn
	r      *bufio.Reader
	state  State
	logger *slog.Logger

	events     map[string][]string
	eventOrder []string
}

// New wraps an already-connected transport. logger defaults to
// slog.Default() when nil.
func New(conn net.Conn, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conn:   conn,
		r:      proto.NewReader(conn),
		state:  StateUnauthenticated,
		logger: logger,
		events: make(map[string][]string),
	}
}

// State reports the Session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// MarkAuthenticated transitions the Session to Authenticated. Called by
// the Authenticator once the handshake succeeds.
func (s *Session) MarkAuthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnauthenticated {
		s.state = StateAuthenticated
	}
}

// Close marks the Session Closed and releases the transport. Any
// in-flight or subsequent command fails fast afterward.
func (s *Session) Close() error {
	// Close the transport before taking mu: an in-flight command holds mu
	// across its blocking read, and closing the conn makes that read fail.
	err := s.conn.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	return err
}

func (s *Session) fail(err error) error {
	s.state = StateClosed
	return err
}

// SendCommand writes text (appending CRLF if missing) and returns the
// first non-event Response, buffering any 650 event frames it observes
// along the way into their subscribed per-kind queues.
func (s *Session) SendCommand(text string) (proto.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return proto.Response{}, &ctrlerr.Io{Op: "send command", Err: errClosed}
	}

	if !strings.HasSuffix(text, "\r\n") {
		text += "\r\n"
	}
	if _, err := s.conn.Write([]byte(text)); err != nil {
		return proto.Response{}, s.fail(&ctrlerr.Io{Op: "write command", Err: err})
	}

	for {
		resp, err := proto.ReadResponse(s.r)
		if err != nil {
			return proto.Response{}, s.fail(err)
		}
		if resp.Code == 650 {
			s.bufferEvent(resp.Data)
			continue
		}
		return resp, nil
	}
}

// bufferEvent splits an event payload at the first whitespace into
// (kind, rest) and appends rest to kind's queue if subscribed, else
// drops it with a log line. Never surfaced to the command reply path.
func (s *Session) bufferEvent(payload string) {
	payload = strings.TrimSuffix(payload, "\r\n")
	idx := strings.IndexAny(payload, " \t")
	var kind, rest string
	if idx < 0 {
		kind, rest = payload, ""
	} else {
		kind, rest = payload[:idx], payload[idx+1:]
	}
	if _, ok := s.events[kind]; ok {
		s.events[kind] = append(s.events[kind], rest)
		return
	}
	s.logger.Debug("dropping event for unsubscribed kind", "kind", kind)
}

// GetInfo sends GETINFO key, requires 250, and parses the single
// key=value payload, checking the returned key matches.
func (s *Session) GetInfo(key string) (string, error) {
	resp, err := s.SendCommand("GETINFO " + key)
	if err != nil {
		return "", err
	}
	if resp.Code != 250 {
		return "", &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	// resp.Data is "key=value...\r\n" possibly followed by a dotted
	// multi-line body, followed by the final end-frame's own payload
	// ("OK" on success); only the header up to the first CRLF is checked
	// against key, and the trailing "OK" sentinel is stripped before the
	// rest (if any) is returned as part of value.
	data := strings.TrimSuffix(resp.Data, "OK\r\n")
	data = strings.TrimSuffix(data, "\r\n")
	header := data
	var tail string
	if idx := strings.Index(data, "\r\n"); idx >= 0 {
		header = data[:idx]
		tail = data[idx+2:]
	}
	k, v, ok := splitFirst(header, '=')
	if !ok || k != key {
		return "", &ctrlerr.Protocol{Msg: "GETINFO reply key mismatch: expected " + key + ", got " + header}
	}
	if tail != "" {
		return v + "\r\n" + tail, nil
	}
	return v, nil
}

func splitFirst(s string, sep byte) (string, string, bool) {
	idx := strings.IndexByte(s, sep)
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// SetEvents sends SETEVENTS kinds, and on success records each kind in
// the subscription map (preserving any existing queue for a kind already
// subscribed). Repeated calls replace the daemon-side subscription set;
// local queues are never discarded.
func (s *Session) SetEvents(kinds []string) error {
	resp, err := s.SendCommand("SETEVENTS " + strings.Join(kinds, " "))
	if err != nil {
		return err
	}
	if resp.Code != 250 {
		return &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range kinds {
		if _, ok := s.events[k]; !ok {
			s.events[k] = nil
			s.eventOrder = append(s.eventOrder, k)
		}
	}
	return nil
}

// ConsumeEvent pops one event from the first non-empty queue in
// registration order. Non-blocking; ok is false when every queue is
// empty.
func (s *Session) ConsumeEvent() (kind, payload string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.eventOrder {
		q := s.events[k]
		if len(q) > 0 {
			s.events[k] = q[1:]
			return k, q[0], true
		}
	}
	return "", "", false
}

var errClosed = sessionClosedError{}

type sessionClosedError struct{}

func (sessionClosedError) Error() string { return "session is closed" }
