// Package control implements the Controller facade: a thin typed layer
// over an authenticated Session exposing the daemon's circuit/stream/
// router inspection and mutation commands.
package control

import (
	"log/slog"
	"strings"

	"github.com/cvsouth/torctl/auth"
	"github.com/cvsouth/torctl/circuit"
	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/grammar"
	"github.com/cvsouth/torctl/router"
	"github.com/cvsouth/torctl/session"
	"github.com/cvsouth/torctl/stream"
	"github.com/cvsouth/torctl/transport"
)

// Controller is a thin typed facade over an authenticated Session.
type Controller struct {
	Session *session.Session
	logger  *slog.Logger
}

// Dial opens a transport to endpoint, wraps it in a Session, and runs the
// Authenticator's handshake. Returns a Controller ready for typed calls.
func Dial(endpoint string, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := transport.Dial(endpoint)
	if err != nil {
		return nil, err
	}
	sess := session.New(conn, logger)
	if _, err := auth.Authenticate(sess, logger); err != nil {
		sess.Close()
		return nil, err
	}
	return New(sess, logger), nil
}

// New wraps an already-authenticated Session. Callers that need the raw
// send_command escape hatch or consume_event() use c.Session directly.
func New(sess *session.Session, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{Session: sess, logger: logger}
}

// Circuits returns every circuit the daemon currently knows about.
// GETINFO circuit-status never errors on an empty list.
func (c *Controller) Circuits() ([]circuit.Circuit, error) {
	payload, err := c.Session.GetInfo("circuit-status")
	if err != nil {
		return nil, err
	}
	return circuit.ParseAll(payload)
}

// Streams returns every stream the daemon currently knows about.
func (c *Controller) Streams() ([]stream.Stream, error) {
	payload, err := c.Session.GetInfo("stream-status")
	if err != nil {
		return nil, err
	}
	return stream.ParseAll(payload)
}

// OnionRouter looks up exactly one relay by identity (hex fingerprint or
// nickname, as the daemon's ns/id/<id> key accepts).
func (c *Controller) OnionRouter(id string) (router.OnionRouter, error) {
	payload, err := c.Session.GetInfo("ns/id/" + id)
	if err != nil {
		return router.OnionRouter{}, err
	}
	return router.Parse(payload)
}

// AllOnionRouters returns the daemon's full consensus view.
func (c *Controller) AllOnionRouters() ([]router.OnionRouter, error) {
	payload, err := c.Session.GetInfo("ns/all")
	if err != nil {
		return nil, err
	}
	return router.ParseAll(payload)
}

// ExtendCircuit sends EXTENDCIRCUIT with at least one path element and
// returns the server's reply payload verbatim.
func (c *Controller) ExtendCircuit(id grammar.CircuitID, path circuit.Path) (string, error) {
	if len(path) == 0 {
		return "", ctrlerr.NewParsing("", "extend_circuit: path must contain at least one element")
	}
	fps := make([]string, len(path))
	for i, step := range path {
		fps[i] = step.String()
	}
	resp, err := c.Session.SendCommand("EXTENDCIRCUIT " + string(id) + " " + strings.Join(fps, ","))
	if err != nil {
		return "", err
	}
	if resp.Code != 250 {
		return "", &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	return resp.Data, nil
}

// AttachStream sends ATTACHSTREAM.
func (c *Controller) AttachStream(streamID grammar.StreamID, circuitID grammar.CircuitID) (string, error) {
	resp, err := c.Session.SendCommand("ATTACHSTREAM " + string(streamID) + " " + string(circuitID))
	if err != nil {
		return "", err
	}
	if resp.Code != 250 {
		return "", &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	return resp.Data, nil
}

// SetConf sends SETCONF key=value, or SETCONF key (resetting to default)
// when value is nil.
func (c *Controller) SetConf(key string, value *string) error {
	cmd := "SETCONF " + key
	if value != nil {
		cmd += "=" + *value
	}
	resp, err := c.Session.SendCommand(cmd)
	if err != nil {
		return err
	}
	if resp.Code != 250 {
		return &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	return nil
}

// GetConf sends GETCONF key and returns the reply payload verbatim.
func (c *Controller) GetConf(key string) (string, error) {
	resp, err := c.Session.SendCommand("GETCONF " + key)
	if err != nil {
		return "", err
	}
	if resp.Code != 250 {
		return "", &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	return resp.Data, nil
}
