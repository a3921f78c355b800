// Package transport supplies the bidirectional byte stream the control
// client talks over: a local filesystem socket when the endpoint names an
// existing path, else a TCP connection to host:port.
package transport

import (
	"net"
	"os"

	"github.com/cvsouth/torctl/ctrlerr"
)

// DefaultEndpoint is used when the caller does not specify one.
const DefaultEndpoint = "127.0.0.1:9051"

// Dial opens a connection to endpoint: a Unix domain socket if a
// filesystem entry exists at that path, otherwise TCP to host:port.
// There is no reconnection logic; callers needing a fresh connection
// construct a new one.
func Dial(endpoint string) (net.Conn, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := os.Stat(endpoint); err == nil {
		conn, err := net.Dial("unix", endpoint)
		if err != nil {
			return nil, &ctrlerr.Io{Op: "dial unix " + endpoint, Err: err}
		}
		return conn, nil
	}
	conn, err := net.Dial("tcp", endpoint)
	if err != nil {
		return nil, &ctrlerr.Io{Op: "dial tcp " + endpoint, Err: err}
	}
	return conn, nil
}
