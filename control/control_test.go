package control

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/cvsouth/torctl/circuit"
	"github.com/cvsouth/torctl/grammar"
	"github.com/cvsouth/torctl/session"
)

// serve reads one CRLF command at a time and writes the canned response
// registered for its verb (the first space-separated token).
func serve(t *testing.T, conn net.Conn, responses map[string]string) {
	t.Helper()
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		verb := cmd
		if idx := strings.IndexByte(cmd, ' '); idx >= 0 {
			verb = cmd[:idx]
		}
		resp, ok := responses[verb]
		if !ok {
			resp = "510 Unrecognized command\r\n"
		}
		if _, err := conn.Write([]byte(resp)); err != nil {
			return
		}
	}
}

func newTestController(t *testing.T, responses map[string]string) *Controller {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })
	go serve(t, serverConn, responses)
	sess := session.New(clientConn, nil)
	return New(sess, nil)
}

func TestControllerCircuitsMultiLine(t *testing.T) {
	ctl := newTestController(t, map[string]string{
		"GETINFO": "250+circuit-status=\r\n" +
			"50 BUILT $8737307DE84C2621E6399E99123967A9590297F2~Tor0x800\r\n" +
			"51 LAUNCHED\r\n" +
			".\r\n250 OK\r\n",
	})

	circuits, err := ctl.Circuits()
	if err != nil {
		t.Fatalf("Circuits: %v", err)
	}
	if len(circuits) != 2 {
		t.Fatalf("expected 2 circuits, got %d: %+v", len(circuits), circuits)
	}
	if circuits[0].ID != grammar.CircuitID("50") || circuits[0].Status != circuit.StatusBuilt {
		t.Fatalf("first circuit = %+v", circuits[0])
	}
	if circuits[1].ID != grammar.CircuitID("51") || circuits[1].Status != circuit.StatusLaunched {
		t.Fatalf("second circuit = %+v", circuits[1])
	}
}

func TestControllerCircuitsEmpty(t *testing.T) {
	ctl := newTestController(t, map[string]string{
		"GETINFO": "250-circuit-status=\r\n250 OK\r\n",
	})
	circuits, err := ctl.Circuits()
	if err != nil {
		t.Fatalf("Circuits: %v", err)
	}
	if len(circuits) != 0 {
		t.Fatalf("expected no circuits, got %+v", circuits)
	}
}

func TestControllerOnionRouterLookup(t *testing.T) {
	ctl := newTestController(t, map[string]string{
		"GETINFO": "250+ns/id/Tor0x800=\r\n" +
			"r Tor0x800 hzcwfehMJiHmOZ6ZEjlnqVkCl/I psMf4zW8kU7rScOKz7Qowqe63oc 2021-05-01 01:11:24 185.80.30.102 9001 9030\r\n" +
			"s Running Valid\r\n" +
			".\r\n250 OK\r\n",
	})

	or, err := ctl.OnionRouter("Tor0x800")
	if err != nil {
		t.Fatalf("OnionRouter: %v", err)
	}
	if or.Nickname != "Tor0x800" {
		t.Fatalf("nickname = %q", or.Nickname)
	}
}

func TestControllerExtendCircuitRequiresNonEmptyPath(t *testing.T) {
	ctl := newTestController(t, map[string]string{})
	if _, err := ctl.ExtendCircuit(grammar.CircuitID("50"), nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestControllerExtendCircuitSendsCommand(t *testing.T) {
	ctl := newTestController(t, map[string]string{
		"EXTENDCIRCUIT": "250 EXTENDED 50\r\n",
	})
	path, err := circuit.ParsePath("$8737307DE84C2621E6399E99123967A9590297F2~Tor0x800")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	data, err := ctl.ExtendCircuit(grammar.CircuitID("50"), path)
	if err != nil {
		t.Fatalf("ExtendCircuit: %v", err)
	}
	if data != "EXTENDED 50\r\n" {
		t.Fatalf("data = %q", data)
	}
}

func TestControllerGetConfAndSetConf(t *testing.T) {
	ctl := newTestController(t, map[string]string{
		"GETCONF": "250 SocksPort=9050\r\n",
		"SETCONF": "250 OK\r\n",
	})
	val, err := ctl.GetConf("SocksPort")
	if err != nil {
		t.Fatalf("GetConf: %v", err)
	}
	if val != "SocksPort=9050\r\n" {
		t.Fatalf("val = %q", val)
	}
	if err := ctl.SetConf("SocksPort", nil); err != nil {
		t.Fatalf("SetConf: %v", err)
	}
}
