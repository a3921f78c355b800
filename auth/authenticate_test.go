package auth

import (
	"bufio"
	"encoding/hex"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/cvsouth/torctl/session"
)

// fakeDaemon reads CRLF-terminated commands from conn and writes the
// canned response registered for each command's verb (its first
// space-separated token), or a 510 reply for an unregistered verb. It
// stops when a read or write on conn fails.
func fakeDaemon(t *testing.T, conn net.Conn, responses map[string]string) {
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

func writeCookieFile(t *testing.T, cookie []byte) string {
	t.Helper()
	f, err := os.CreateTemp("", "control_auth_cookie")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	if _, err := f.Write(cookie); err != nil {
		t.Fatalf("write cookie: %v", err)
	}
	f.Close()
	return f.Name()
}

func TestAuthenticateScenario6SafeCookieSuccess(t *testing.T) {
	cookie := make([]byte, 32)
	for i := range cookie {
		cookie[i] = byte(i)
	}
	cookieFile := writeCookieFile(t, cookie)

	serverNonce := make([]byte, 32)
	for i := range serverNonce {
		serverNonce[i] = byte(0x80 + i)
	}

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	go func() {
		r := bufio.NewReader(serverConn)
		// PROTOCOLINFO 1
		line, _ := r.ReadString('\n')
		if !strings.HasPrefix(line, "PROTOCOLINFO") {
			return
		}
		serverConn.Write([]byte("250-AUTH METHODS=SAFECOOKIE COOKIEFILE=\"" + cookieFile + "\"\r\n250-VERSION Tor=\"0.4.5.7\"\r\n250 OK\r\n"))

		// AUTHCHALLENGE SAFECOOKIE <hex(client_nonce)>
		line, _ = r.ReadString('\n')
		cmd := strings.TrimRight(line, "\r\n")
		fields := strings.Fields(cmd)
		if len(fields) != 3 {
			return
		}
		clientNonce, err := hex.DecodeString(fields[2])
		if err != nil {
			return
		}

		input := append(append(append([]byte{}, cookie...), clientNonce...), serverNonce...)
		serverHash := hmacSHA256(keyServer, input)

		serverConn.Write([]byte("250 AUTHCHALLENGE SERVERHASH=" + hex.EncodeToString(serverHash) +
			" SERVERNONCE=" + hex.EncodeToString(serverNonce) + "\r\n"))

		// AUTHENTICATE <hex(client_hash)>
		line, _ = r.ReadString('\n')
		if !strings.HasPrefix(line, "AUTHENTICATE ") {
			return
		}
		serverConn.Write([]byte("250 OK\r\n"))
	}()

	sess := session.New(clientConn, nil)
	if _, err := Authenticate(sess, nil); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if sess.State() != session.StateAuthenticated {
		t.Fatalf("state = %v, want Authenticated", sess.State())
	}
}

func TestAuthenticateAbortsOnBadServerHash(t *testing.T) {
	cookie := make([]byte, 32)
	cookieFile := writeCookieFile(t, cookie)
	serverNonce := make([]byte, 32)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	authenticateSent := make(chan bool, 1)

	go func() {
		r := bufio.NewReader(serverConn)
		line, _ := r.ReadString('\n')
		if !strings.HasPrefix(line, "PROTOCOLINFO") {
			return
		}
		serverConn.Write([]byte("250-AUTH METHODS=SAFECOOKIE COOKIEFILE=\"" + cookieFile + "\"\r\n250-VERSION Tor=\"0.4.5.7\"\r\n250 OK\r\n"))

		line, _ = r.ReadString('\n')
		if !strings.HasPrefix(line, "AUTHCHALLENGE") {
			return
		}
		// Deliberately wrong server hash: all zero bytes, which will not
		// match the HMAC the client computes over the real inputs.
		var badHash [32]byte
		serverConn.Write([]byte("250 AUTHCHALLENGE SERVERHASH=" + hex.EncodeToString(badHash[:]) +
			" SERVERNONCE=" + hex.EncodeToString(serverNonce) + "\r\n"))

		// If the client (incorrectly) proceeds to send AUTHENTICATE, record it.
		line, err := r.ReadString('\n')
		if err == nil && strings.HasPrefix(line, "AUTHENTICATE") {
			authenticateSent <- true
		}
	}()

	sess := session.New(clientConn, nil)
	_, err := Authenticate(sess, nil)
	if err == nil {
		t.Fatal("expected Authenticate to fail on bad server hash")
	}

	select {
	case <-authenticateSent:
		t.Fatal("AUTHENTICATE must not be sent when server hash verification fails")
	default:
	}
}
