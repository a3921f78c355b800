package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"

	"github.com/cvsouth/torctl/ctrlerr"
	"github.com/cvsouth/torctl/session"
)

// HMAC keys for the SAFECOOKIE handshake (ASCII, no trailing null).
const (
	keyClient = "Tor safe cookie authentication controller-to-server hash"
	keyServer = "Tor safe cookie authentication server-to-controller hash"
)

const clientNonceLen = 64

// Authenticate runs PROTOCOLINFO, selects an auth method (Null preferred,
// else SafeCookie if a cookie file was advertised), executes the
// handshake, and on success marks sess Authenticated. logger defaults to
// slog.Default() when nil.
func Authenticate(sess *session.Session, logger *slog.Logger) (ProtocolInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resp, err := sess.SendCommand("PROTOCOLINFO 1")
	if err != nil {
		return ProtocolInfo{}, err
	}
	if resp.Code != 250 {
		return ProtocolInfo{}, &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	pi, err := ParseProtocolInfo(resp.Data)
	if err != nil {
		return ProtocolInfo{}, err
	}

	switch {
	case pi.Has(MethodNull):
		logger.Debug("authenticating with NULL method")
		if err := authenticateNull(sess); err != nil {
			return ProtocolInfo{}, err
		}
	case pi.Has(MethodSafeCookie) && pi.CookieFile != nil:
		logger.Debug("authenticating with SAFECOOKIE method", "cookie_file", *pi.CookieFile)
		if err := authenticateSafeCookie(sess, *pi.CookieFile); err != nil {
			return ProtocolInfo{}, err
		}
	default:
		return ProtocolInfo{}, &ctrlerr.Protocol{Msg: "no supported auth method advertised (need NULL or SAFECOOKIE+cookie file)"}
	}

	sess.MarkAuthenticated()
	return pi, nil
}

func authenticateNull(sess *session.Session) error {
	resp, err := sess.SendCommand("AUTHENTICATE")
	if err != nil {
		return err
	}
	if resp.Code != 250 {
		return &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	return nil
}

func authenticateSafeCookie(sess *session.Session, cookieFile string) error {
	cookie, err := os.ReadFile(cookieFile)
	if err != nil {
		return &ctrlerr.Io{Op: "read cookie file", Err: err}
	}
	defer clear(cookie)

	clientNonce := make([]byte, clientNonceLen)
	if _, err := rand.Read(clientNonce); err != nil {
		return &ctrlerr.Io{Op: "generate client nonce", Err: err}
	}
	defer clear(clientNonce)

	resp, err := sess.SendCommand("AUTHCHALLENGE SAFECOOKIE " + hex.EncodeToString(clientNonce))
	if err != nil {
		return err
	}
	if resp.Code != 250 {
		return &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	cr, err := ParseChallengeResponse(resp.Data)
	if err != nil {
		return err
	}

	input := make([]byte, 0, len(cookie)+len(clientNonce)+len(cr.ServerNonce))
	input = append(input, cookie...)
	input = append(input, clientNonce...)
	input = append(input, cr.ServerNonce[:]...)
	defer clear(input)

	clientHash := hmacSHA256(keyClient, input)
	serverHashCheck := hmacSHA256(keyServer, input)

	if !hmac.Equal(serverHashCheck, cr.ServerHash[:]) {
		return &ctrlerr.Protocol{Msg: "invalid server hash in SAFECOOKIE response"}
	}

	resp, err = sess.SendCommand("AUTHENTICATE " + hex.EncodeToString(clientHash))
	if err != nil {
		return err
	}
	if resp.Code != 250 {
		return &ctrlerr.ServerResponse{Code: resp.Code, Payload: resp.Data}
	}
	return nil
}

func hmacSHA256(key string, msg []byte) []byte {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(msg)
	return h.Sum(nil)
}
