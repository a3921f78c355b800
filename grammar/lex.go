package grammar

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
)

// DecodeHexFixed decodes s as hex into exactly n bytes, failing otherwise.
// Mirrors the fingerprint/identity decode-with-length-check idiom used
// throughout the daemon's textual grammar.
func DecodeHexFixed(s string, n int) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ctrlerr.NewDecode(ctrlerr.KindHex, s, err.Error())
	}
	if len(b) != n {
		return nil, ctrlerr.NewDecode(ctrlerr.KindHex, s, "expected decoded length "+strconv.Itoa(n)+", got "+strconv.Itoa(len(b)))
	}
	return b, nil
}

// DecodeBase64Fixed decodes s (unpadded, falling back to padded) into
// exactly n bytes. Mirrors descriptor.go's decode-with-fallback pattern.
func DecodeBase64Fixed(s string, n int) ([]byte, error) {
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, ctrlerr.NewDecode(ctrlerr.KindBase64, s, err.Error())
		}
	}
	if len(b) != n {
		return nil, ctrlerr.NewDecode(ctrlerr.KindBase64, s, "expected decoded length "+strconv.Itoa(n)+", got "+strconv.Itoa(len(b)))
	}
	return b, nil
}

// QuotedString strips one layer of double quotes and resolves the
// backslash-escaped quote/backslash sequences the daemon uses inside
// quoted fields (COOKIEFILE, SOCKS_USERNAME, SOCKS_PASSWORD).
func QuotedString(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", ctrlerr.NewParsing(s, "expected double-quoted string")
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && (inner[i+1] == '"' || inner[i+1] == '\\') {
			b.WriteByte(inner[i+1])
			i++
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String(), nil
}

// SplitKeyValue splits "key=value" on the first '=', matching
// get_info's single key/value contract.
func SplitKeyValue(s string) (key, value string, ok bool) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}
