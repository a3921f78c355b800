package circuit

import (
	"encoding/base32"
	"strings"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"

	"github.com/cvsouth/torctl/ctrlerr"
)

// HsAddressVersion discriminates HsAddress's tagged union.
type HsAddressVersion int

const (
	HsAddressV2 HsAddressVersion = iota
	HsAddressV3
)

// HsAddress is a hidden-service rendezvous address: 10 raw bytes (V2) or
// 35 bytes (V3, pubkey||checksum||version), carried in REND_QUERY.
type HsAddress struct {
	Version HsAddressVersion
	V2      [10]byte
	V3      [35]byte
}

// ParseHsAddress decodes an RFC 4648 (unpadded) base32 hidden-service
// address of length 16 (V2) or 56 (V3) characters. A ".onion" suffix, if
// present, is stripped first. V3 addresses are further validated: the
// embedded checksum (SHA3-256(".onion checksum" || pubkey || version)[:2])
// must match, the version byte must be 3, and the embedded 32 bytes must
// be a valid Ed25519 curve point, the same checks the daemon's own
// .onion address decoder performs.
func ParseHsAddress(s string) (HsAddress, error) {
	var zero HsAddress
	raw := strings.TrimSuffix(strings.ToLower(s), ".onion")

	switch len(raw) {
	case 16:
		decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(raw))
		if err != nil {
			return zero, ctrlerr.NewDecode(ctrlerr.KindBase32, s, err.Error())
		}
		if len(decoded) != 10 {
			return zero, ctrlerr.NewDecode(ctrlerr.KindBase32, s, "v2 address: expected 10 decoded bytes")
		}
		var hs HsAddress
		hs.Version = HsAddressV2
		copy(hs.V2[:], decoded)
		return hs, nil

	case 56:
		decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(raw))
		if err != nil {
			return zero, ctrlerr.NewDecode(ctrlerr.KindBase32, s, err.Error())
		}
		if len(decoded) != 35 {
			return zero, ctrlerr.NewDecode(ctrlerr.KindBase32, s, "v3 address: expected 35 decoded bytes")
		}
		pubkey := decoded[:32]
		checksum := decoded[32:34]
		version := decoded[34]
		if version != 0x03 {
			return zero, ctrlerr.NewParsing(s, "v3 address: unsupported version byte")
		}
		h := sha3.New256()
		h.Write([]byte(".onion checksum"))
		h.Write(pubkey)
		h.Write([]byte{version})
		expected := h.Sum(nil)[:2]
		if checksum[0] != expected[0] || checksum[1] != expected[1] {
			return zero, ctrlerr.NewParsing(s, "v3 address: checksum mismatch")
		}
		if _, err := new(edwards25519.Point).SetBytes(pubkey); err != nil {
			return zero, ctrlerr.NewParsing(s, "v3 address: invalid ed25519 point: "+err.Error())
		}
		var hs HsAddress
		hs.Version = HsAddressV3
		copy(hs.V3[:], decoded)
		return hs, nil

	default:
		return zero, ctrlerr.NewParsing(s, "hidden service address: expected 16 or 56 base32 characters")
	}
}

// String renders the base32 encoding, lowercase, without a ".onion"
// suffix (callers append it when displaying a full address).
func (a HsAddress) String() string {
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	if a.Version == HsAddressV2 {
		return strings.ToLower(enc.EncodeToString(a.V2[:]))
	}
	return strings.ToLower(enc.EncodeToString(a.V3[:]))
}
