package circuit

import "testing"

func FuzzParseCircuit(f *testing.F) {
	f.Add("50 BUILT $8737307DE84C2621E6399E99123967A9590297F2~Tor0x800,$243996E46218666C1CADDE17B430EA7F95124F96~GoofyRooster BUILD_FLAGS=IS_INTERNAL,NEED_CAPACITY PURPOSE=HS_CLIENT_REND HS_STATE=HSCR_JOINED TIME_CREATED=2021-04-30T13:28:42.004916")
	f.Add("50 LAUNCHED")
	f.Add("")
	f.Add("garbage not a circuit")

	f.Fuzz(func(t *testing.T, input string) {
		// Must never panic regardless of input shape.
		_, _ = Parse(input)
	})
}

func FuzzParseHsAddress(f *testing.F) {
	f.Add("facebookcorewwwi.onion")
	f.Add("facebookwkhpilnemxj7asaniu7vnjjbiltxjqhye3mhbshg7kx5tfyd.onion")
	f.Add("")
	f.Add("not-base32!!!.onion")

	f.Fuzz(func(t *testing.T, input string) {
		_, _ = ParseHsAddress(input)
	})
}
