package grammar

import "testing"

func TestParseCircuitID(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"50", false},
		{"0", false},
		{"abcDEF0123456789", false}, // 16 chars, ok
		{"abcDEF01234567890", true}, // 17 chars, too long
		{"", true},
		{"has space", true},
		{"has-dash", true},
	}
	for _, c := range cases {
		_, err := ParseCircuitID(c.in)
		if (err != nil) != c.wantErr {
			t.Fatalf("ParseCircuitID(%q) error=%v, wantErr=%v", c.in, err, c.wantErr)
		}
	}
}

func TestUnattachedSentinel(t *testing.T) {
	if UnattachedCircuitID != "0" {
		t.Fatalf("expected sentinel \"0\", got %q", UnattachedCircuitID)
	}
}
