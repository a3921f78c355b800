package circuit

import (
	"testing"

	"github.com/cvsouth/torctl/grammar"
)

func TestParseCircuitScenario4(t *testing.T) {
	line := "50 BUILT $8737307DE84C2621E6399E99123967A9590297F2~Tor0x800,$243996E46218666C1CADDE17B430EA7F95124F96~GoofyRooster BUILD_FLAGS=IS_INTERNAL,NEED_CAPACITY PURPOSE=HS_CLIENT_REND HS_STATE=HSCR_JOINED TIME_CREATED=2021-04-30T13:28:42.004916"

	c, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.ID != grammar.CircuitID("50") {
		t.Fatalf("id = %q", c.ID)
	}
	if c.Status != StatusBuilt {
		t.Fatalf("status = %v", c.Status)
	}
	if len(c.Path) != 2 {
		t.Fatalf("expected 2 path steps, got %d", len(c.Path))
	}
	if c.Path[0].Nickname != "Tor0x800" || c.Path[1].Nickname != "GoofyRooster" {
		t.Fatalf("path nicknames = %+v", c.Path)
	}
	if !c.BuildFlags.Has(BuildFlagIsInternal) || !c.BuildFlags.Has(BuildFlagNeedCapacity) {
		t.Fatalf("build flags = %v", c.BuildFlags)
	}
	if c.Purpose == nil || *c.Purpose != PurposeHsClientRend {
		t.Fatalf("purpose = %v", c.Purpose)
	}
	if c.HsState == nil || *c.HsState != HsStateClientRendJoined {
		t.Fatalf("hs state = %v", c.HsState)
	}
	if c.TimeCreated == nil || c.TimeCreated.String() != "2021-04-30T13:28:42.004916" {
		t.Fatalf("time created = %v", c.TimeCreated)
	}
	if c.RendQuery != nil || c.Reason != nil || c.SocksUsername != nil || c.SocksPassword != nil {
		t.Fatalf("expected remaining optional fields to be nil")
	}
}

func TestParseCircuitZeroSteps(t *testing.T) {
	c, err := Parse("50 LAUNCHED")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Path) != 0 {
		t.Fatalf("expected zero-step path, got %+v", c.Path)
	}
}

func TestParseCircuitLeadingCRLFTolerated(t *testing.T) {
	c, err := Parse("\r\n50 LAUNCHED")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.ID != grammar.CircuitID("50") {
		t.Fatalf("id = %q", c.ID)
	}
}

func TestParseCircuitOutOfOrderKeyRejected(t *testing.T) {
	if _, err := Parse("50 BUILT PURPOSE=GENERAL BUILD_FLAGS=IS_INTERNAL"); err == nil {
		t.Fatal("expected error: BUILD_FLAGS out of canonical order after PURPOSE")
	}
}

func TestParseCircuitDuplicateKeyRejected(t *testing.T) {
	if _, err := Parse("50 BUILT PURPOSE=GENERAL PURPOSE=TESTING"); err == nil {
		t.Fatal("expected error on duplicate key")
	}
}

func TestParseAllCircuitsEmptyPayload(t *testing.T) {
	circuits, err := ParseAll("")
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if circuits != nil {
		t.Fatalf("expected nil, got %v", circuits)
	}
}
