// Package circuit implements the Circuit record and the closed enums
// that make up its fields: status, build flags, purpose, hidden-service
// state, close reason, and the Step/Path/HsAddress leaves.
package circuit

import (
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
)

// Status is the closed CircuitStatus enum.
type Status int

const (
	StatusLaunched Status = iota
	StatusBuilt
	StatusGuardWait
	StatusExtended
	StatusFailed
	StatusClosed
)

var statusTags = map[string]Status{
	"LAUNCHED":   StatusLaunched,
	"BUILT":      StatusBuilt,
	"GUARD_WAIT": StatusGuardWait,
	"EXTENDED":   StatusExtended,
	"FAILED":     StatusFailed,
	"CLOSED":     StatusClosed,
}

func (s Status) String() string {
	for tag, v := range statusTags {
		if v == s {
			return tag
		}
	}
	return "UNKNOWN"
}

func parseStatus(s string) (Status, error) {
	if v, ok := statusTags[s]; ok {
		return v, nil
	}
	return 0, ctrlerr.NewParsing(s, "unknown circuit status")
}

// BuildFlag is the closed CircuitBuildFlag enum.
type BuildFlag int

const (
	BuildFlagOneHopTunnel BuildFlag = iota
	BuildFlagIsInternal
	BuildFlagNeedCapacity
	BuildFlagNeedUptime
)

var buildFlagTags = map[string]BuildFlag{
	"ONEHOP_TUNNEL": BuildFlagOneHopTunnel,
	"IS_INTERNAL":   BuildFlagIsInternal,
	"NEED_CAPACITY": BuildFlagNeedCapacity,
	"NEED_UPTIME":   BuildFlagNeedUptime,
}

func (f BuildFlag) String() string {
	for tag, v := range buildFlagTags {
		if v == f {
			return tag
		}
	}
	return "UNKNOWN"
}

// BuildFlags is the set of CircuitBuildFlag values on one Circuit,
// serialized as a comma-joined list.
type BuildFlags []BuildFlag

func (fs BuildFlags) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}

func (fs BuildFlags) Has(f BuildFlag) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

func parseBuildFlags(s string) (BuildFlags, error) {
	if s == "" {
		return nil, nil
	}
	var out BuildFlags
	for _, tok := range strings.Split(s, ",") {
		f, ok := buildFlagTags[tok]
		if !ok {
			return nil, ctrlerr.NewParsing(s, "unknown circuit build flag: "+tok)
		}
		out = append(out, f)
	}
	return out, nil
}

// Purpose is the closed CircuitPurpose enum.
type Purpose int

const (
	PurposeGeneral Purpose = iota
	PurposeHsClientIntro
	PurposeHsClientRend
	PurposeHsServiceIntro
	PurposeHsServiceRend
	PurposeHsClientHsDir
	PurposeTesting
	PurposeController
	PurposeMeasureTimeout
	PurposeHsVanguards
	PurposePathBiasTesting
	PurposeCircuitPadding
)

var purposeTags = map[string]Purpose{
	"GENERAL":           PurposeGeneral,
	"HS_CLIENT_INTRO":   PurposeHsClientIntro,
	"HS_CLIENT_REND":    PurposeHsClientRend,
	"HS_SERVICE_INTRO":  PurposeHsServiceIntro,
	"HS_SERVICE_REND":   PurposeHsServiceRend,
	"HS_CLIENT_HSDIR":   PurposeHsClientHsDir,
	"TESTING":           PurposeTesting,
	"CONTROLLER":        PurposeController,
	"MEASURE_TIMEOUT":   PurposeMeasureTimeout,
	"HS_VANGUARDS":      PurposeHsVanguards,
	"PATH_BIAS_TESTING": PurposePathBiasTesting,
	"CIRCUIT_PADDING":   PurposeCircuitPadding,
}

func (p Purpose) String() string {
	for tag, v := range purposeTags {
		if v == p {
			return tag
		}
	}
	return "UNKNOWN"
}

func parsePurpose(s string) (Purpose, error) {
	if v, ok := purposeTags[s]; ok {
		return v, nil
	}
	return 0, ctrlerr.NewParsing(s, "unknown circuit purpose")
}

// HsState is the closed 11-value enum spanning client/service x
// intro/rendezvous x connecting/established/joined.
type HsState int

const (
	HsStateClientIntroConnecting HsState = iota
	HsStateClientIntroSent
	HsStateClientIntroDone
	HsStateClientRendConnecting
	HsStateClientRendEstablishedIdle
	HsStateClientRendEstablishedWaiting
	HsStateClientRendJoined
	HsStateServiceIntroConnecting
	HsStateServiceIntroEstablished
	HsStateServiceRendConnecting
	HsStateServiceRendJoined
)

var hsStateTags = map[string]HsState{
	"HSCI_CONNECTING":           HsStateClientIntroConnecting,
	"HSCI_INTRO_SENT":           HsStateClientIntroSent,
	"HSCI_DONE":                 HsStateClientIntroDone,
	"HSCR_CONNECTING":           HsStateClientRendConnecting,
	"HSCR_ESTABLISHED_IDLE":     HsStateClientRendEstablishedIdle,
	"HSCR_ESTABLISHED_WAITING":  HsStateClientRendEstablishedWaiting,
	"HSCR_JOINED":               HsStateClientRendJoined,
	"HSSI_CONNECTING":           HsStateServiceIntroConnecting,
	"HSSI_ESTABLISHED":          HsStateServiceIntroEstablished,
	"HSSR_CONNECTING":           HsStateServiceRendConnecting,
	"HSSR_JOINED":               HsStateServiceRendJoined,
}

func (s HsState) String() string {
	for tag, v := range hsStateTags {
		if v == s {
			return tag
		}
	}
	return "UNKNOWN"
}

func parseHsState(s string) (HsState, error) {
	if v, ok := hsStateTags[s]; ok {
		return v, nil
	}
	return 0, ctrlerr.NewParsing(s, "unknown hidden service state")
}

// Reason is the closed 15-value CircuitReason enum.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTorProtocol
	ReasonInternal
	ReasonRequested
	ReasonHibernating
	ReasonResourceLimit
	ReasonConnectFailed
	ReasonOrIdentity
	ReasonOrConnClosed
	ReasonTimeout
	ReasonFinished
	ReasonDestroyed
	ReasonNoPath
	ReasonNoSuchService
	ReasonMeasurementExpired
)

var reasonTags = map[string]Reason{
	"NONE":                ReasonNone,
	"TORPROTOCOL":         ReasonTorProtocol,
	"INTERNAL":            ReasonInternal,
	"REQUESTED":           ReasonRequested,
	"HIBERNATING":         ReasonHibernating,
	"RESOURCELIMIT":       ReasonResourceLimit,
	"CONNECTFAILED":       ReasonConnectFailed,
	"OR_IDENTITY":         ReasonOrIdentity,
	"OR_CONN_CLOSED":      ReasonOrConnClosed,
	"TIMEOUT":             ReasonTimeout,
	"FINISHED":            ReasonFinished,
	"DESTROYED":           ReasonDestroyed,
	"NOPATH":              ReasonNoPath,
	"NOSUCHSERVICE":       ReasonNoSuchService,
	"MEASUREMENT_EXPIRED": ReasonMeasurementExpired,
}

func (r Reason) String() string {
	for tag, v := range reasonTags {
		if v == r {
			return tag
		}
	}
	return "UNKNOWN"
}

func parseReason(s string) (Reason, error) {
	if v, ok := reasonTags[s]; ok {
		return v, nil
	}
	return 0, ctrlerr.NewParsing(s, "unknown circuit close reason")
}
