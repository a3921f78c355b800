package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cvsouth/torctl/ctrlerr"
)

// Time is a calendar timestamp as emitted by the daemon: YYYY-MM-DD,
// separated by 'T' or a space from HH:MM:SS, with an optional
// ".uuuuuu" microseconds suffix (defaults to 0 when absent).
type Time struct {
	Year        uint16
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	Microsecond uint32
}

// String renders YYYY-MM-DDTHH:MM:SS.uuuuuu, always zero-padded to 6
// microsecond digits even when the parsed value had none.
func (t Time) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%06d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Microsecond)
}

// ParseTime parses "YYYY-MM-DD[T ]HH:MM:SS[.uuuuuu]". Month/day/hour/
// minute/second accept one or two digits on input; microseconds, when
// present, must be exactly six digits.
func ParseTime(s string) (Time, error) {
	var zero Time
	orig := s

	year, rest, err := takeDigits(s, 4, 4)
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	rest, err = expect(rest, "-")
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	month, rest, err := takeDigits(rest, 1, 2)
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	rest, err = expect(rest, "-")
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	day, rest, err := takeDigits(rest, 1, 2)
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	if rest == "" || (rest[0] != 'T' && rest[0] != ' ') {
		return zero, ctrlerr.NewParsing(orig, "time: expected 'T' or ' ' date/time separator")
	}
	rest = rest[1:]
	hour, rest, err := takeDigits(rest, 1, 2)
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	rest, err = expect(rest, ":")
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	minute, rest, err := takeDigits(rest, 1, 2)
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	rest, err = expect(rest, ":")
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}
	second, rest, err := takeDigits(rest, 1, 2)
	if err != nil {
		return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
	}

	var micros uint64
	if strings.HasPrefix(rest, ".") {
		var usStr string
		usStr, rest, err = takeDigits(rest[1:], 6, 6)
		if err != nil {
			return zero, ctrlerr.NewParsing(orig, "time: "+err.Error())
		}
		micros, _ = strconv.ParseUint(usStr, 10, 32)
	}
	if rest != "" {
		return zero, ctrlerr.NewParsing(orig, "time: unexpected trailing input "+strconv.Quote(rest))
	}

	return Time{
		Year:        uint16(mustU(year)),
		Month:       uint8(mustU(month)),
		Day:         uint8(mustU(day)),
		Hour:        uint8(mustU(hour)),
		Minute:      uint8(mustU(minute)),
		Second:      uint8(mustU(second)),
		Microsecond: uint32(micros),
	}, nil
}

func takeDigits(s string, min, max int) (string, string, error) {
	n := 0
	for n < len(s) && n < max && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n < min {
		return "", s, fmt.Errorf("expected at least %d digit(s) in %q", min, s)
	}
	return s[:n], s[n:], nil
}

func expect(s, lit string) (string, error) {
	if !strings.HasPrefix(s, lit) {
		return s, fmt.Errorf("expected %q in %q", lit, s)
	}
	return s[len(lit):], nil
}

func mustU(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return v
}
