// Package instant turns a wall-clock reading in a named zone into Unix seconds.
//
// Local times that fall inside a daylight-saving gap or overlap are resolved
// the way time.Date resolves them: the result is correct in one of the two
// offsets around the transition and no error is reported.
package instant

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

// LocalLayout is the only accepted shape for local date-times.
const LocalLayout = "2006-01-02T15:04:05"

type UnparsableTimeError struct {
	Input string
}

func (e *UnparsableTimeError) Error() string {
	return fmt.Sprintf("unparsable: the input %q can't be parsed as ISO 8601", e.Input)
}

func (e *UnparsableTimeError) Unwrap() error { return fault.ErrInvalid }

type UnsupportedZoneError struct {
	Zone string
}

func (e *UnsupportedZoneError) Error() string {
	return fmt.Sprintf("unsupported zone: the zone %q is not supported", e.Zone)
}

func (e *UnsupportedZoneError) Unwrap() error { return fault.ErrInvalid }

// ToInstant interprets local in zone and returns seconds since the Unix epoch.
func ToInstant(local string, zone string) (int64, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return 0, err
	}
	// ParseInLocation accepts a fractional second the layout does not name.
	if len(local) != len(LocalLayout) {
		return 0, &UnparsableTimeError{Input: local}
	}
	t, err := time.ParseInLocation(LocalLayout, local, loc)
	if err != nil {
		return 0, &UnparsableTimeError{Input: local}
	}
	return t.Unix(), nil
}

// LoadZone resolves an IANA zone name. The empty name and "Local" are refused
// because they depend on the host rather than on the caller.
func LoadZone(zone string) (*time.Location, error) {
	if zone == "" || zone == "Local" {
		return nil, &UnsupportedZoneError{Zone: zone}
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, &UnsupportedZoneError{Zone: zone}
	}
	return loc, nil
}

// Format renders an instant as a local date-time in zone.
func Format(unix int64, zone string) (string, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return "", err
	}
	return time.Unix(unix, 0).In(loc).Format(LocalLayout), nil
}
