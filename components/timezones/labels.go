package timezones

import (
	"fmt"
	"time"
)

// Option is a single entry in the JSON options payload.
type Option struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Offset string `json:"offset,omitempty"`
}

// Offset formats the UTC offset of zone at instant, e.g. "UTC-05:00".
func Offset(zone string, at time.Time) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}
	_, seconds := at.In(loc).Zone()
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60), nil
}

// Label renders "Zone (UTC±hh:mm)", or the bare zone when it cannot load.
func Label(zone string, at time.Time) string {
	return OptionFor(zone, at).Label
}

// OptionFor builds the option entry for zone.
func OptionFor(zone string, at time.Time) Option {
	offset, _ := Offset(zone, at)
	label := zone
	if offset != "" {
		label = zone + " (" + offset + ")"
	}
	return Option{Value: zone, Label: label, Offset: offset}
}
