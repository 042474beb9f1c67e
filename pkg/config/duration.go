package config

import (
	"fmt"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as an ISO-8601 period in YAML, e.g. PT10S
type Duration time.Duration

// Months and years are measured from the epoch, so they only make sense for rough values
var durationReference = time.Unix(0, 0).UTC()

func ParseDuration(value string) (Duration, error) {
	period, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", value, err)
	}

	return Duration(period.Shift(durationReference).Sub(durationReference)), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParseDuration(raw)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
