package config

import (
	"fmt"
	"time"

	"github.com/travigo/busboard/pkg/util"
	"gopkg.in/yaml.v3"
)

// ClockTime is a wall clock time of day in minutes after midnight
type ClockTime int

func ParseClockTime(value string) (ClockTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q: out of range", value)
	}

	return ClockTime(hour*60 + minute), nil
}

func (c *ClockTime) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ServiceHours is the daily window in which the upstream page is worth polling.
// End may be past midnight (End < Start). Equal bounds mean all day.
type ServiceHours struct {
	Start ClockTime `yaml:"start"`
	End   ClockTime `yaml:"end"`
}

func (s ServiceHours) Contains(t time.Time) bool {
	if s.Start == s.End {
		return true
	}

	minute := ClockTime(util.MinuteOfDay(t))

	if s.Start < s.End {
		return minute >= s.Start && minute < s.End
	}
	return minute >= s.Start || minute < s.End
}
