package approachstatus

import (
	"regexp"
	"strconv"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/busboard/pkg/util"
)

var timeTokenPattern = regexp.MustCompile(`(\d{1,2})[:：](\d{2})`)

// Late night services crossing midnight are only recognised inside this window
const (
	rolloverEveningHour      = 20
	rolloverEarlyMorningHour = 5
)

var oneDay, _ = iso8601.ParseISO8601("P1D")

// extractTimeToken returns the first HH:MM in text. Out of range values are treated as absent.
func extractTimeToken(text string) (hour int, minute int, ok bool) {
	match := timeTokenPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, false
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

// resolveDeparture places hour:minute on now's calendar day, rolling into tomorrow only for
// after-midnight buses seen during the evening.
func resolveDeparture(now time.Time, hour int, minute int) time.Time {
	candidate := util.TimeOnDate(now, hour, minute)

	if candidate.Before(now) && now.Hour() >= rolloverEveningHour && hour <= rolloverEarlyMorningHour {
		candidate = oneDay.Shift(candidate)
	}

	return candidate
}
