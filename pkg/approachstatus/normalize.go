package approachstatus

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// UnknownSeconds marks a departure that cannot be counted down
	UnknownSeconds = -1

	// ImminentPlaceholderSeconds stands in for the countdown of a bus the upstream only reports as "まもなく"
	ImminentPlaceholderSeconds = 10

	imminentThreshold       = 15
	shortCountdownThreshold = 180
)

// DelayEmphasisHorizon is how far out a delayed bus still counts as urgent
const DelayEmphasisHorizon = 10 * time.Minute

type NormalizedDeparture struct {
	Category              Category
	DepartureTime         *time.Time
	SecondsUntilDeparture int
	DisplayCountdown      string
	Urgent                bool
	Delay                 *DelayHint
}

// Normalize classifies rawStatusText and works out the countdown relative to now.
// It never panics and never reads the clock itself.
func Normalize(rawStatusText string, delayHint string, now time.Time) (departure NormalizedDeparture) {
	delay := ExtractDelay(rawStatusText, delayHint)

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("status", rawStatusText).
				Interface("panic", r).
				Msg("Failed to normalise approach status")

			departure = NormalizedDeparture{
				Category:              CategoryUnknown,
				SecondsUntilDeparture: UnknownSeconds,
				Delay:                 delay,
			}
		}
	}()

	hour, minute, hasTime := extractTimeToken(rawStatusText)

	var departureTime *time.Time
	if hasTime {
		resolved := resolveDeparture(now, hour, minute)
		departureTime = &resolved
	}

	switch {
	case containsAny(rawStatusText, imminentPhrases):
		return NormalizedDeparture{
			Category:              CategoryImminent,
			DepartureTime:         departureTime,
			SecondsUntilDeparture: ImminentPlaceholderSeconds,
			DisplayCountdown:      LabelImminent,
			Urgent:                true,
			Delay:                 delay,
		}
	case containsAny(rawStatusText, departedPhrases):
		return NormalizedDeparture{
			Category:              CategoryDeparted,
			DepartureTime:         departureTime,
			SecondsUntilDeparture: UnknownSeconds,
			DisplayCountdown:      LabelDeparted,
			Delay:                 delay,
		}
	case !hasTime:
		return annotationOnly(rawStatusText, delay)
	}

	return countdown(rawStatusText, *departureTime, now, delay)
}

func annotationOnly(rawStatusText string, delay *DelayHint) NormalizedDeparture {
	departure := NormalizedDeparture{
		Category:              CategoryUnknown,
		SecondsUntilDeparture: UnknownSeconds,
		Delay:                 delay,
	}

	switch {
	case strings.Contains(rawStatusText, onSchedulePhrase):
		departure.Category = CategoryOnSchedule
	case strings.Contains(rawStatusText, possibleDelayPhrase):
		departure.Category = CategoryPossibleDelay
		departure.DisplayCountdown = LabelPossibleDelay
	case strings.Contains(rawStatusText, scheduledPhrase):
		departure.Category = CategoryScheduleUnknown
		departure.DisplayCountdown = LabelScheduled
	}

	return departure
}

func countdown(rawStatusText string, departureTime time.Time, now time.Time, delay *DelayHint) NormalizedDeparture {
	departure := NormalizedDeparture{
		DepartureTime: &departureTime,
		Delay:         delay,
	}

	// The upstream page stops updating once a bus has gone, so a past time without an
	// explicit on-time confirmation is only "possibly" departed
	if departureTime.Before(now) {
		departure.SecondsUntilDeparture = UnknownSeconds
		if strings.Contains(rawStatusText, onSchedulePhrase) {
			departure.Category = CategoryDeparted
			departure.DisplayCountdown = LabelDeparted
		} else {
			departure.Category = CategoryPossiblyDeparted
			departure.DisplayCountdown = LabelPossiblyDeparted
		}
		return departure
	}

	seconds := int(departureTime.Sub(now) / time.Second)
	departure.SecondsUntilDeparture = seconds

	switch {
	case seconds <= imminentThreshold:
		departure.Category = CategoryImminent
		departure.DisplayCountdown = LabelImminent
		departure.Urgent = true
		return departure
	case seconds <= shortCountdownThreshold:
		departure.Category = CategoryCountdown
		departure.DisplayCountdown = countdownLabel(seconds)
		departure.Urgent = true
	default:
		departure.Category = CategoryCountdown
		departure.DisplayCountdown = countdownLabel(seconds)
		departure.Urgent = delay != nil
	}

	if delay != nil && time.Duration(seconds)*time.Second > DelayEmphasisHorizon {
		departure.Urgent = false
	}

	return departure
}

func countdownLabel(seconds int) string {
	minutes, remainder := seconds/60, seconds%60

	if seconds > shortCountdownThreshold {
		return fmt.Sprintf("あと%d分", minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("あと%d分%d秒", minutes, remainder)
	}
	return fmt.Sprintf("あと%d秒", remainder)
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
