package approachstatus

import (
	"regexp"
	"strconv"
	"strings"
)

type DelayHint struct {
	// Text is the delay description as shown upstream, e.g. "5分遅れ"
	Text    string
	Minutes int

	// Possible is set when the delay is only implied by an approximate ("頃") departure
	Possible bool
}

var delayMinutesPattern = regexp.MustCompile(`(\d+)\s*分(?:程度)?の?遅れ`)

// ExtractDelay pulls a structured delay out of an explicit hint or the raw status text.
// Best effort: a nil result does not mean the bus is on time.
func ExtractDelay(rawStatusText string, delayHint string) *DelayHint {
	for _, text := range []string{delayHint, rawStatusText} {
		if match := delayMinutesPattern.FindStringSubmatch(text); match != nil {
			minutes, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}

			return &DelayHint{
				Text:    strings.ReplaceAll(match[0], " ", ""),
				Minutes: minutes,
			}
		}
	}

	hint := strings.TrimSpace(delayHint)
	if hint != "" && (strings.Contains(hint, "遅れ") || strings.Contains(hint, "遅延")) {
		return &DelayHint{Text: strings.Trim(hint, "（）() ")}
	}

	if strings.Contains(rawStatusText, "遅れ") {
		return &DelayHint{Text: "遅れ"}
	}

	if strings.Contains(rawStatusText, possibleDelayPhrase) {
		return &DelayHint{Text: LabelPossibleDelay, Possible: true}
	}

	return nil
}
