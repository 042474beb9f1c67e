package departureboard

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/config"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/util"
)

// BadgeEnv is what a badge rule expression can see about a departure
type BadgeEnv struct {
	Group       string
	RouteKey    string
	Origin      string
	RouteLabel  string
	Destination string
	Via         string
	VehicleID   string
	Category    string
	Seconds     int
	Urgent      bool
}

type badgeRule struct {
	Label   string
	Program *vm.Program
}

func compileBadgeRules(rules []config.BadgeRule) ([]badgeRule, error) {
	compiled := make([]badgeRule, 0, len(rules))

	for _, rule := range rules {
		program, err := expr.Compile(rule.When, expr.Env(BadgeEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("badge %s: %w", rule.Label, err)
		}

		compiled = append(compiled, badgeRule{Label: rule.Label, Program: program})
	}

	return compiled, nil
}

func applyBadges(groupID string, rules []badgeRule, departures []*ctdf.DepartureBoard) {
	for _, departure := range departures {
		env := BadgeEnv{
			Group:       groupID,
			RouteKey:    departure.RouteKey,
			Origin:      departure.OriginStopName,
			RouteLabel:  departure.RouteLabel,
			Destination: departure.Destination,
			Via:         departure.Via,
			VehicleID:   departure.VehicleID,
			Category:    string(departure.Category),
			Seconds:     departure.SecondsUntilDeparture,
			Urgent:      departure.Urgent,
		}

		var badges []string

		for _, rule := range rules {
			result, err := expr.Run(rule.Program, env)
			if err != nil {
				log.Error().Err(err).Str("badge", rule.Label).Msg("Failed to evaluate badge rule")
				continue
			}

			if matched, _ := result.(bool); matched {
				badges = append(badges, rule.Label)
			}
		}

		departure.Badges = util.RemoveDuplicateStrings(badges, nil)
		if departure.Badges == nil {
			departure.Badges = []string{}
		}
	}
}
