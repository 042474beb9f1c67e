package departureboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKuranowski/go-extra-lib/clock"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"github.com/travigo/busboard/pkg/config"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/dataaggregator"
	"github.com/travigo/busboard/pkg/dataaggregator/global"
	"github.com/travigo/busboard/pkg/dataaggregator/query"
	"github.com/travigo/busboard/pkg/dataaggregator/source/cachedresults"
	"github.com/travigo/busboard/pkg/notify"
	"github.com/travigo/busboard/pkg/openweathermap"
	"github.com/travigo/busboard/pkg/util"
)

var ErrUnknownGroup = errors.New("unknown direction group")

const (
	lastUpdatedFormat = "15:04:05"
	neverUpdated      = "N/A"
)

// Application state messages shown above the board
const (
	StateAwaitingFirstBus = "始発バス待機中 (～%s目安)"
	StateError            = "エラー発生中"
	StateNoInformation    = "情報なし/運行終了の可能性"
	StateMonitoring       = "監視中"
)

type Service struct {
	Config *config.Config

	BusCache     *cachedresults.Cache[[]ctdf.BusStatusRecord]
	WeatherCache *cachedresults.Cache[*ctdf.WeatherSnapshot]

	// If nil, the caches' clock is used
	Clock clock.Interface

	badges map[string][]badgeRule
}

// NewFromConfig wires the upstream sources, caches and notifier described by busboardConfig.
func NewFromConfig(busboardConfig *config.Config) (*Service, error) {
	aggregator := global.Setup(busboardConfig)
	notifier := notify.NewWebhookNotifier(busboardConfig.Webhook.URL, busboardConfig.Webhook.SenderName)

	return New(busboardConfig, aggregator, notifier)
}

func New(busboardConfig *config.Config, aggregator *dataaggregator.Aggregator, notifier cachedresults.Notifier) (*Service, error) {
	routes := map[string]ctdf.RouteQuery{}
	badges := map[string][]badgeRule{}

	for _, group := range busboardConfig.Groups {
		for _, route := range group.Routes {
			routes[route.Key] = route
		}

		rules, err := compileBadgeRules(group.Badges)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", group.ID, err)
		}
		badges[group.ID] = rules
	}

	service := &Service{
		Config: busboardConfig,
		badges: badges,
	}

	service.BusCache = &cachedresults.Cache[[]ctdf.BusStatusRecord]{
		Name:            "バス情報",
		RefreshInterval: busboardConfig.Kanachu.RefreshInterval.Std(),
		Fetch: func(ctx context.Context, key string) ([]ctdf.BusStatusRecord, error) {
			route, exists := routes[key]
			if !exists {
				return nil, fmt.Errorf("no route configured for %s", key)
			}

			return dataaggregator.Lookup[[]ctdf.BusStatusRecord](ctx, aggregator, query.ApproachInfo{Route: route})
		},
		RefreshAllowed: func(now time.Time) bool {
			return busboardConfig.ServiceHours.Contains(now.In(busboardConfig.Location))
		},
		Notifier: notifier,
	}

	service.WeatherCache = &cachedresults.Cache[*ctdf.WeatherSnapshot]{
		Name:            "天気情報",
		RefreshInterval: busboardConfig.Weather.RefreshInterval.Std(),
		Fetch: func(ctx context.Context, location string) (*ctdf.WeatherSnapshot, error) {
			return dataaggregator.Lookup[*ctdf.WeatherSnapshot](ctx, aggregator, query.Weather{Location: location})
		},
		WaitOnError: isWeatherKeyError,
		Notifier:    notifier,
		Quiet: func(err error) bool {
			return errors.Is(err, openweathermap.ErrNotConfigured)
		},
	}

	return service, nil
}

// A missing or rejected key will not fix itself between two polls
func isWeatherKeyError(err error) bool {
	return errors.Is(err, openweathermap.ErrNotConfigured) || errors.Is(err, openweathermap.ErrUnauthorized)
}

func (s *Service) now() time.Time {
	var now time.Time
	if s.Clock != nil {
		now = s.Clock.Now()
	} else if s.BusCache.Clock != nil {
		now = s.BusCache.Clock.Now()
	} else {
		now = clock.System.Now()
	}

	return now.In(s.Config.Location)
}

// Board builds the departure board for one direction group. An empty groupID means the
// configured default. Upstream failures never fail the board; they show up as error messages.
func (s *Service) Board(ctx context.Context, groupID string) (*ctdf.Board, error) {
	group, exists := s.Config.Group(groupID)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, groupID)
	}

	entries := iter.Map(group.Routes, func(route *ctdf.RouteQuery) cachedresults.Entry[[]ctdf.BusStatusRecord] {
		return s.BusCache.Get(ctx, route.Key)
	})

	now := s.now()

	var records []ctdf.BusStatusRecord
	var routeErrors []string
	var lastUpdated time.Time

	for i, entry := range entries {
		records = append(records, entry.Data...)

		if entry.Error != nil {
			routeErrors = append(routeErrors, fmt.Sprintf("%s: %s", group.Routes[i].OriginStopName, entry.Error))
		}
		if entry.Timestamp.After(lastUpdated) {
			lastUpdated = entry.Timestamp
		}
	}

	departures := ctdf.GenerateDepartureBoard(records, now, s.Config.Board.MaxDisplay)
	applyBadges(group.ID, s.badges[group.ID], departures)

	routeBoard := &ctdf.RouteBoard{
		GroupID:      group.ID,
		FromStopName: group.FromStopName,
		ToStopName:   group.ToStopName,
		Departures:   departures,
		ErrorMessage: strings.Join(routeErrors, " / "),
		LastUpdated:  s.formatTimestamp(lastUpdated),
	}

	weather := s.weather(ctx)

	board := &ctdf.Board{
		DirectionGroup:  group.ID,
		DirectionGroups: s.Config.GroupIDs(),
		Weather:         weather,
		Routes:          map[string]*ctdf.RouteBoard{group.ID: routeBoard},
		LastUpdated:     now.Format(time.DateTime),
		Status: ctdf.BoardStatus{
			Healthy: len(routeErrors) == 0,
			Warning: routeBoard.ErrorMessage,
			Message: s.stateMessage(now, routeBoard.ErrorMessage, departures),
		},
	}
	if board.Status.Warning == "" {
		board.Status.Warning = weather.ErrorMessage
	}

	log.Debug().
		Str("group", group.ID).
		Int("departures", len(departures)).
		Bool("healthy", board.Status.Healthy).
		Msg("Generated board")

	return board, nil
}

func (s *Service) weather(ctx context.Context) *ctdf.WeatherSnapshot {
	entry := s.WeatherCache.Get(ctx, s.Config.Weather.Location)

	snapshot := &ctdf.WeatherSnapshot{}
	if entry.Data != nil {
		if err := copier.Copy(snapshot, entry.Data); err != nil {
			log.Error().Err(err).Msg("Failed to copy weather snapshot")
		}
	}

	snapshot.Timestamp = entry.Timestamp
	snapshot.LastUpdated = s.formatTimestamp(entry.Timestamp)

	switch {
	case entry.Error == nil:
	case errors.Is(entry.Error, openweathermap.ErrNotConfigured):
		snapshot.ErrorMessage = "APIキー未設定"
	case errors.Is(entry.Error, openweathermap.ErrUnauthorized):
		snapshot.ErrorMessage = "APIキーが無効です"
	default:
		snapshot.ErrorMessage = entry.Error.Error()
	}

	return snapshot
}

func (s *Service) stateMessage(now time.Time, busError string, departures []*ctdf.DepartureBoard) string {
	switch {
	case util.MinuteOfDay(now) < int(s.Config.Board.FirstBus):
		return fmt.Sprintf(StateAwaitingFirstBus, s.Config.Board.FirstBus)
	case busError != "":
		return StateError
	case len(departures) == 0:
		return StateNoInformation
	}
	return StateMonitoring
}

func (s *Service) formatTimestamp(timestamp time.Time) string {
	if timestamp.IsZero() {
		return neverUpdated
	}
	return timestamp.In(s.Config.Location).Format(lastUpdatedFormat)
}

// CacheStats reports the state of every configured route and the weather entry without refreshing them.
func (s *Service) CacheStats() []ctdf.CacheStats {
	var stats []ctdf.CacheStats
	seen := map[string]bool{}

	for _, group := range s.Config.Groups {
		for _, route := range group.Routes {
			if seen[route.Key] {
				continue
			}
			seen[route.Key] = true

			entry := s.BusCache.Peek(route.Key)
			stats = append(stats, cacheStats(s.BusCache.Name, route.Key, entry.Timestamp, entry.DataValid, entry.Error, len(entry.Data)))
		}
	}

	weather := s.WeatherCache.Peek(s.Config.Weather.Location)
	records := 0
	if weather.Data != nil {
		records = 1
	}
	stats = append(stats, cacheStats(s.WeatherCache.Name, s.Config.Weather.Location, weather.Timestamp, weather.DataValid, weather.Error, records))

	return stats
}

func cacheStats(cache string, key string, timestamp time.Time, valid bool, err error, records int) ctdf.CacheStats {
	stats := ctdf.CacheStats{
		Cache:     cache,
		Key:       key,
		DataValid: valid,
		Records:   records,
	}
	if !timestamp.IsZero() {
		stats.Timestamp = &timestamp
	}
	if err != nil {
		stats.Error = err.Error()
	}
	return stats
}
