package ctdf

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/approachstatus"
	"github.com/travigo/busboard/pkg/util"
	"golang.org/x/exp/slices"
)

type DepartureBoard struct {
	RouteKey  string `json:"route_key" groups:"debug"`
	VehicleID string `json:"vehicle_id" groups:"debug"`

	OriginStopName string `json:"origin_stop_name_short" groups:"basic"`
	RouteLabel     string `json:"route_label" groups:"basic"`
	Destination    string `json:"destination_name" groups:"basic"`
	Via            string `json:"via_info" groups:"basic"`
	Duration       string `json:"duration_text" groups:"basic"`

	DepartureTime         *time.Time              `json:"departure_time" groups:"basic"`
	SecondsUntilDeparture int                     `json:"seconds_until_departure" groups:"basic"`
	DisplayCountdown      string                  `json:"time_until_departure" groups:"basic"`
	Urgent                bool                    `json:"is_urgent" groups:"basic"`
	Category              approachstatus.Category `json:"category" groups:"basic"`
	DelayInfo             string                  `json:"delay_info" groups:"basic"`
	Badges                []string                `json:"badges" groups:"basic"`

	RawStatusText string `json:"status_text" groups:"basic"`
	DelayHint     string `json:"-"`
}

// GenerateDepartureBoard normalises records against a single now, drops repeated vehicles
// (first seen wins), orders by time to departure with uncountable buses last and cuts to count.
func GenerateDepartureBoard(records []BusStatusRecord, now time.Time, count int) []*DepartureBoard {
	departureBoard := make([]*DepartureBoard, 0, len(records))

	for _, record := range records {
		departure := &DepartureBoard{}
		if err := copier.Copy(departure, &record); err != nil {
			log.Error().Err(err).Str("route", record.RouteKey).Msg("Failed to copy bus status record")
			continue
		}

		normalized := approachstatus.Normalize(record.RawStatusText, record.DelayHint, now)

		departure.DepartureTime = normalized.DepartureTime
		departure.SecondsUntilDeparture = normalized.SecondsUntilDeparture
		departure.DisplayCountdown = normalized.DisplayCountdown
		departure.Urgent = normalized.Urgent
		departure.Category = normalized.Category
		if normalized.Delay != nil {
			departure.DelayInfo = normalized.Delay.Text
		}

		departureBoard = append(departureBoard, departure)
	}

	seenVehicles := map[string]bool{}
	util.InPlaceFilter(&departureBoard, func(departure *DepartureBoard) bool {
		if departure.VehicleID == "" {
			return true
		}
		if seenVehicles[departure.VehicleID] {
			return false
		}
		seenVehicles[departure.VehicleID] = true
		return true
	})

	slices.SortStableFunc(departureBoard, compareDepartures)

	if count >= 0 && len(departureBoard) > count {
		departureBoard = departureBoard[:count]
	}

	return departureBoard
}

func compareDepartures(a *DepartureBoard, b *DepartureBoard) int {
	aUnknown := a.SecondsUntilDeparture < 0
	bUnknown := b.SecondsUntilDeparture < 0

	switch {
	case aUnknown && bUnknown:
		return 0
	case aUnknown:
		return 1
	case bUnknown:
		return -1
	}

	return a.SecondsUntilDeparture - b.SecondsUntilDeparture
}
