package ctdf

type Board struct {
	DirectionGroup  string   `json:"direction_group" groups:"basic"`
	DirectionGroups []string `json:"direction_groups" groups:"basic"`

	Weather     *WeatherSnapshot       `json:"weather" groups:"basic"`
	Routes      map[string]*RouteBoard `json:"routes_bus_data" groups:"basic"`
	LastUpdated string                 `json:"last_updated" groups:"basic"`
	Status      BoardStatus            `json:"status" groups:"basic"`
}

type RouteBoard struct {
	GroupID      string `json:"direction_group" groups:"basic"`
	FromStopName string `json:"from_stop_name" groups:"basic"`
	ToStopName   string `json:"to_stop_name" groups:"basic"`

	Departures   []*DepartureBoard `json:"buses_to_display" groups:"basic"`
	ErrorMessage string            `json:"bus_error_message" groups:"basic"`
	LastUpdated  string            `json:"bus_last_updated_str" groups:"basic"`
}

type BoardStatus struct {
	Healthy bool   `json:"healthy" groups:"basic"`
	Warning string `json:"warning" groups:"basic"`
	Message string `json:"message" groups:"basic"`
}
