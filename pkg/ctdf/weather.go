package ctdf

import "time"

type WeatherSnapshot struct {
	Condition    string   `json:"condition" groups:"basic"`
	Description  string   `json:"description" groups:"basic"`
	Temperature  *float64 `json:"temperature" groups:"basic"`
	IsRain       bool     `json:"is_rain" groups:"basic"`
	ErrorMessage string   `json:"error_message" groups:"basic"`
	LastUpdated  string   `json:"last_updated" groups:"basic"`

	Timestamp time.Time `json:"timestamp" groups:"debug"`
}
