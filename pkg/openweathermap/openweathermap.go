package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/travigo/busboard/pkg/ctdf"
)

const DefaultBaseURL = "http://api.openweathermap.org/data/2.5/weather"

var (
	ErrNotConfigured = errors.New("openweathermap api key not configured")
	ErrUnauthorized  = errors.New("openweathermap rejected the api key")
)

// Keys that ship in sample configs and should be treated as unset
var placeholderKeys = []string{"YOUR_OPENWEATHERMAP_API_KEY_HERE", "changeme"}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type currentWeather struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return false
	}
	for _, placeholder := range placeholderKeys {
		if key == placeholder {
			return false
		}
	}
	return true
}

// Current returns the present conditions for a "City,CC" location query.
func (c *Client) Current(ctx context.Context, location string) (*ctdf.WeatherSnapshot, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	requestURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather url: %w", err)
	}
	query := requestURL.Query()
	query.Set("q", location)
	query.Set("appid", c.APIKey)
	query.Set("units", "metric")
	query.Set("lang", "ja")
	requestURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to request weather: %s", resp.Status)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather: %w", err)
	}

	var current currentWeather
	if err := json.Unmarshal(jsonBytes, &current); err != nil {
		return nil, fmt.Errorf("failed to decode weather: %w", err)
	}

	if len(current.Weather) == 0 {
		return nil, fmt.Errorf("weather response has no conditions: %w", ctdf.ErrUpstreamShape)
	}

	snapshot := &ctdf.WeatherSnapshot{
		Condition:   current.Weather[0].Main,
		Description: current.Weather[0].Description,
		IsRain:      IsRain(current.Weather[0].Main),
	}
	if current.Main != nil {
		temperature := current.Main.Temp
		snapshot.Temperature = &temperature
	}

	return snapshot, nil
}

// IsRain reports whether a condition group means an umbrella is needed.
func IsRain(condition string) bool {
	switch strings.ToLower(condition) {
	case "rain", "drizzle", "thunderstorm":
		return true
	}
	return false
}
