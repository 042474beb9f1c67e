package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/util"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type Config struct {
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`

	Kanachu      KanachuConfig `yaml:"kanachu"`
	Weather      WeatherConfig `yaml:"weather"`
	Webhook      WebhookConfig `yaml:"webhook"`
	ServiceHours ServiceHours  `yaml:"service_hours"`
	Board        BoardConfig   `yaml:"board"`

	Groups []RouteGroup `yaml:"groups"`
}

type KanachuConfig struct {
	BaseURL         string   `yaml:"base_url"`
	Timeout         Duration `yaml:"timeout"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

type WeatherConfig struct {
	BaseURL         string   `yaml:"base_url"`
	APIKey          string   `yaml:"api_key"`
	Location        string   `yaml:"location"`
	Timeout         Duration `yaml:"timeout"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

type WebhookConfig struct {
	URL        string `yaml:"url"`
	SenderName string `yaml:"sender_name"`
}

type BoardConfig struct {
	MaxDisplay   int       `yaml:"max_display"`
	DefaultGroup string    `yaml:"default_group"`
	FirstBus     ClockTime `yaml:"first_bus"`
}

// RouteGroup is one direction shown on the board, merged from one or more stop pairs
type RouteGroup struct {
	ID           string            `yaml:"id"`
	FromStopName string            `yaml:"from_name"`
	ToStopName   string            `yaml:"to_name"`
	Routes       []ctdf.RouteQuery `yaml:"routes"`
	Badges       []BadgeRule       `yaml:"badges"`
}

// BadgeRule attaches Label to every departure for which the When expression is true
type BadgeRule struct {
	Label string `yaml:"label"`
	When  string `yaml:"when"`
}

// Load reads the YAML file at path, or the embedded defaults when path is empty,
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	source := defaultConfig

	if path != "" {
		log.Debug().Str("path", path).Msg("Loading config file")

		fileBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		source = fileBytes
	}

	config, err := Parse(source)
	if err != nil {
		return nil, err
	}

	config.applyEnvironment(util.GetEnvironmentVariables())

	if err := config.resolve(); err != nil {
		return nil, err
	}

	return config, nil
}

// Parse decodes YAML on top of the embedded defaults and validates it without touching the environment.
func Parse(source []byte) (*Config, error) {
	config := &Config{}

	if err := yaml.NewDecoder(bytes.NewReader(defaultConfig)).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode default config: %w", err)
	}

	if len(bytes.TrimSpace(source)) > 0 && !bytes.Equal(source, defaultConfig) {
		overrides := &Config{}
		if err := yaml.NewDecoder(bytes.NewReader(source)).Decode(overrides); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
		config.merge(overrides)
	}

	if err := config.resolve(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) merge(o *Config) {
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}

	if o.Kanachu.BaseURL != "" {
		c.Kanachu.BaseURL = o.Kanachu.BaseURL
	}
	if o.Kanachu.Timeout != 0 {
		c.Kanachu.Timeout = o.Kanachu.Timeout
	}
	if o.Kanachu.RefreshInterval != 0 {
		c.Kanachu.RefreshInterval = o.Kanachu.RefreshInterval
	}

	if o.Weather.BaseURL != "" {
		c.Weather.BaseURL = o.Weather.BaseURL
	}
	if o.Weather.APIKey != "" {
		c.Weather.APIKey = o.Weather.APIKey
	}
	if o.Weather.Location != "" {
		c.Weather.Location = o.Weather.Location
	}
	if o.Weather.Timeout != 0 {
		c.Weather.Timeout = o.Weather.Timeout
	}
	if o.Weather.RefreshInterval != 0 {
		c.Weather.RefreshInterval = o.Weather.RefreshInterval
	}

	if o.Webhook.URL != "" {
		c.Webhook.URL = o.Webhook.URL
	}
	if o.Webhook.SenderName != "" {
		c.Webhook.SenderName = o.Webhook.SenderName
	}

	if o.ServiceHours != (ServiceHours{}) {
		c.ServiceHours = o.ServiceHours
	}

	if o.Board.MaxDisplay != 0 {
		c.Board.MaxDisplay = o.Board.MaxDisplay
	}
	if o.Board.DefaultGroup != "" {
		c.Board.DefaultGroup = o.Board.DefaultGroup
	}
	if o.Board.FirstBus != 0 {
		c.Board.FirstBus = o.Board.FirstBus
	}

	// Groups replace the defaults as a whole
	if len(o.Groups) > 0 {
		c.Groups = o.Groups
	}
}

func (c *Config) applyEnvironment(env map[string]string) {
	c.Weather.APIKey = util.GetSetting(env, "OPENWEATHERMAP_API_KEY", c.Weather.APIKey)
	c.Webhook.URL = util.GetSetting(env, "WEBHOOK_URL", c.Webhook.URL)
	c.Timezone = util.GetSetting(env, "TIMEZONE", c.Timezone)
}

func (c *Config) resolve() error {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = location

	return c.Validate()
}

func (c *Config) Validate() error {
	var problems []string

	if c.Kanachu.RefreshInterval <= 0 {
		problems = append(problems, "kanachu.refresh_interval must be positive")
	}
	if c.Weather.RefreshInterval <= 0 {
		problems = append(problems, "weather.refresh_interval must be positive")
	}
	if c.Board.MaxDisplay <= 0 {
		problems = append(problems, "board.max_display must be positive")
	}
	if len(c.Groups) == 0 {
		problems = append(problems, "at least one group is required")
	}

	seenGroups := map[string]bool{}
	for i, group := range c.Groups {
		if group.ID == "" {
			problems = append(problems, fmt.Sprintf("groups[%d] has no id", i))
			continue
		}
		if seenGroups[group.ID] {
			problems = append(problems, fmt.Sprintf("group %s is defined twice", group.ID))
		}
		seenGroups[group.ID] = true

		if len(group.Routes) == 0 {
			problems = append(problems, fmt.Sprintf("group %s has no routes", group.ID))
		}
		for j, route := range group.Routes {
			if route.Key == "" || route.FromStopCode == "" || route.ToStopCode == "" {
				problems = append(problems, fmt.Sprintf("group %s routes[%d] needs key, from and to", group.ID, j))
			}
		}
		for j, badge := range group.Badges {
			if badge.Label == "" || badge.When == "" {
				problems = append(problems, fmt.Sprintf("group %s badges[%d] needs label and when", group.ID, j))
			}
		}
	}

	if c.Board.DefaultGroup != "" && !seenGroups[c.Board.DefaultGroup] {
		problems = append(problems, fmt.Sprintf("default group %s does not exist", c.Board.DefaultGroup))
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) Group(id string) (*RouteGroup, bool) {
	if id == "" {
		id = c.Board.DefaultGroup
	}

	for i := range c.Groups {
		if c.Groups[i].ID == id {
			return &c.Groups[i], true
		}
	}
	return nil, false
}

func (c *Config) GroupIDs() []string {
	ids := make([]string, 0, len(c.Groups))
	for _, group := range c.Groups {
		ids = append(ids, group.ID)
	}
	return ids
}
