package global

import (
	"github.com/travigo/busboard/pkg/config"
	"github.com/travigo/busboard/pkg/dataaggregator"
	"github.com/travigo/busboard/pkg/dataaggregator/source/kanachu"
	"github.com/travigo/busboard/pkg/dataaggregator/source/openweathermap"
	kanachuapi "github.com/travigo/busboard/pkg/kanachu"
	owm "github.com/travigo/busboard/pkg/openweathermap"
)

func Setup(busboardConfig *config.Config) *dataaggregator.Aggregator {
	aggregator := &dataaggregator.Aggregator{}

	aggregator.RegisterSource(kanachu.Source{
		Client: kanachuapi.NewClient(busboardConfig.Kanachu.BaseURL, busboardConfig.Kanachu.Timeout.Std()),
	})

	aggregator.RegisterSource(openweathermap.Source{
		Client: owm.NewClient(busboardConfig.Weather.BaseURL, busboardConfig.Weather.APIKey, busboardConfig.Weather.Timeout.Std()),
	})

	return aggregator
}
