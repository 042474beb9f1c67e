package openweathermap

import (
	"context"
	"reflect"

	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/dataaggregator/query"
	"github.com/travigo/busboard/pkg/dataaggregator/source"
	owm "github.com/travigo/busboard/pkg/openweathermap"
)

type Source struct {
	Client *owm.Client
}

func (s Source) GetName() string {
	return "OpenWeatherMap"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(ctdf.WeatherSnapshot{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case query.Weather:
		snapshot, err := s.Client.Current(ctx, q.Location)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	}

	return nil, source.UnsupportedSourceError
}
