package dataaggregator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/dataaggregator/query"
	"github.com/travigo/busboard/pkg/dataaggregator/source"
)

type stubSource struct {
	name    string
	records []ctdf.BusStatusRecord
	err     error
}

func (s stubSource) GetName() string {
	return s.name
}

func (s stubSource) Supports() []reflect.Type {
	return []reflect.Type{reflect.TypeOf([]ctdf.BusStatusRecord{})}
}

func (s stubSource) Lookup(ctx context.Context, q any) (interface{}, error) {
	if _, ok := q.(query.ApproachInfo); !ok {
		return nil, source.UnsupportedSourceError
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestLookupUsesFirstSupportingSource(t *testing.T) {
	aggregator := &Aggregator{}
	aggregator.RegisterSource(stubSource{name: "first", records: []ctdf.BusStatusRecord{{RouteKey: "first"}}})
	aggregator.RegisterSource(stubSource{name: "second", records: []ctdf.BusStatusRecord{{RouteKey: "second"}}})

	records, err := Lookup[[]ctdf.BusStatusRecord](context.Background(), aggregator, query.ApproachInfo{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].RouteKey)
}

func TestLookupReturnsSourceError(t *testing.T) {
	aggregator := &Aggregator{}
	aggregator.RegisterSource(stubSource{name: "broken", err: errors.New("timeout")})

	_, err := Lookup[[]ctdf.BusStatusRecord](context.Background(), aggregator, query.ApproachInfo{})
	assert.EqualError(t, err, "timeout")
}

func TestLookupNoMatchingSource(t *testing.T) {
	aggregator := &Aggregator{}
	aggregator.RegisterSource(stubSource{name: "buses"})

	_, err := Lookup[*ctdf.WeatherSnapshot](context.Background(), aggregator, query.Weather{Location: "Isehara,JP"})
	assert.Error(t, err)

	_, err = Lookup[[]ctdf.BusStatusRecord](context.Background(), aggregator, query.Weather{Location: "Isehara,JP"})
	assert.Error(t, err)
}
