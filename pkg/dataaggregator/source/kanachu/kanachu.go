package kanachu

import (
	"context"
	"reflect"

	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/dataaggregator/query"
	"github.com/travigo/busboard/pkg/dataaggregator/source"
	kanachuapi "github.com/travigo/busboard/pkg/kanachu"
)

type Source struct {
	Client *kanachuapi.Client
}

func (s Source) GetName() string {
	return "Kanachu Approach Info"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf([]ctdf.BusStatusRecord{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case query.ApproachInfo:
		records, err := s.Client.GetApproachInfo(ctx, q.Route)
		if err != nil {
			return nil, err
		}
		return records, nil
	}

	return nil, source.UnsupportedSourceError
}
