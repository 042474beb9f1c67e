package query

import "github.com/travigo/busboard/pkg/ctdf"

type ApproachInfo struct {
	Route ctdf.RouteQuery
}
