package query

type Weather struct {
	Location string
}
