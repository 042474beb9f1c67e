package ctdf

// Placeholders used when the upstream page leaves a field out
const (
	UnknownField        = "不明"
	NoInformationStatus = "情報なし"
)

// BusStatusRecord is one bus as scraped from the approach page, before normalisation
type BusStatusRecord struct {
	RouteKey       string
	OriginStopName string

	RouteLabel  string
	Destination string
	Via         string
	VehicleID   string
	Duration    string

	RawStatusText string
	DelayHint     string
}
